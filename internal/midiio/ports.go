// Package midiio lists MIDI ports and turns incoming MIDI notes into key events.
package midiio

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	staveerrors "github.com/tessro/stave/internal/errors"
)

// Direction is whether a port receives or sends.
type Direction string

const (
	Input  Direction = "in"
	Output Direction = "out"
)

// Port describes a MIDI port.
type Port struct {
	Number    int       `json:"number"`
	Name      string    `json:"name"`
	Direction Direction `json:"direction"`
}

// Inputs lists the available input ports.
func Inputs() []Port {
	var out []Port
	for _, in := range midi.GetInPorts() {
		out = append(out, Port{Number: in.Number(), Name: in.String(), Direction: Input})
	}
	return out
}

// Outputs lists the available output ports.
func Outputs() []Port {
	var out []Port
	for _, o := range midi.GetOutPorts() {
		out = append(out, Port{Number: o.Number(), Name: o.String(), Direction: Output})
	}
	return out
}

// Match picks the port whose name equals name, or failing that the first one
// whose name contains it, ignoring case. An empty name picks the first port.
func Match(ports []Port, name string) (Port, error) {
	if len(ports) == 0 {
		return Port{}, staveerrors.ErrNoMIDIPorts
	}
	if name == "" {
		return ports[0], nil
	}
	for _, p := range ports {
		if p.Name == name {
			return p, nil
		}
	}
	needle := strings.ToLower(name)
	for _, p := range ports {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			return p, nil
		}
	}
	return Port{}, fmt.Errorf("%w: %s", staveerrors.ErrPortNotFound, name)
}

// FindInput resolves name to an input port.
func FindInput(name string) (drivers.In, error) {
	p, err := Match(Inputs(), name)
	if err != nil {
		return nil, err
	}
	return midi.InPort(p.Number)
}

// FindOutput resolves name to an output port.
func FindOutput(name string) (drivers.Out, error) {
	p, err := Match(Outputs(), name)
	if err != nil {
		return nil, err
	}
	return midi.OutPort(p.Number)
}

// Close releases the MIDI driver.
func Close() {
	midi.CloseDriver()
}
