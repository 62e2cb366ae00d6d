// Package export converts part data to and from files.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tessro/stave/internal/core"
	staveerrors "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/notation"
)

// Format is a file format parts can be written in.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	MIDI Format = "midi"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, YAML, MIDI}

// ParseFormat accepts a format name or common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "midi", "mid", "smf":
		return MIDI, nil
	}
	return "", fmt.Errorf("%w: %q", staveerrors.ErrUnsupportedFormat, s)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case YAML:
		return "application/yaml"
	case MIDI:
		return "audio/midi"
	}
	return "application/json"
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Document is the YAML file layout.
type Document struct {
	Tempo float64         `yaml:"tempo"`
	Parts []core.PartData `yaml:"parts"`
}

// Write encodes data in format f. The ladder's tempo is stored in YAML and
// MIDI output.
func Write(w io.Writer, f Format, data []core.PartData, l notation.Ladder) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if data == nil {
			data = []core.PartData{}
		}
		return enc.Encode(data)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(Document{Tempo: l.BPM, Parts: data}); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case MIDI:
		return writeSMF(w, data, l)
	}
	return fmt.Errorf("%w: %q", staveerrors.ErrUnsupportedFormat, f)
}

// Read decodes data in format f. MIDI durations are snapped onto the ladder.
func Read(r io.Reader, f Format, l notation.Ladder) ([]core.PartData, error) {
	switch f {
	case JSON:
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return core.DecodeParts(b)
	case YAML:
		var doc Document
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", staveerrors.ErrMalformedSession, err)
		}
		return doc.Parts, nil
	case MIDI:
		return readSMF(r, l)
	}
	return nil, fmt.Errorf("%w: %q", staveerrors.ErrUnsupportedFormat, f)
}
