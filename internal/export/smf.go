package export

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/tessro/stave/internal/core"
	staveerrors "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/midiio"
	"github.com/tessro/stave/internal/notation"
)

const (
	ticksPerQuarter = 960
	velocity        = 100
)

// writeSMF writes a tempo track followed by one track per part. Each part
// uses its own channel. Trailing rests extend the end of the track.
func writeSMF(w io.Writer, data []core.PartData, l notation.Ladder) error {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	bpm := l.BPM
	if bpm <= 0 {
		bpm = notation.DefaultBPM
	}
	ticksPerSecond := ticksPerQuarter * bpm / 60

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(bpm))
	tempo.Close(0)
	if err := sm.Add(tempo); err != nil {
		return fmt.Errorf("error adding tempo track: %w", err)
	}

	for i, part := range data {
		ch := uint8(i % 16)
		var track smf.Track
		track.Add(0, smf.MetaTrackSequenceName(fmt.Sprintf("Part %d", i+1)))

		var pending uint32
		for _, c := range part.Chords {
			ticks := uint32(math.Round(c.Duration * ticksPerSecond))
			notes, err := core.ParsePitches(c.Notes)
			if err != nil {
				return err
			}
			if len(notes) == 0 {
				pending += ticks
				continue
			}
			for j, p := range notes {
				delta := uint32(0)
				if j == 0 {
					delta = pending
				}
				track.Add(delta, midi.NoteOn(ch, p.MIDI(), velocity))
			}
			for j, p := range notes {
				delta := uint32(0)
				if j == 0 {
					delta = ticks
				}
				track.Add(delta, midi.NoteOff(ch, p.MIDI()))
			}
			pending = 0
		}
		track.Close(pending)
		if err := sm.Add(track); err != nil {
			return fmt.Errorf("error adding track %d: %w", i, err)
		}
	}

	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

type note struct {
	key     uint8
	on, off int64
}

// readSMF builds one part per track that holds notes. Notes starting on the
// same tick form a chord that lasts until the next chord starts or its
// longest note ends. Gaps become rests.
func readSMF(r io.Reader, l notation.Ladder) ([]core.PartData, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", staveerrors.ErrMalformedSession, err)
	}

	var parts []core.PartData
	for _, track := range s.Tracks {
		notes, end := trackNotes(track)
		if len(notes) == 0 {
			continue
		}
		seconds := func(tick int64) float64 {
			return float64(s.TimeAt(tick)) / 1e6
		}
		parts = append(parts, core.PartData{Chords: chordsFrom(notes, end, seconds, l)})
	}
	return parts, nil
}

func trackNotes(track smf.Track) ([]note, int64) {
	var (
		abs   int64
		notes []note
		open  = make(map[uint8][]int)
	)
	for _, ev := range track {
		abs += int64(ev.Delta)
		ne, ok := midiio.Translate(midi.Message(ev.Message))
		if !ok {
			continue
		}
		key := ne.Pitch.MIDI()
		if ne.Down {
			open[key] = append(open[key], len(notes))
			notes = append(notes, note{key: key, on: abs, off: -1})
			continue
		}
		if idx := open[key]; len(idx) > 0 {
			notes[idx[0]].off = abs
			open[key] = idx[1:]
		}
	}
	for i := range notes {
		if notes[i].off < 0 {
			notes[i].off = abs
		}
	}
	return notes, abs
}

func chordsFrom(notes []note, end int64, seconds func(int64) float64, l notation.Ladder) []core.ChordData {
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].on < notes[j].on })

	type group struct {
		on, off int64
		keys    []uint8
	}
	var groups []group
	for _, n := range notes {
		if k := len(groups); k > 0 && groups[k-1].on == n.on {
			g := &groups[k-1]
			g.keys = append(g.keys, n.key)
			g.off = max(g.off, n.off)
			continue
		}
		groups = append(groups, group{on: n.on, off: n.off, keys: []uint8{n.key}})
	}

	span := func(from, to int64) float64 {
		return l.Quantize(seconds(to) - seconds(from))
	}
	var (
		out    []core.ChordData
		cursor int64
	)
	for i, g := range groups {
		if g.on > cursor {
			out = append(out, core.ChordData{Notes: []string{}, Duration: span(cursor, g.on)})
		}
		stop := g.off
		if i+1 < len(groups) && groups[i+1].on < stop {
			stop = groups[i+1].on
		}
		names := make([]string, len(g.keys))
		for j, k := range g.keys {
			names[j] = core.PitchFromMIDI(k).String()
		}
		out = append(out, core.ChordData{Notes: names, Duration: span(g.on, stop)})
		cursor = stop
	}
	if end > cursor {
		out = append(out, core.ChordData{Notes: []string{}, Duration: span(cursor, end)})
	}
	return out
}
