package sequencer

import (
	"bytes"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/tessro/stave/internal/core"
)

// undoEntry is one history snapshot: the chords of every part and the ids
// that tie them back to live bindings.
type undoEntry struct {
	IDs   []string        `json:"ids"`
	Parts json.RawMessage `json:"parts"`
}

// History is a bounded stack of serialized part snapshots. The top entry is
// always the current state.
type History struct {
	entries [][]byte
	max     int
}

// NewHistory returns an empty history holding at most max entries.
func NewHistory(max int) *History {
	return &History{max: max}
}

// Push adds a snapshot unless it equals the top. It reports whether it did.
func (h *History) Push(snap []byte) bool {
	if snap == nil {
		return false
	}
	if n := len(h.entries); n > 0 && bytes.Equal(h.entries[n-1], snap) {
		return false
	}
	h.entries = append(h.entries, snap)
	if h.max > 0 && len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
	return true
}

// Pop drops the top snapshot and returns the one beneath it.
// It does nothing with fewer than two entries.
func (h *History) Pop() ([]byte, bool) {
	n := len(h.entries)
	if n < 2 {
		return nil, false
	}
	h.entries = h.entries[:n-1]
	return h.entries[n-2], true
}

// Len returns the number of snapshots.
func (h *History) Len() int {
	return len(h.entries)
}

// CanUndo reports whether Undo would do anything.
func (e *Engine) CanUndo() bool {
	return e.history.Len() >= 2
}

// Undo restores the previous snapshot. Parts keep their id, instrument and
// recording flag, matched by id so a removed part comes back with its own;
// all playback stops.
func (e *Engine) Undo() {
	snap, ok := e.history.Pop()
	if !ok {
		return
	}
	var entry undoEntry
	err := json.Unmarshal(snap, &entry)
	if err == nil {
		var data []core.PartData
		if data, err = core.DecodeParts(entry.Parts); err == nil {
			var parts []*core.Part
			if parts, err = core.FromData(data); err == nil {
				e.restore(parts, entry.IDs)
			}
		}
	}
	if err != nil {
		e.logger.Error("failed to restore snapshot", zap.Error(err))
		return
	}
	e.persist()
	e.logger.Debug("undo", zap.Int("history", e.history.Len()))
	e.emit(Undone, AllParts)
}

// restore swaps in parts decoded from a snapshot. Each takes the bindings of
// the live or removed part that had its id.
func (e *Engine) restore(parts []*core.Part, ids []string) {
	s := e.session
	for _, p := range s.Parts {
		e.cancel(p)
	}
	if len(parts) == 0 {
		parts = []*core.Part{core.NewPart()}
	}
	for i, p := range parts {
		if i >= len(ids) {
			break
		}
		if _, old := s.PartByID(ids[i]); old != nil {
			p.ID = old.ID
			p.InstrumentID = old.InstrumentID
			p.Recording = old.Recording
			p.Looping = old.Looping
		} else if old, ok := e.retired[ids[i]]; ok {
			p.ID = old.ID
			p.InstrumentID = old.InstrumentID
			p.Looping = old.Looping
			delete(e.retired, old.ID)
		}
	}
	s.Parts = parts
	if s.Current >= len(parts) {
		s.Current = len(parts) - 1
	}
}
