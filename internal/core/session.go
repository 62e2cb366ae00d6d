package core

import (
	"time"

	"golang.org/x/exp/slices"
)

// HeldKeys tracks pressed pitches in press order.
type HeldKeys struct {
	order []Pitch
	at    map[Pitch]time.Time
}

// Press records p as held since t. It reports false if p was already held.
func (h *HeldKeys) Press(p Pitch, t time.Time) bool {
	if h.Has(p) {
		return false
	}
	if h.at == nil {
		h.at = make(map[Pitch]time.Time)
	}
	h.at[p] = t
	h.order = append(h.order, p)
	return true
}

// Has reports whether p is held.
func (h *HeldKeys) Has(p Pitch) bool {
	_, ok := h.at[p]
	return ok
}

// PressedAt returns when p was pressed.
func (h *HeldKeys) PressedAt(p Pitch) (time.Time, bool) {
	t, ok := h.at[p]
	return t, ok
}

// Pitches returns the held pitches in press order.
func (h *HeldKeys) Pitches() []Pitch {
	return slices.Clone(h.order)
}

// Len returns the number of held pitches.
func (h *HeldKeys) Len() int {
	return len(h.order)
}

// Clear releases everything.
func (h *HeldKeys) Clear() {
	h.order = nil
	h.at = nil
}

// Session is the whole editable state: parts plus the keyboard.
type Session struct {
	Parts   []*Part
	Current int

	KeyPressed HeldKeys
	// LastRelease is the zero time when nothing has been released yet.
	LastRelease time.Time
}

// NewSession wraps parts in a session, adding an empty part if there are none.
func NewSession(parts []*Part) *Session {
	if len(parts) == 0 {
		parts = []*Part{NewPart()}
	}
	return &Session{Parts: parts}
}

// CurrentPart returns the part that receives recorded chords.
func (s *Session) CurrentPart() *Part {
	return s.Parts[s.Current]
}

// Part returns part i, or nil when out of range.
func (s *Session) Part(i int) *Part {
	if i < 0 || i >= len(s.Parts) {
		return nil
	}
	return s.Parts[i]
}

// PartByID finds a part by id.
func (s *Session) PartByID(id string) (int, *Part) {
	for i, p := range s.Parts {
		if p.ID == id {
			return i, p
		}
	}
	return -1, nil
}
