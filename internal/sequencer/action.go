package sequencer

type (
	// Action is a user command bound to an engine. UIs check Enabled to grey
	// out commands that would do nothing.
	Action struct {
		doer Doer
	}

	// Doer performs an action.
	Doer interface {
		Do()
	}

	// Enabler reports whether an action can run. Doers that do not implement
	// it are always enabled.
	Enabler interface {
		Enabled() bool
	}
)

// MakeAction wraps a Doer.
func MakeAction(doer Doer) Action {
	return Action{doer: doer}
}

// Do runs the action if it is enabled.
func (a Action) Do() {
	if !a.Enabled() {
		return
	}
	a.doer.Do()
}

// Enabled reports whether Do would run.
func (a Action) Enabled() bool {
	if a.doer == nil {
		return false
	}
	e, ok := a.doer.(Enabler)
	if !ok {
		return true
	}
	return e.Enabled()
}

type undo Engine

// UndoAction undoes the last change.
func (e *Engine) UndoAction() Action { return MakeAction((*undo)(e)) }
func (e *undo) Enabled() bool { return (*Engine)(e).CanUndo() }
func (e *undo) Do() { (*Engine)(e).Undo() }

type removePart Engine

// RemovePartAction removes the current part.
func (e *Engine) RemovePartAction() Action { return MakeAction((*removePart)(e)) }
func (e *removePart) Enabled() bool { return len(e.session.Parts) > 1 }
func (e *removePart) Do() {
	_ = (*Engine)(e).RemovePart(e.session.Current)
}

type deleteSelected Engine

// DeleteAction deletes the selected chords, or the last recorded one.
func (e *Engine) DeleteAction() Action { return MakeAction((*deleteSelected)(e)) }
func (e *deleteSelected) Enabled() bool {
	for i, p := range e.session.Parts {
		if p.SelectedIndex().IsSet() {
			return true
		}
		if i == e.session.Current && p.Recording && len(p.Chords) > 0 {
			return true
		}
	}
	return false
}
func (e *deleteSelected) Do() { (*Engine)(e).DeleteSelected() }

type editSelection struct {
	e  *Engine
	fn func()
}

func (a editSelection) Enabled() bool {
	for _, p := range a.e.session.Parts {
		if p.SelectedIndex().IsSet() {
			return true
		}
	}
	return false
}
func (a editSelection) Do() { a.fn() }

// TransposeAction transposes the selected chords.
func (e *Engine) TransposeAction(up bool) Action {
	return MakeAction(editSelection{e, func() { e.TransposeSelected(up) }})
}

// LengthenAction lengthens the selected chords.
func (e *Engine) LengthenAction() Action {
	return MakeAction(editSelection{e, e.LengthenSelected})
}

// ShortenAction shortens the selected chords.
func (e *Engine) ShortenAction() Action {
	return MakeAction(editSelection{e, e.ShortenSelected})
}
