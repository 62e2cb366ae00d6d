package core

// Instrument turns pitches into sound. Times are transport seconds.
type Instrument interface {
	Attack(pitches []Pitch)
	Release(pitches []Pitch)
	AttackRelease(pitches []Pitch, duration float64, at float64)
}

// Transport is the clock that fires scheduled callbacks.
// Callbacks are grouped by part so they can be cancelled together.
type Transport interface {
	Now() float64
	ScheduleAt(partID string, at float64, fn func())
	CancelAll(partID string)
	Start()
	Pause()
	Stop()
}

// Store persists part data between runs.
// Load returns nil data when nothing has been saved.
type Store interface {
	Load() ([]PartData, error)
	Save(data []PartData) error
}
