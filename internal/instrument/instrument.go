// Package instrument provides the sound sinks parts play through.
package instrument

import (
	"sync"

	"go.uber.org/zap"

	"github.com/tessro/stave/internal/core"
)

// Silent ignores every call.
type Silent struct{}

func (Silent) Attack([]core.Pitch) {}
func (Silent) Release([]core.Pitch) {}
func (Silent) AttackRelease([]core.Pitch, float64, float64) {}

// Logging writes every call to a logger.
type Logging struct {
	logger *zap.Logger
}

// NewLogging returns an instrument that logs at info level.
func NewLogging(logger *zap.Logger) *Logging {
	return &Logging{logger: logger.Named("instrument")}
}

func (l *Logging) Attack(pitches []core.Pitch) {
	l.logger.Info("attack", zap.Strings("notes", core.PitchNames(pitches)))
}

func (l *Logging) Release(pitches []core.Pitch) {
	l.logger.Info("release", zap.Strings("notes", core.PitchNames(pitches)))
}

func (l *Logging) AttackRelease(pitches []core.Pitch, duration, at float64) {
	if len(pitches) == 0 {
		l.logger.Debug("rest", zap.Float64("duration", duration), zap.Float64("at", at))
		return
	}
	l.logger.Info("play",
		zap.Strings("notes", core.PitchNames(pitches)),
		zap.Float64("duration", duration),
		zap.Float64("at", at),
	)
}

// CallKind identifies an instrument method.
type CallKind string

const (
	CallAttack        CallKind = "attack"
	CallRelease       CallKind = "release"
	CallAttackRelease CallKind = "attack-release"
)

// Call is one recorded instrument call.
type Call struct {
	Kind     CallKind
	Notes    []string
	Duration float64
	At       float64
}

// Recorder keeps every call it receives.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) add(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *Recorder) Attack(pitches []core.Pitch) {
	r.add(Call{Kind: CallAttack, Notes: core.PitchNames(pitches)})
}

func (r *Recorder) Release(pitches []core.Pitch) {
	r.add(Call{Kind: CallRelease, Notes: core.PitchNames(pitches)})
}

func (r *Recorder) AttackRelease(pitches []core.Pitch, duration, at float64) {
	r.add(Call{Kind: CallAttackRelease, Notes: core.PitchNames(pitches), Duration: duration, At: at})
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Played returns only the attack-release calls.
func (r *Recorder) Played() []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Kind == CallAttackRelease {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets every call.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
