package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrUnknownPitch      = errors.New("unknown pitch")
	ErrMalformedSession  = errors.New("malformed session data")
	ErrNoMIDIPorts       = errors.New("no MIDI ports available")
	ErrPortNotFound      = errors.New("MIDI port not found")
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrConfigNotFound    = errors.New("config file not found")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrPartOutOfRange    = errors.New("part index out of range")
	ErrChordOutOfRange   = errors.New("chord index out of range")
)

// StaveError wraps an error with a user-friendly suggestion.
type StaveError struct {
	Err        error
	Suggestion string
}

func (e *StaveError) Error() string {
	return e.Err.Error()
}

func (e *StaveError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &StaveError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var staveErr *StaveError
	if errors.As(err, &staveErr) && staveErr.Suggestion != "" {
		return staveErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	// MIDI
	if errors.Is(err, ErrNoMIDIPorts) {
		return "Connect a MIDI device or start a virtual port, then run 'stave devices'"
	}
	if errors.Is(err, ErrPortNotFound) || strings.Contains(errStr, "port not found") {
		return "Run 'stave devices' to see available MIDI ports"
	}
	if errors.Is(err, ErrUnknownInstrument) {
		return "Use 'default', 'log' or 'midi:<port>' as the instrument"
	}

	// Session data
	if errors.Is(err, ErrUnknownPitch) {
		return "Pitches are written as a letter, an optional '#', and an octave, e.g. C#5"
	}
	if errors.Is(err, ErrMalformedSession) {
		return "Run 'stave clear' to start over with an empty session"
	}
	if errors.Is(err, ErrUnsupportedFormat) {
		return "Supported formats are json, yaml and midi"
	}
	if errors.Is(err, ErrPartOutOfRange) || errors.Is(err, ErrChordOutOfRange) {
		return "Run 'stave show' to list parts and chords"
	}

	// Config
	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) ||
		strings.Contains(errStr, "config") {
		return "Run 'stave config init' to create a configuration file"
	}

	if strings.Contains(errStr, "address already in use") {
		return "Another process is using that address. Pass --addr or set server.addr"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
