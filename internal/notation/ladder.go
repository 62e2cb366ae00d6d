// Package notation converts between durations in seconds and musical note values.
package notation

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Modifier alters the length of a plain note value.
type Modifier int

const (
	Plain Modifier = iota
	Dotted
	Triplet
)

// DefaultBPM is the reference tempo. At 120 BPM a whole note lasts two seconds.
const DefaultBPM = 120.0

const (
	finest  = 256
	finestT = 128
)

// Token is a note value: a 1/Subdivision note, optionally dotted or tripleted.
type Token struct {
	Subdivision int
	Modifier    Modifier
}

// String renders the token the way it is written on the stave, e.g. "4n", "4n." or "4t".
func (t Token) String() string {
	switch t.Modifier {
	case Dotted:
		return fmt.Sprintf("%dn.", t.Subdivision)
	case Triplet:
		return fmt.Sprintf("%dt", t.Subdivision)
	default:
		return fmt.Sprintf("%dn", t.Subdivision)
	}
}

// factor is the token's length as a fraction of a whole note.
func (t Token) factor() float64 {
	f := 1 / float64(t.Subdivision)
	switch t.Modifier {
	case Dotted:
		return f * 1.5
	case Triplet:
		return f * 2 / 3
	}
	return f
}

// ParseToken parses "8n", "8n." or "8t".
func ParseToken(s string) (Token, error) {
	s = strings.TrimSpace(s)
	var mod Modifier
	switch {
	case strings.HasSuffix(s, "n."):
		mod, s = Dotted, strings.TrimSuffix(s, "n.")
	case strings.HasSuffix(s, "t"):
		mod, s = Triplet, strings.TrimSuffix(s, "t")
	case strings.HasSuffix(s, "n"):
		mod, s = Plain, strings.TrimSuffix(s, "n")
	default:
		return Token{}, fmt.Errorf("invalid note value %q", s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Token{}, fmt.Errorf("invalid note value %q: %w", s, err)
	}
	tok := Token{Subdivision: n, Modifier: mod}
	if !tok.valid() {
		return Token{}, fmt.Errorf("note value %s is not on the ladder", tok)
	}
	return tok, nil
}

func (t Token) valid() bool {
	n := t.Subdivision
	if n < 1 || n&(n-1) != 0 {
		return false
	}
	if t.Modifier == Triplet {
		return n <= finestT
	}
	return n <= finest
}

// rungs holds every token ordered from longest to shortest.
var rungs = buildRungs()

func buildRungs() []Token {
	var out []Token
	for n := 1; n <= finest; n *= 2 {
		out = append(out, Token{n, Dotted}, Token{n, Plain})
		if n <= finestT {
			out = append(out, Token{n, Triplet})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].factor() > out[j].factor() })
	return out
}

// Ladder maps durations onto note values at a fixed tempo.
type Ladder struct {
	BPM float64
}

// Default is the ladder at DefaultBPM.
var Default = Ladder{BPM: DefaultBPM}

func (l Ladder) whole() float64 {
	bpm := l.BPM
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	return 240 / bpm
}

// Rungs returns every note value, longest first.
func (l Ladder) Rungs() []Token {
	return append([]Token(nil), rungs...)
}

// Max is the longest note value, a dotted whole.
func (l Ladder) Max() Token { return rungs[0] }

// Min is the shortest note value, a 256th.
func (l Ladder) Min() Token { return rungs[len(rungs)-1] }

// ToSeconds returns the length of t in seconds.
func (l Ladder) ToSeconds(t Token) float64 {
	return l.whole() * t.factor()
}

// ToNotation returns the note value nearest to seconds.
func (l Ladder) ToNotation(seconds float64) Token {
	return rungs[l.index(seconds)]
}

// Quantize snaps seconds onto the nearest rung.
func (l Ladder) Quantize(seconds float64) float64 {
	return l.ToSeconds(l.ToNotation(seconds))
}

// Shorten steps one rung toward the 256th. The shortest rung is returned unchanged.
func (l Ladder) Shorten(seconds float64) float64 {
	i := l.index(seconds)
	if i < len(rungs)-1 {
		i++
	}
	return l.ToSeconds(rungs[i])
}

// Lengthen steps one rung toward the dotted whole. The longest rung is returned unchanged.
func (l Ladder) Lengthen(seconds float64) float64 {
	i := l.index(seconds)
	if i > 0 {
		i--
	}
	return l.ToSeconds(rungs[i])
}

// index finds the nearest rung on a log scale. Ties go to the longer rung.
func (l Ladder) index(seconds float64) int {
	if seconds <= 0 || math.IsNaN(seconds) {
		return len(rungs) - 1
	}
	best, bestDist := 0, math.Inf(1)
	for i, t := range rungs {
		d := math.Abs(math.Log(seconds / l.ToSeconds(t)))
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
