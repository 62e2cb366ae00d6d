package core

import (
	"fmt"
	"strconv"
	"strings"

	staveerrors "github.com/tessro/stave/internal/errors"
)

// Octave range reachable from the keyboard and by transposition.
const (
	LowestOctave  = 4
	HighestOctave = 6
)

const letters = "CDEFGAB"

var letterSemitone = [...]int{0, 2, 4, 5, 7, 9, 11}

// spelling maps a pitch class to its letter index and sharp flag.
var spelling = [12]struct {
	letter int
	sharp  bool
}{
	{0, false}, {0, true}, {1, false}, {1, true}, {2, false}, {3, false},
	{3, true}, {4, false}, {4, true}, {5, false}, {5, true}, {6, false},
}

// Pitch is a note name with octave, e.g. C#5.
type Pitch struct {
	Letter byte
	Sharp  bool
	Octave int
}

var (
	lowest  = Pitch{Letter: 'C', Octave: LowestOctave}
	highest = Pitch{Letter: 'B', Octave: HighestOctave}
)

// ParsePitch parses the canonical <letter>[#]<octave> form.
func ParsePitch(s string) (Pitch, error) {
	if len(s) < 2 {
		return Pitch{}, fmt.Errorf("%w: %q", staveerrors.ErrUnknownPitch, s)
	}
	letter := strings.ToUpper(s[:1])[0]
	if strings.IndexByte(letters, letter) < 0 {
		return Pitch{}, fmt.Errorf("%w: %q", staveerrors.ErrUnknownPitch, s)
	}
	rest := s[1:]
	sharp := strings.HasPrefix(rest, "#")
	if sharp {
		if letter == 'E' || letter == 'B' {
			return Pitch{}, fmt.Errorf("%w: %q has no sharp", staveerrors.ErrUnknownPitch, s)
		}
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return Pitch{}, fmt.Errorf("%w: %q", staveerrors.ErrUnknownPitch, s)
	}
	p := Pitch{Letter: letter, Sharp: sharp, Octave: octave}
	if n := p.number(); n < 0 || n > 127 {
		return Pitch{}, fmt.Errorf("%w: %q is outside the MIDI range", staveerrors.ErrUnknownPitch, s)
	}
	return p, nil
}

// MustParsePitch is like ParsePitch but panics on error.
func MustParsePitch(s string) Pitch {
	p, err := ParsePitch(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePitches parses a list of pitch names.
func ParsePitches(names []string) ([]Pitch, error) {
	out := make([]Pitch, 0, len(names))
	for _, n := range names {
		p, err := ParsePitch(n)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (p Pitch) String() string {
	if p.Sharp {
		return fmt.Sprintf("%c#%d", p.Letter, p.Octave)
	}
	return fmt.Sprintf("%c%d", p.Letter, p.Octave)
}

func (p Pitch) number() int {
	i := strings.IndexByte(letters, p.Letter)
	if i < 0 {
		return -1
	}
	n := (p.Octave+1)*12 + letterSemitone[i]
	if p.Sharp {
		n++
	}
	return n
}

// MIDI returns the MIDI key number, with C4 = 60.
func (p Pitch) MIDI() uint8 {
	n := p.number()
	if n < 0 {
		return 0
	}
	if n > 127 {
		return 127
	}
	return uint8(n)
}

// PitchFromMIDI spells a MIDI key number, using sharps for black keys.
func PitchFromMIDI(key uint8) Pitch {
	s := spelling[key%12]
	return Pitch{
		Letter: letters[s.letter],
		Sharp:  s.sharp,
		Octave: int(key)/12 - 1,
	}
}

// TransposeUp raises p by a semitone. B6 and above are returned unchanged.
func TransposeUp(p Pitch) Pitch {
	if p.number() >= highest.number() {
		return p
	}
	return PitchFromMIDI(uint8(p.number() + 1))
}

// TransposeDown lowers p by a semitone. C4 and below are returned unchanged.
func TransposeDown(p Pitch) Pitch {
	if p.number() <= lowest.number() {
		return p
	}
	return PitchFromMIDI(uint8(p.number() - 1))
}

// PitchNames renders pitches in order.
func PitchNames(ps []Pitch) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (p Pitch) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pitch) UnmarshalText(b []byte) error {
	parsed, err := ParsePitch(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
