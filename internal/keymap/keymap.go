// Package keymap maps computer keyboard keys to pitches.
package keymap

import (
	"strings"
	"unicode"

	"github.com/tessro/stave/internal/core"
)

// DefaultRows lays C through B across three keyboard rows, lowest octave first.
var DefaultRows = []string{"zxcvbnm", "asdfghj", "qwertyu"}

const scale = "CDEFGAB"

// Keymap resolves keys against rows of seven keys each. Row i plays octave
// Base+i. Shifted keys are sharp, except on E and B.
type Keymap struct {
	Rows []string
	Base int
}

// New returns the default layout starting at octave base.
func New(base int) Keymap {
	return Keymap{Rows: DefaultRows, Base: base}
}

// Resolve maps a key as bubbletea reports it ("c", "C", "shift+c") to a pitch.
func (k Keymap) Resolve(key string) (core.Pitch, bool) {
	shift := false
	if rest, ok := strings.CutPrefix(key, "shift+"); ok {
		key, shift = rest, true
	}
	runes := []rune(key)
	if len(runes) != 1 {
		return core.Pitch{}, false
	}
	r := runes[0]
	if unicode.IsUpper(r) {
		shift = true
		r = unicode.ToLower(r)
	}
	for row, keys := range k.Rows {
		i := strings.IndexRune(keys, r)
		if i < 0 || i >= len(scale) {
			continue
		}
		letter := scale[i]
		return core.Pitch{
			Letter: letter,
			Sharp:  shift && letter != 'E' && letter != 'B',
			Octave: k.Base + row,
		}, true
	}
	return core.Pitch{}, false
}

// KeyFor returns the unshifted key that plays p, if any.
func (k Keymap) KeyFor(p core.Pitch) (string, bool) {
	row := p.Octave - k.Base
	if row < 0 || row >= len(k.Rows) {
		return "", false
	}
	i := strings.IndexByte(scale, p.Letter)
	keys := []rune(k.Rows[row])
	if i < 0 || i >= len(keys) {
		return "", false
	}
	key := string(keys[i])
	if p.Sharp {
		key = strings.ToUpper(key)
	}
	return key, true
}
