package core

import "encoding/json"

// Index is an optional position in a slice.
type Index struct {
	i     int
	valid bool
}

// NoIndex is the empty Index.
var NoIndex = Index{}

// SomeIndex returns an Index holding i.
func SomeIndex(i int) Index {
	return Index{i: i, valid: true}
}

// Get returns the index and whether it is set.
func (x Index) Get() (int, bool) {
	return x.i, x.valid
}

// IsSet reports whether the index holds a value.
func (x Index) IsSet() bool {
	return x.valid
}

// Is reports whether the index is set to i.
func (x Index) Is(i int) bool {
	return x.valid && x.i == i
}

// MarshalJSON encodes an unset index as null.
func (x Index) MarshalJSON() ([]byte, error) {
	if !x.valid {
		return []byte("null"), nil
	}
	return json.Marshal(x.i)
}

// UnmarshalJSON implements json.Unmarshaler.
func (x *Index) UnmarshalJSON(b []byte) error {
	var v *int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		*x = NoIndex
	} else {
		*x = SomeIndex(*v)
	}
	return nil
}
