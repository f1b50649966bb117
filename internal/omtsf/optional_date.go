package omtsf

import (
	"bytes"
	"encoding/json"
)

// OptionalDate represents the tri-state `valid_to` field described in
// spec.md §9 Design Notes: a field can be absent entirely (no upper
// bound, JSON key omitted), explicitly open-ended (JSON `null`), or dated
// (a concrete CalendarDate). The identity predicates treat the first two
// as equivalent ("no upper bound"); the diff engine must still record a
// change between an absent field and an explicit null.
type OptionalDate struct {
	Present bool          // false: field was absent from the source JSON.
	Value   *CalendarDate // nil with Present=true: explicit null (open-ended).
}

// NoDate represents an absent field.
var NoDate = OptionalDate{Present: false}

// OpenEnded represents an explicit JSON null.
func OpenEnded() OptionalDate {
	return OptionalDate{Present: true, Value: nil}
}

// DatedTo represents a concrete end date.
func DatedTo(d CalendarDate) OptionalDate {
	v := d
	return OptionalDate{Present: true, Value: &v}
}

// IsOpenEnded reports whether this represents "no upper bound", which is
// true both for an absent field and an explicit null.
func (o OptionalDate) IsOpenEnded() bool {
	return !o.Present || o.Value == nil
}

// MarshalJSON renders absent as omitted (callers must use omitempty-style
// handling at the containing struct via *OptionalDate), null as JSON null,
// and dated as a quoted date string.
func (o OptionalDate) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(string(*o.Value))
}

// UnmarshalJSON distinguishes explicit null (Present=true, Value=nil) from
// a dated string. Absence is handled by the containing struct never
// calling UnmarshalJSON for a missing key — callers embed *OptionalDate
// and only dereference when the key existed, or consult HasKey when
// decoding through a raw map.
func (o *OptionalDate) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		o.Present = true
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	d, err := NewCalendarDate(s)
	if err != nil {
		return err
	}
	o.Present = true
	o.Value = &d
	return nil
}
