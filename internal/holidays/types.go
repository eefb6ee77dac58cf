// Package holidays loads, caches and queries Iranian public holiday data
// keyed by Jalali date.
package holidays

import (
	"encoding/json"
)

// Entry is a single holiday in the JSON data.
type Entry struct {
	Holiday bool   `json:"holiday"`
	Name    string `json:"name"`
	// Lunar marks holidays that follow the Hijri calendar and therefore move
	// between Jalali years.
	Lunar bool `json:"lunar,omitempty"`
}

// UnmarshalJSON accepts the holiday flag as either a boolean or a string;
// any non-empty string counts as a holiday.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type alias Entry
	aux := &struct {
		Holiday interface{} `json:"holiday"`
		*alias
	}{
		alias: (*alias)(e),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch v := aux.Holiday.(type) {
	case bool:
		e.Holiday = v
	case string:
		e.Holiday = v != ""
	default:
		e.Holiday = false
	}
	return nil
}

// fileYear is one element of the on-disk array.
type fileYear struct {
	Year    string            `json:"year"`
	Holiday map[string]*Entry `json:"holiday"`
}

// Data maps a Jalali year to its entries keyed by "MM-DD".
type Data map[int]map[string]*Entry

// Info describes the holiday status of one day.
type Info struct {
	// IsHoliday is false for entries that mark a working day, such as
	// commemorations that are not days off.
	IsHoliday bool
	Name      string
}

// Coverage summarises which Jalali years a data set contains.
type Coverage struct {
	MinYear int
	MaxYear int
	Count   int
}
