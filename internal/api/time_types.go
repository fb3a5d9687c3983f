package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// FlexDate is a time that unmarshals from either:
//   - RFC3339 string: "2024-01-15T10:30:00Z"
//   - plain date: "2024-01-15", a calendar day with no zone of its own
//
// It always marshals to RFC3339.
type FlexDate struct {
	time.Time
	dateOnly bool
}

// UnmarshalJSON handles flexible date parsing from JSON. Plain dates are
// read as local midnight until At places them in another zone.
func (d *FlexDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cannot unmarshal %s into a date", string(data))
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*d = FlexDate{Time: t}
		return nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		*d = FlexDate{Time: t, dateOnly: true}
		return nil
	}
	return fmt.Errorf("cannot parse date string: %s", s)
}

// At returns the instant the date stands for in loc. A plain date becomes
// midnight in loc so it counts as that calendar day there; full timestamps
// are returned unchanged.
func (d FlexDate) At(loc *time.Location) time.Time {
	if !d.dateOnly {
		return d.Time
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// MarshalJSON outputs the date in RFC3339 format.
func (d FlexDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.RFC3339))
}
