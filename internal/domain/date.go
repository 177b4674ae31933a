package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// DateLayout is the calendar date format the forms display.
const DateLayout = "2006-01-02"

// Date is an optional form date. Decoding never fails: null, "", and values
// that are neither yyyy-MM-dd nor RFC3339 leave it unset.
type Date struct {
	time.Time
}

// NewDate returns the calendar date of t.
func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d *Date) UnmarshalJSON(raw []byte) error {
	*d = Date{}
	var s string
	if err := json.Unmarshal(bytes.TrimSpace(raw), &s); err != nil || s == "" {
		return nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		*d = Date{Time: t}
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*d = NewDate(t)
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// String is the yyyy-MM-dd form, or empty when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}
