package notice

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar format used for dates on the wire and in storage.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time-of-day component.
type Date struct {
	t time.Time
}

// NewDate builds a Date from its calendar parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseISODate parses a yyyy-mm-dd string.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse iso date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return d.t }

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// MarshalJSON encodes the date as an ISO calendar string.
func (d Date) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(d.String())
	if err != nil {
		return nil, fmt.Errorf("marshal date: %w", err)
	}
	return b, nil
}

// UnmarshalJSON decodes an ISO calendar string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal date: %w", err)
	}
	parsed, err := ParseISODate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DatePtr returns a pointer to d, or nil when d is zero.
func DatePtr(d Date) *Date {
	if d.IsZero() {
		return nil
	}
	return &d
}
