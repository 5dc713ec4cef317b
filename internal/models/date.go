package models

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

const dateOnly = "2006-01-02"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	dateOnly,
}

// Date is a timestamp or calendar date as sent by the API. The zero value means missing.
type Date struct {
	time.Time
}

// NewDate wraps t
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// ParseDate accepts RFC3339, zone-less timestamps and plain dates
func ParseDate(s string) (Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("unrecognised date: %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	if d.isCalendarDate() {
		return json.Marshal(d.Format(dateOnly))
	}
	return json.Marshal(d.Format(time.RFC3339))
}

// UnmarshalJSON accepts the layouts ParseDate knows and epoch milliseconds.
// Anything else decodes to the zero Date so one odd row cannot break a listing.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}
	*d = Date{}
	switch v := raw.(type) {
	case nil:
	case string:
		if v == "" {
			return nil
		}
		parsed, err := ParseDate(v)
		if err != nil {
			slog.Debug("Ignoring unrecognised date", "value", v)
			return nil
		}
		*d = parsed
	case float64:
		*d = Date{Time: time.UnixMilli(int64(v)).UTC()}
	default:
		slog.Debug("Ignoring unrecognised date", "value", string(data))
	}
	return nil
}

func (d Date) isCalendarDate() bool {
	h, m, s := d.Clock()
	return h == 0 && m == 0 && s == 0 && d.Nanosecond() == 0 && d.Location() == time.UTC
}
