package values

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day component, the DATE value
// type ("20240301").
type Date struct {
	Year  int
	Month int
	Day   int
}

// NewDate builds a date from its components. Components are not range
// checked; use ParseDate for validated input.
func NewDate(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates a time.Time to its date in that value's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// ParseDate parses the eight-digit "YYYYMMDD" form.
func ParseDate(s string) (Date, error) {
	if len(s) != 8 {
		return Date{}, formatErr("date", s)
	}
	y, okY := atoiDigits(s[:4])
	m, okM := atoiDigits(s[4:6])
	d, okD := atoiDigits(s[6:8])
	if !okY || !okM || !okD || m < 1 || m > 12 || d < 1 || d > 31 {
		return Date{}, formatErr("date", s)
	}
	return Date{Year: y, Month: m, Day: d}, nil
}

// String renders "YYYYMMDD", the inverse of ParseDate.
func (d Date) String() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool { return d == Date{} }

// Time returns midnight of the date in UTC, the anchor for date
// arithmetic.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the day of the week the date falls on.
func (d Date) Weekday() Weekday { return WeekdayOf(d.Time().Weekday()) }

// Compare orders dates chronologically.
func (d Date) Compare(o Date) int {
	if c := cmpInt(d.Year, o.Year); c != 0 {
		return c
	}
	if c := cmpInt(d.Month, o.Month); c != 0 {
		return c
	}
	return cmpInt(d.Day, o.Day)
}

// Add shifts the date by a duration, counting whole days.
func (d Date) Add(du Duration) Date {
	return DateOf(d.Time().Add(du.TimeDuration()))
}

// Sub returns the non-negative duration between two dates.
func (d Date) Sub(o Date) Duration {
	delta := d.Time().Sub(o.Time())
	if delta < 0 {
		delta = -delta
	}
	return DurationOf(delta)
}
