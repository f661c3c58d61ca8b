package values

import (
	"fmt"
	"strings"
	"time"
)

// DateTime is the DATE-TIME value type: a date joined with a time of
// day in one of the three time forms ("20240301T100000",
// "20240301T100000Z", or "America/New_York:20240301T100000").
type DateTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
	Kind   TimeKind
	Zone   TZID
}

// NewDateTime builds a floating local date-time.
func NewDateTime(year, month, day, hour, minute, second int) DateTime {
	return DateTime{
		Year: year, Month: month, Day: day,
		Hour: hour, Minute: minute, Second: second,
		Kind: KindLocal,
	}
}

// NewDateTimeUTC builds an absolute UTC date-time.
func NewDateTimeUTC(year, month, day, hour, minute, second int) DateTime {
	dt := NewDateTime(year, month, day, hour, minute, second)
	dt.Kind = KindUTC
	return dt
}

// NewDateTimeZoned builds a date-time local to the referenced zone.
func NewDateTimeZoned(year, month, day, hour, minute, second int, zone TZID) DateTime {
	dt := NewDateTime(year, month, day, hour, minute, second)
	dt.Kind = KindZoned
	dt.Zone = zone
	return dt
}

// DateTimeOf converts a time.Time, reading its wall clock. The kind is
// UTC when the value's location is UTC, local otherwise.
func DateTimeOf(t time.Time) DateTime {
	y, m, d := t.Date()
	dt := NewDateTime(y, int(m), d, t.Hour(), t.Minute(), t.Second())
	if t.Location() == time.UTC {
		dt.Kind = KindUTC
	}
	return dt
}

// Combine joins a date with a time of day, taking the kind and zone
// from the time value.
func Combine(d Date, t Time) DateTime {
	return DateTime{
		Year: d.Year, Month: d.Month, Day: d.Day,
		Hour: t.Hour, Minute: t.Minute, Second: t.Second,
		Kind: t.Kind, Zone: t.Zone,
	}
}

// ParseDateTime parses the three DATE-TIME forms. A bare DATE is also
// accepted and yields midnight with an unknown kind.
func ParseDateTime(s string) (DateTime, error) {
	rest := s
	var zone TZID
	zoned := false
	if i := strings.LastIndexByte(rest, ':'); i >= 0 {
		zone = TZID(rest[:i])
		rest = rest[i+1:]
		zoned = true
		if zone == "" {
			return DateTime{}, formatErr("date-time", s)
		}
	}
	datePart, timePart, hasTime := strings.Cut(rest, "T")
	d, err := ParseDate(datePart)
	if err != nil {
		return DateTime{}, formatErr("date-time", s)
	}
	if !hasTime {
		if zoned {
			return DateTime{}, formatErr("date-time", s)
		}
		dt := Combine(d, Time{})
		dt.Kind = KindUnknown
		return dt, nil
	}
	t, err := ParseTime(timePart)
	if err != nil || t.Kind == KindZoned {
		return DateTime{}, formatErr("date-time", s)
	}
	if zoned {
		if t.Kind == KindUTC {
			return DateTime{}, formatErr("date-time", s)
		}
		t.Kind = KindZoned
		t.Zone = zone
	}
	return Combine(d, t), nil
}

// String renders the form matching the value's kind, the inverse of
// ParseDateTime.
func (dt DateTime) String() string {
	base := fmt.Sprintf("%04d%02d%02dT%02d%02d%02d",
		dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second)
	switch dt.Kind {
	case KindUTC:
		return base + "Z"
	case KindZoned:
		return string(dt.Zone) + ":" + base
	default:
		return base
	}
}

// IsZero reports whether dt is the zero value.
func (dt DateTime) IsZero() bool { return dt == DateTime{} }

// Date returns the date component.
func (dt DateTime) Date() Date { return Date{Year: dt.Year, Month: dt.Month, Day: dt.Day} }

// Clock returns the time-of-day component, carrying the kind and zone.
func (dt DateTime) Clock() Time {
	return Time{Hour: dt.Hour, Minute: dt.Minute, Second: dt.Second, Kind: dt.Kind, Zone: dt.Zone}
}

// Time returns the clock reading anchored in UTC. All date-time
// arithmetic operates on this clock-face value, so two values in
// different zones with the same reading behave identically.
func (dt DateTime) Time() time.Time {
	return time.Date(dt.Year, time.Month(dt.Month), dt.Day,
		dt.Hour, dt.Minute, dt.Second, 0, time.UTC)
}

// Compare orders by the numeric fields alone. The kind and zone
// reference never participate, so "20240301T100000Z" and
// "Europe/Paris:20240301T100000" compare equal.
func (dt DateTime) Compare(o DateTime) int {
	if c := dt.Date().Compare(o.Date()); c != 0 {
		return c
	}
	return dt.Clock().Compare(o.Clock())
}

// Equal reports clock-face equality, ignoring kind and zone like
// Compare.
func (dt DateTime) Equal(o DateTime) bool { return dt.Compare(o) == 0 }

// Before reports whether dt precedes o.
func (dt DateTime) Before(o DateTime) bool { return dt.Compare(o) < 0 }

// After reports whether dt follows o.
func (dt DateTime) After(o DateTime) bool { return dt.Compare(o) > 0 }

// Add shifts the date-time by a duration, preserving the kind and zone
// reference.
func (dt DateTime) Add(d Duration) DateTime {
	shifted := DateTimeOf(dt.Time().Add(d.TimeDuration()))
	shifted.Kind = dt.Kind
	shifted.Zone = dt.Zone
	return shifted
}

// Sub returns the non-negative duration between two date-times,
// regardless of operand order.
func (dt DateTime) Sub(o DateTime) Duration {
	delta := dt.Time().Sub(o.Time())
	if delta < 0 {
		delta = -delta
	}
	return DurationOf(delta)
}
