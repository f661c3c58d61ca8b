package values

import (
	"fmt"
	"strings"
	"time"
)

// Time is a time of day, the TIME value type ("102030", "102030Z", or
// "America/New_York:102030" for the zoned form).
type Time struct {
	Hour   int
	Minute int
	Second int
	Kind   TimeKind
	Zone   TZID
}

// NewTime builds a local time of day from its components.
func NewTime(hour, minute, second int) Time {
	return Time{Hour: hour, Minute: minute, Second: second, Kind: KindLocal}
}

// NewTimeUTC builds a UTC time of day.
func NewTimeUTC(hour, minute, second int) Time {
	return Time{Hour: hour, Minute: minute, Second: second, Kind: KindUTC}
}

// NewTimeZoned builds a time of day local to the referenced zone.
func NewTimeZoned(hour, minute, second int, zone TZID) Time {
	return Time{Hour: hour, Minute: minute, Second: second, Kind: KindZoned, Zone: zone}
}

// TimeOf extracts the clock reading of a time.Time. The kind is UTC
// when the value's location is UTC, local otherwise.
func TimeOf(t time.Time) Time {
	kind := KindLocal
	if t.Location() == time.UTC {
		kind = KindUTC
	}
	return Time{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Kind: kind}
}

// ParseTime parses the three TIME forms. A leading "T" is accepted and
// ignored so DATE-TIME fragments parse directly.
func ParseTime(s string) (Time, error) {
	rest := s
	var zone TZID
	kind := KindLocal
	if i := strings.LastIndexByte(rest, ':'); i >= 0 {
		zone = TZID(rest[:i])
		rest = rest[i+1:]
		kind = KindZoned
		if zone == "" {
			return Time{}, formatErr("time", s)
		}
	}
	rest = strings.TrimPrefix(rest, "T")
	if strings.HasSuffix(rest, "Z") {
		if kind == KindZoned {
			return Time{}, formatErr("time", s)
		}
		kind = KindUTC
		rest = rest[:len(rest)-1]
	}
	if len(rest) != 6 {
		return Time{}, formatErr("time", s)
	}
	h, okH := atoiDigits(rest[:2])
	m, okM := atoiDigits(rest[2:4])
	sec, okS := atoiDigits(rest[4:6])
	if !okH || !okM || !okS || h > 23 || m > 59 || sec > 60 {
		return Time{}, formatErr("time", s)
	}
	return Time{Hour: h, Minute: m, Second: sec, Kind: kind, Zone: zone}, nil
}

// String renders the form matching the value's kind, the inverse of
// ParseTime.
func (t Time) String() string {
	base := fmt.Sprintf("%02d%02d%02d", t.Hour, t.Minute, t.Second)
	switch t.Kind {
	case KindUTC:
		return base + "Z"
	case KindZoned:
		return string(t.Zone) + ":" + base
	default:
		return base
	}
}

// Compare orders by clock reading alone; the kind and zone reference do
// not participate.
func (t Time) Compare(o Time) int {
	if c := cmpInt(t.Hour, o.Hour); c != 0 {
		return c
	}
	if c := cmpInt(t.Minute, o.Minute); c != 0 {
		return c
	}
	return cmpInt(t.Second, o.Second)
}

// Equal reports clock equality, ignoring kind and zone like Compare.
func (t Time) Equal(o Time) bool { return t.Compare(o) == 0 }
