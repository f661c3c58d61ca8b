// Package values implements the iCalendar temporal value types: DATE,
// TIME, DATE-TIME, DURATION, PERIOD, UTC-OFFSET and WEEKDAYNUM. Each
// type parses from and formats to its RFC 5545 text form, and the two
// are inverses for every valid value.
package values

import (
	"fmt"

	"github.com/samgerene/xcal"
)

// TZID names a time zone reference attached to a zoned time value. It
// identifies a VTIMEZONE component; the value types carry it opaquely.
type TZID string

func (z TZID) String() string { return string(z) }

// TimeKind distinguishes the three RFC 5545 time forms.
type TimeKind int

const (
	// KindUnknown marks a value whose form was not stated.
	KindUnknown TimeKind = iota
	// KindLocal is a floating local time with no zone reference.
	KindLocal
	// KindUTC is an absolute time, rendered with a Z suffix.
	KindUTC
	// KindZoned is a local time qualified by a TZID reference.
	KindZoned
)

func (k TimeKind) String() string {
	switch k {
	case KindLocal:
		return "LOCAL"
	case KindUTC:
		return "UTC"
	case KindZoned:
		return "ZONED"
	default:
		return "UNKNOWN"
	}
}

func formatErr(what, s string) error {
	return fmt.Errorf("%w: invalid %s %q", xcal.ErrFormat, what, s)
}

// atoiDigits parses a fixed run of ASCII digits. Unlike strconv.Atoi it
// rejects signs and spaces, which the value grammars never allow.
func atoiDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
