package values

import (
	"fmt"
	"strings"
	"time"

	"github.com/samgerene/xcal"
)

// Duration is the DURATION value type ("P1W2DT3H4M5S", "-PT15M"). The
// fields carry a uniform sign; arithmetic is field-wise, so the exact
// component breakdown written by the author survives round trips and
// addition.
type Duration struct {
	Weeks   int
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// NewDuration builds a duration from its components. All fields must
// share one sign; mixed signs produce undefined formatting.
func NewDuration(weeks, days, hours, minutes, seconds int) Duration {
	return Duration{Weeks: weeks, Days: days, Hours: hours, Minutes: minutes, Seconds: seconds}
}

// DurationOf breaks a time.Duration into normalized week, day, hour,
// minute and second components, truncating sub-second precision.
func DurationOf(d time.Duration) Duration {
	total := int(d / time.Second)
	sign := 1
	if total < 0 {
		sign = -1
		total = -total
	}
	days := total / 86400
	rem := total % 86400
	return Duration{
		Weeks:   sign * (days / 7),
		Days:    sign * (days % 7),
		Hours:   sign * (rem / 3600),
		Minutes: sign * (rem % 3600 / 60),
		Seconds: sign * (rem % 60),
	}
}

// ParseDuration parses the RFC 5545 duration grammar with an optional
// leading sign.
func ParseDuration(s string) (Duration, error) {
	rest := s
	sign := 1
	switch {
	case strings.HasPrefix(rest, "-"):
		sign = -1
		rest = rest[1:]
	case strings.HasPrefix(rest, "+"):
		rest = rest[1:]
	}
	if !strings.HasPrefix(rest, "P") {
		return Duration{}, formatErr("duration", s)
	}
	rest = rest[1:]
	if rest == "" {
		return Duration{}, formatErr("duration", s)
	}

	var d Duration
	inTime := false
	seen := false
	timeSeen := false
	for rest != "" {
		if rest[0] == 'T' {
			if inTime {
				return Duration{}, formatErr("duration", s)
			}
			inTime = true
			rest = rest[1:]
			continue
		}
		i := 0
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		if i == 0 || i == len(rest) {
			return Duration{}, formatErr("duration", s)
		}
		n, _ := atoiDigits(rest[:i])
		unit := rest[i]
		rest = rest[i+1:]
		switch {
		case unit == 'W' && !inTime:
			d.Weeks = sign * n
		case unit == 'D' && !inTime:
			d.Days = sign * n
		case unit == 'H' && inTime:
			d.Hours = sign * n
			timeSeen = true
		case unit == 'M' && inTime:
			d.Minutes = sign * n
			timeSeen = true
		case unit == 'S' && inTime:
			d.Seconds = sign * n
			timeSeen = true
		default:
			return Duration{}, formatErr("duration", s)
		}
		seen = true
	}
	if !seen || (inTime && !timeSeen) {
		return Duration{}, formatErr("duration", s)
	}
	return d, nil
}

// String renders the duration, omitting zero components. The zero
// duration renders as "PT0S". Inverse of ParseDuration.
func (d Duration) String() string {
	var b strings.Builder
	if d.Negative() {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	abs := func(n int) int {
		if n < 0 {
			return -n
		}
		return n
	}
	if d.Weeks != 0 {
		fmt.Fprintf(&b, "%dW", abs(d.Weeks))
	}
	if d.Days != 0 {
		fmt.Fprintf(&b, "%dD", abs(d.Days))
	}
	if d.Hours != 0 || d.Minutes != 0 || d.Seconds != 0 {
		b.WriteByte('T')
		if d.Hours != 0 {
			fmt.Fprintf(&b, "%dH", abs(d.Hours))
		}
		if d.Minutes != 0 {
			fmt.Fprintf(&b, "%dM", abs(d.Minutes))
		}
		if d.Seconds != 0 {
			fmt.Fprintf(&b, "%dS", abs(d.Seconds))
		}
	} else if d.Weeks == 0 && d.Days == 0 {
		b.WriteString("T0S")
	}
	return b.String()
}

// TimeDuration converts to a time.Duration.
func (d Duration) TimeDuration() time.Duration {
	secs := ((d.Weeks*7+d.Days)*24+d.Hours)*3600 + d.Minutes*60 + d.Seconds
	return time.Duration(secs) * time.Second
}

// IsZero reports whether every component is zero.
func (d Duration) IsZero() bool { return d == Duration{} }

// Negative reports whether the duration points backward in time.
func (d Duration) Negative() bool { return d.TimeDuration() < 0 }

// Add returns the field-wise sum of two durations.
func (d Duration) Add(o Duration) Duration {
	return Duration{
		Weeks:   d.Weeks + o.Weeks,
		Days:    d.Days + o.Days,
		Hours:   d.Hours + o.Hours,
		Minutes: d.Minutes + o.Minutes,
		Seconds: d.Seconds + o.Seconds,
	}
}

// Sub returns the field-wise difference, so (a.Add(b)).Sub(b) == a.
func (d Duration) Sub(o Duration) Duration { return d.Add(o.Neg()) }

// Neg returns the field-wise negation.
func (d Duration) Neg() Duration {
	return Duration{Weeks: -d.Weeks, Days: -d.Days, Hours: -d.Hours, Minutes: -d.Minutes, Seconds: -d.Seconds}
}

// Mul scales every component by n, so d.Mul(1) == d.
func (d Duration) Mul(n int) Duration {
	return Duration{Weeks: d.Weeks * n, Days: d.Days * n, Hours: d.Hours * n, Minutes: d.Minutes * n, Seconds: d.Seconds * n}
}

// Div divides every component by n. A zero divisor returns
// xcal.ErrArithmetic.
func (d Duration) Div(n int) (Duration, error) {
	if n == 0 {
		return Duration{}, fmt.Errorf("%w: duration division by zero", xcal.ErrArithmetic)
	}
	return Duration{Weeks: d.Weeks / n, Days: d.Days / n, Hours: d.Hours / n, Minutes: d.Minutes / n, Seconds: d.Seconds / n}, nil
}

// Compare orders by total elapsed time, not by component breakdown, so
// "P1D" and "PT24H" compare equal.
func (d Duration) Compare(o Duration) int {
	a, b := d.TimeDuration(), o.TimeDuration()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports equal elapsed time, like Compare.
func (d Duration) Equal(o Duration) bool { return d.Compare(o) == 0 }
