package values

import (
	"fmt"
	"strings"
)

// UTCOffset is the UTC-OFFSET value type ("+0200", "-053000"). Fields
// carry a uniform sign.
type UTCOffset struct {
	Hours   int
	Minutes int
	Seconds int
}

// NewUTCOffset builds an offset from its components.
func NewUTCOffset(hours, minutes, seconds int) UTCOffset {
	return UTCOffset{Hours: hours, Minutes: minutes, Seconds: seconds}
}

// ParseUTCOffset parses the signed four- or six-digit offset form. The
// sign is mandatory.
func ParseUTCOffset(s string) (UTCOffset, error) {
	sign := 0
	switch {
	case strings.HasPrefix(s, "+"):
		sign = 1
	case strings.HasPrefix(s, "-"):
		sign = -1
	default:
		return UTCOffset{}, formatErr("utc offset", s)
	}
	rest := s[1:]
	if len(rest) != 4 && len(rest) != 6 {
		return UTCOffset{}, formatErr("utc offset", s)
	}
	h, okH := atoiDigits(rest[:2])
	m, okM := atoiDigits(rest[2:4])
	sec, okS := 0, true
	if len(rest) == 6 {
		sec, okS = atoiDigits(rest[4:6])
	}
	if !okH || !okM || !okS || h > 23 || m > 59 || sec > 59 {
		return UTCOffset{}, formatErr("utc offset", s)
	}
	if sign == -1 && h == 0 && m == 0 && sec == 0 {
		return UTCOffset{}, formatErr("utc offset", s)
	}
	return UTCOffset{Hours: sign * h, Minutes: sign * m, Seconds: sign * sec}, nil
}

// String renders the signed offset, with seconds only when nonzero.
// Inverse of ParseUTCOffset.
func (o UTCOffset) String() string {
	sign := "+"
	h, m, s := o.Hours, o.Minutes, o.Seconds
	if o.TotalSeconds() < 0 {
		sign = "-"
		h, m, s = -h, -m, -s
	}
	if s != 0 {
		return fmt.Sprintf("%s%02d%02d%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%02d%02d", sign, h, m)
}

// TotalSeconds returns the offset as a signed second count.
func (o UTCOffset) TotalSeconds() int {
	return o.Hours*3600 + o.Minutes*60 + o.Seconds
}

// IsZero reports whether o is the zero offset.
func (o UTCOffset) IsZero() bool { return o == UTCOffset{} }

// Neg returns the field-wise negation.
func (o UTCOffset) Neg() UTCOffset {
	return UTCOffset{Hours: -o.Hours, Minutes: -o.Minutes, Seconds: -o.Seconds}
}

// Add returns the normalized sum of the two offsets.
func (o UTCOffset) Add(other UTCOffset) UTCOffset {
	total := o.TotalSeconds() + other.TotalSeconds()
	sign := 1
	if total < 0 {
		sign = -1
		total = -total
	}
	return UTCOffset{
		Hours:   sign * (total / 3600),
		Minutes: sign * (total % 3600 / 60),
		Seconds: sign * (total % 60),
	}
}

// Compare orders by total signed offset.
func (o UTCOffset) Compare(other UTCOffset) int {
	return cmpInt(o.TotalSeconds(), other.TotalSeconds())
}

// Equal reports equal total offset.
func (o UTCOffset) Equal(other UTCOffset) bool { return o.Compare(other) == 0 }
