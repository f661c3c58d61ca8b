package values

import (
	"strconv"
	"strings"
	"time"
)

// Weekday is a day of the week. The ordering matches time.Weekday, with
// Sunday as zero, so conversions between the two are direct casts.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayCodes = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// String returns the two-letter RFC 5545 code, such as "MO".
func (d Weekday) String() string {
	if d < Sunday || d > Saturday {
		return "??"
	}
	return weekdayCodes[d]
}

// ParseWeekday parses a two-letter weekday code.
func ParseWeekday(s string) (Weekday, error) {
	for i, code := range weekdayCodes {
		if code == s {
			return Weekday(i), nil
		}
	}
	return 0, formatErr("weekday", s)
}

// WeekdayOf converts from time.Weekday.
func WeekdayOf(d time.Weekday) Weekday { return Weekday(d) }

// TimeWeekday converts to time.Weekday.
func (d Weekday) TimeWeekday() time.Weekday { return time.Weekday(d) }

// WeekdayNum is an ordinal-qualified weekday, such as the second Monday
// ("2MO") or the last Sunday ("-1SU") of a recurrence period. A zero
// ordinal means every such weekday.
type WeekdayNum struct {
	Ord int
	Day Weekday
}

// ParseWeekdayNum parses forms like "MO", "2MO", "-1SU" and "+3FR".
func ParseWeekdayNum(s string) (WeekdayNum, error) {
	rest := s
	sign := 1
	switch {
	case strings.HasPrefix(rest, "-"):
		sign = -1
		rest = rest[1:]
	case strings.HasPrefix(rest, "+"):
		rest = rest[1:]
	}
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	ord := 0
	if i > 0 {
		n, ok := atoiDigits(rest[:i])
		if !ok || n == 0 || n > 53 {
			return WeekdayNum{}, formatErr("weekday ordinal", s)
		}
		ord = sign * n
	} else if sign == -1 {
		return WeekdayNum{}, formatErr("weekday ordinal", s)
	}
	day, err := ParseWeekday(rest[i:])
	if err != nil {
		return WeekdayNum{}, formatErr("weekday ordinal", s)
	}
	return WeekdayNum{Ord: ord, Day: day}, nil
}

// String renders the ordinal (when present) followed by the weekday
// code, the inverse of ParseWeekdayNum.
func (w WeekdayNum) String() string {
	if w.Ord == 0 {
		return w.Day.String()
	}
	return strconv.Itoa(w.Ord) + w.Day.String()
}

// Compare orders by ordinal, then by weekday.
func (w WeekdayNum) Compare(o WeekdayNum) int {
	if c := cmpInt(w.Ord, o.Ord); c != 0 {
		return c
	}
	return cmpInt(int(w.Day), int(o.Day))
}
