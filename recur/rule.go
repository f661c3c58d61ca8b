// Package recur implements RFC 5545 recurrence rules: parsing and
// serializing the RECUR value type and deterministically expanding a
// rule into its occurrence date-times.
package recur

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samgerene/xcal"
	"github.com/samgerene/xcal/values"
)

// Freq is the recurrence frequency.
type Freq int

const (
	Secondly Freq = iota
	Minutely
	Hourly
	Daily
	Weekly
	Monthly
	Yearly
)

var freqNames = [...]string{"SECONDLY", "MINUTELY", "HOURLY", "DAILY", "WEEKLY", "MONTHLY", "YEARLY"}

func (f Freq) String() string {
	if f < Secondly || f > Yearly {
		return "UNKNOWN"
	}
	return freqNames[f]
}

// ParseFreq parses a frequency name.
func ParseFreq(s string) (Freq, error) {
	for i, name := range freqNames {
		if name == s {
			return Freq(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown frequency %q", xcal.ErrFormat, s)
}

// Rule is a parsed RECUR value. Count and Until are mutually exclusive
// termination bounds; a rule carrying neither recurs forever and must
// be expanded with an explicit cap.
type Rule struct {
	Freq       Freq
	Until      *values.DateTime
	Count      int
	Interval   int
	BySecond   []int
	ByMinute   []int
	ByHour     []int
	ByDay      []values.WeekdayNum
	ByMonthDay []int
	ByYearDay  []int
	ByWeekNo   []int
	ByMonth    []int
	BySetPos   []int
	WeekStart  values.Weekday
}

func ruleErr(s, detail string) error {
	return fmt.Errorf("%w: recurrence rule %q: %s", xcal.ErrFormat, s, detail)
}

// Parse parses the semicolon-separated RECUR grammar, for example
// "FREQ=WEEKLY;COUNT=3;BYDAY=MO,WE". FREQ is mandatory; COUNT and
// UNTIL together, a non-positive INTERVAL, and unknown or repeated
// keys are rejected.
func Parse(s string) (*Rule, error) {
	r := &Rule{Interval: 1, WeekStart: values.Monday}
	seen := make(map[string]bool)
	hasFreq := false
	for _, part := range strings.Split(s, ";") {
		key, val, ok := strings.Cut(part, "=")
		if !ok || val == "" {
			return nil, ruleErr(s, "expected KEY=VALUE")
		}
		if seen[key] {
			return nil, ruleErr(s, "repeated key "+key)
		}
		seen[key] = true

		var err error
		switch key {
		case "FREQ":
			r.Freq, err = ParseFreq(val)
			hasFreq = err == nil
		case "UNTIL":
			var dt values.DateTime
			dt, err = values.ParseDateTime(val)
			r.Until = &dt
		case "COUNT":
			r.Count, err = parsePositive(val)
		case "INTERVAL":
			r.Interval, err = parsePositive(val)
		case "BYSECOND":
			r.BySecond, err = parseIntList(val, 0, 60, false)
		case "BYMINUTE":
			r.ByMinute, err = parseIntList(val, 0, 59, false)
		case "BYHOUR":
			r.ByHour, err = parseIntList(val, 0, 23, false)
		case "BYDAY":
			for _, item := range strings.Split(val, ",") {
				var w values.WeekdayNum
				if w, err = values.ParseWeekdayNum(item); err != nil {
					break
				}
				r.ByDay = append(r.ByDay, w)
			}
		case "BYMONTHDAY":
			r.ByMonthDay, err = parseIntList(val, -31, 31, true)
		case "BYYEARDAY":
			r.ByYearDay, err = parseIntList(val, -366, 366, true)
		case "BYWEEKNO":
			r.ByWeekNo, err = parseIntList(val, -53, 53, true)
		case "BYMONTH":
			r.ByMonth, err = parseIntList(val, 1, 12, false)
		case "BYSETPOS":
			r.BySetPos, err = parseIntList(val, -366, 366, true)
		case "WKST":
			r.WeekStart, err = values.ParseWeekday(val)
		default:
			return nil, ruleErr(s, "unknown key "+key)
		}
		if err != nil {
			return nil, ruleErr(s, "bad "+key+" value")
		}
	}
	if !hasFreq {
		return nil, ruleErr(s, "missing FREQ")
	}
	if r.Count > 0 && r.Until != nil {
		return nil, ruleErr(s, "COUNT and UNTIL are mutually exclusive")
	}
	return r, nil
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("not a positive integer")
	}
	return n, nil
}

func parseIntList(s string, lo, hi int, signed bool) ([]int, error) {
	items := strings.Split(s, ",")
	out := make([]int, 0, len(items))
	for _, item := range items {
		n, err := strconv.Atoi(item)
		if err != nil {
			return nil, err
		}
		if signed {
			if n == 0 || abs(n) > hi {
				return nil, fmt.Errorf("out of range")
			}
		} else if n < lo || n > hi {
			return nil, fmt.Errorf("out of range")
		}
		out = append(out, n)
	}
	return out, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// String renders the canonical form: FREQ first, then the termination
// bound, INTERVAL when above one, the BY* parts in RFC order, and WKST
// when it differs from the Monday default. Inverse of Parse for rules
// in canonical form.
func (r *Rule) String() string {
	var b strings.Builder
	b.WriteString("FREQ=")
	b.WriteString(r.Freq.String())
	if r.Until != nil {
		b.WriteString(";UNTIL=")
		b.WriteString(r.Until.String())
	}
	if r.Count > 0 {
		fmt.Fprintf(&b, ";COUNT=%d", r.Count)
	}
	if r.Interval > 1 {
		fmt.Fprintf(&b, ";INTERVAL=%d", r.Interval)
	}
	writeIntList(&b, "BYSECOND", r.BySecond)
	writeIntList(&b, "BYMINUTE", r.ByMinute)
	writeIntList(&b, "BYHOUR", r.ByHour)
	if len(r.ByDay) > 0 {
		b.WriteString(";BYDAY=")
		for i, w := range r.ByDay {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(w.String())
		}
	}
	writeIntList(&b, "BYMONTHDAY", r.ByMonthDay)
	writeIntList(&b, "BYYEARDAY", r.ByYearDay)
	writeIntList(&b, "BYWEEKNO", r.ByWeekNo)
	writeIntList(&b, "BYMONTH", r.ByMonth)
	writeIntList(&b, "BYSETPOS", r.BySetPos)
	if r.WeekStart != values.Monday {
		b.WriteString(";WKST=")
		b.WriteString(r.WeekStart.String())
	}
	return b.String()
}

func writeIntList(b *strings.Builder, key string, vals []int) {
	if len(vals) == 0 {
		return
	}
	b.WriteByte(';')
	b.WriteString(key)
	b.WriteByte('=')
	for i, n := range vals {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(n))
	}
}
