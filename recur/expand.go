package recur

import (
	"slices"
	"time"

	"github.com/samgerene/xcal/values"
)

// maxScan bounds the number of frequency periods examined, so a rule
// whose BY* constraints never match cannot loop forever.
const maxScan = 100000

// Expand generates the occurrence date-times of the rule starting at
// anchor, in strictly ascending order. The anchor itself is the first
// occurrence when it satisfies the rule's constraints. Expansion stops
// at UNTIL (inclusive), at COUNT occurrences, or at cap occurrences,
// whichever comes first; cap <= 0 means uncapped, and a rule with
// neither COUNT nor UNTIL then yields nil rather than an unbounded
// expansion. Results carry the anchor's time form and zone reference.
func (r *Rule) Expand(anchor values.DateTime, cap int) []values.DateTime {
	if r.Count <= 0 && r.Until == nil && cap <= 0 {
		return nil
	}
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}
	start := anchor.Time()
	var until time.Time
	if r.Until != nil {
		until = r.Until.Time()
	}

	var out []values.DateTime
	for k := 0; k < maxScan; k++ {
		offset := k * interval
		if r.Until != nil && r.periodBase(start, offset).After(until) {
			return out
		}
		candidates := r.candidates(start, offset)
		kept := candidates[:0:0]
		for _, c := range candidates {
			if r.matches(c) {
				kept = append(kept, c)
			}
		}
		slices.SortFunc(kept, time.Time.Compare)
		kept = selectSetPos(kept, r.BySetPos)
		for _, c := range kept {
			if c.Before(start) {
				continue
			}
			if r.Until != nil && c.After(until) {
				return out
			}
			occ := values.DateTimeOf(c)
			occ.Kind = anchor.Kind
			occ.Zone = anchor.Zone
			out = append(out, occ)
			if (r.Count > 0 && len(out) == r.Count) || (cap > 0 && len(out) == cap) {
				return out
			}
		}
	}
	return out
}

// periodBase is the earliest instant of the k-th frequency period,
// used to detect when UNTIL has been passed.
func (r *Rule) periodBase(start time.Time, offset int) time.Time {
	switch r.Freq {
	case Secondly:
		return start.Add(time.Duration(offset) * time.Second)
	case Minutely:
		return start.Add(time.Duration(offset) * time.Minute)
	case Hourly:
		return start.Add(time.Duration(offset) * time.Hour)
	case Daily:
		d := start.AddDate(0, 0, offset)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	case Weekly:
		return weekStart(start.AddDate(0, 0, 7*offset), r.WeekStart)
	case Monthly:
		y, m := monthAt(start, offset)
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(start.Year()+offset, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
}

// candidates generates the occurrence candidates of one frequency
// period. BYDAY, BYMONTHDAY, BYYEARDAY, BYWEEKNO and BYMONTH expand at
// their period granularity; everything finer acts as a filter in
// matches.
func (r *Rule) candidates(start time.Time, offset int) []time.Time {
	switch r.Freq {
	case Secondly:
		return []time.Time{start.Add(time.Duration(offset) * time.Second)}
	case Minutely:
		return []time.Time{start.Add(time.Duration(offset) * time.Minute)}
	case Hourly:
		return []time.Time{start.Add(time.Duration(offset) * time.Hour)}
	case Daily:
		return []time.Time{start.AddDate(0, 0, offset)}
	case Weekly:
		base := start.AddDate(0, 0, 7*offset)
		if len(r.ByDay) == 0 {
			return []time.Time{base}
		}
		var out []time.Time
		ws := weekStart(base, r.WeekStart)
		for i := 0; i < 7; i++ {
			day := ws.AddDate(0, 0, i)
			if r.hasWeekday(day.Weekday()) {
				out = append(out, atClock(day, start))
			}
		}
		return out
	case Monthly:
		y, m := monthAt(start, offset)
		return r.daysInMonth(y, m, start)
	default: // Yearly
		return r.daysInYear(start.Year()+offset, start)
	}
}

// daysInMonth expands one month: BYMONTHDAY wins, then BYDAY, then the
// anchor's day of month. Months lacking the requested day contribute
// nothing.
func (r *Rule) daysInMonth(year int, month time.Month, anchor time.Time) []time.Time {
	var out []time.Time
	switch {
	case len(r.ByMonthDay) > 0:
		for _, md := range r.ByMonthDay {
			if day := resolveMonthDay(year, month, md); day > 0 {
				out = append(out, atClock(time.Date(year, month, day, 0, 0, 0, 0, time.UTC), anchor))
			}
		}
	case len(r.ByDay) > 0:
		for _, w := range r.ByDay {
			for _, day := range weekdaysInMonth(year, month, w) {
				out = append(out, atClock(day, anchor))
			}
		}
	default:
		if day := resolveMonthDay(year, month, anchor.Day()); day == anchor.Day() {
			out = append(out, atClock(time.Date(year, month, day, 0, 0, 0, 0, time.UTC), anchor))
		}
	}
	return out
}

// daysInYear expands one year: BYYEARDAY wins, then BYWEEKNO, then the
// BYMONTH set (defaulting to the anchor's month) expanded like a month.
func (r *Rule) daysInYear(year int, anchor time.Time) []time.Time {
	if len(r.ByYearDay) > 0 {
		var out []time.Time
		total := yearDays(year)
		for _, yd := range r.ByYearDay {
			day := yd
			if day < 0 {
				day = total + yd + 1
			}
			if day >= 1 && day <= total {
				out = append(out, atClock(time.Date(year, time.January, day, 0, 0, 0, 0, time.UTC), anchor))
			}
		}
		return out
	}
	if len(r.ByWeekNo) > 0 {
		var out []time.Time
		total := isoWeeks(year)
		for _, wn := range r.ByWeekNo {
			week := wn
			if week < 0 {
				week = total + wn + 1
			}
			if week < 1 || week > total {
				continue
			}
			ws := isoWeekStart(year, week)
			for i := 0; i < 7; i++ {
				day := ws.AddDate(0, 0, i)
				if len(r.ByDay) > 0 {
					if r.hasWeekday(day.Weekday()) {
						out = append(out, atClock(day, anchor))
					}
				} else if day.Weekday() == anchor.Weekday() {
					out = append(out, atClock(day, anchor))
				}
			}
		}
		return out
	}
	months := r.ByMonth
	if len(months) == 0 {
		months = []int{int(anchor.Month())}
	}
	var out []time.Time
	for _, m := range months {
		out = append(out, r.daysInMonth(year, time.Month(m), anchor)...)
	}
	return out
}

// matches applies the BY* constraints as filters. Constraints already
// satisfied by expansion pass again by construction.
func (r *Rule) matches(t time.Time) bool {
	if len(r.ByMonth) > 0 && !slices.Contains(r.ByMonth, int(t.Month())) {
		return false
	}
	if len(r.ByWeekNo) > 0 && !r.matchesWeekNo(t) {
		return false
	}
	if len(r.ByYearDay) > 0 && !matchOrdinal(r.ByYearDay, t.YearDay(), yearDays(t.Year())) {
		return false
	}
	if len(r.ByMonthDay) > 0 && !matchOrdinal(r.ByMonthDay, t.Day(), daysIn(t.Year(), t.Month())) {
		return false
	}
	if len(r.ByDay) > 0 && !r.hasWeekday(t.Weekday()) {
		return false
	}
	if len(r.ByHour) > 0 && !slices.Contains(r.ByHour, t.Hour()) {
		return false
	}
	if len(r.ByMinute) > 0 && !slices.Contains(r.ByMinute, t.Minute()) {
		return false
	}
	if len(r.BySecond) > 0 && !slices.Contains(r.BySecond, t.Second()) {
		return false
	}
	return true
}

func (r *Rule) matchesWeekNo(t time.Time) bool {
	year, week := t.ISOWeek()
	total := isoWeeks(year)
	for _, wn := range r.ByWeekNo {
		w := wn
		if w < 0 {
			w = total + wn + 1
		}
		if w == week {
			return true
		}
	}
	return false
}

// matchOrdinal reports whether the 1-based position v appears in the
// ordinal set, negative ordinals counting back from total.
func matchOrdinal(set []int, v, total int) bool {
	for _, n := range set {
		if n < 0 {
			n = total + n + 1
		}
		if n == v {
			return true
		}
	}
	return false
}

func (r *Rule) hasWeekday(d time.Weekday) bool {
	for _, w := range r.ByDay {
		if w.Day.TimeWeekday() == d {
			return true
		}
	}
	return false
}

// selectSetPos keeps the 1-based positions named by BYSETPOS, negative
// positions counting from the end, preserving chronological order.
func selectSetPos(candidates []time.Time, positions []int) []time.Time {
	if len(positions) == 0 || len(candidates) == 0 {
		return candidates
	}
	keep := make([]bool, len(candidates))
	for _, p := range positions {
		idx := p - 1
		if p < 0 {
			idx = len(candidates) + p
		}
		if idx >= 0 && idx < len(candidates) {
			keep[idx] = true
		}
	}
	out := candidates[:0:0]
	for i, c := range candidates {
		if keep[i] {
			out = append(out, c)
		}
	}
	return out
}

// weekStart steps back to the first instant of the week containing t.
func weekStart(t time.Time, wkst values.Weekday) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	diff := (int(t.Weekday()) - int(wkst.TimeWeekday()) + 7) % 7
	return day.AddDate(0, 0, -diff)
}

// atClock places the anchor's time of day onto the given calendar day.
func atClock(day, anchor time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		anchor.Hour(), anchor.Minute(), anchor.Second(), 0, time.UTC)
}

func monthAt(start time.Time, offset int) (int, time.Month) {
	idx := start.Year()*12 + int(start.Month()) - 1 + offset
	return idx / 12, time.Month(idx%12 + 1)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func yearDays(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

// isoWeeks returns the number of ISO weeks in a year; December 28 is
// always in the final week.
func isoWeeks(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// isoWeekStart returns the Monday opening the given ISO week; January 4
// is always in week one.
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday := weekStart(jan4, values.Monday)
	return monday.AddDate(0, 0, (week-1)*7)
}

// resolveMonthDay maps a possibly negative BYMONTHDAY ordinal onto a
// day of the given month, or 0 when the month has no such day.
func resolveMonthDay(year int, month time.Month, md int) int {
	days := daysIn(year, month)
	switch {
	case md > 0 && md <= days:
		return md
	case md < 0 && days+md+1 >= 1:
		return days + md + 1
	default:
		return 0
	}
}

// weekdaysInMonth lists the days of a month matching an ordinal
// weekday: a zero ordinal means every such weekday, a negative ordinal
// counts from the end of the month.
func weekdaysInMonth(year int, month time.Month, w values.WeekdayNum) []time.Time {
	var all []time.Time
	days := daysIn(year, month)
	for d := 1; d <= days; d++ {
		day := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		if day.Weekday() == w.Day.TimeWeekday() {
			all = append(all, day)
		}
	}
	switch {
	case w.Ord == 0:
		return all
	case w.Ord > 0 && w.Ord <= len(all):
		return all[w.Ord-1 : w.Ord]
	case w.Ord < 0 && len(all)+w.Ord >= 0:
		i := len(all) + w.Ord
		return all[i : i+1]
	default:
		return nil
	}
}
