package recur

import (
	"errors"
	"testing"

	"github.com/samgerene/xcal"
	"github.com/samgerene/xcal/values"
)

func mustParse(t *testing.T, s string) *Rule {
	t.Helper()
	r, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return r
}

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"FREQ=DAILY;COUNT=5",
		"FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE,FR",
		"FREQ=MONTHLY;BYMONTHDAY=1,15",
		"FREQ=MONTHLY;BYDAY=2MO",
		"FREQ=YEARLY;UNTIL=20301231T000000Z;BYMONTH=3;BYMONTHDAY=14",
		"FREQ=MONTHLY;BYDAY=MO,TU,WE,TH,FR;BYSETPOS=-1",
		"FREQ=WEEKLY;COUNT=4;BYDAY=SA,SU;WKST=SU",
	}
	for _, in := range cases {
		r := mustParse(t, in)
		if got := r.String(); got != in {
			t.Errorf("Parse(%q).String() = %q", in, got)
		}
	}
}

func TestParseRejects(t *testing.T) {
	cases := []string{
		"",
		"COUNT=5",
		"FREQ=SOMETIMES",
		"FREQ=DAILY;COUNT=5;UNTIL=20301231T000000Z",
		"FREQ=DAILY;INTERVAL=0",
		"FREQ=DAILY;COUNT=0",
		"FREQ=DAILY;BYMONTH=13",
		"FREQ=DAILY;BYMONTHDAY=0",
		"FREQ=DAILY;CADENCE=7",
		"FREQ=DAILY;COUNT=5;COUNT=6",
	}
	for _, in := range cases {
		if _, err := Parse(in); !errors.Is(err, xcal.ErrFormat) {
			t.Errorf("Parse(%q) = %v, want ErrFormat", in, err)
		}
	}
}

func expandStrings(r *Rule, anchor values.DateTime, cap int) []string {
	occs := r.Expand(anchor, cap)
	out := make([]string, len(occs))
	for i, o := range occs {
		out[i] = o.String()
	}
	return out
}

func assertOccurrences(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d occurrences %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("occurrence %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestExpandDailyCount(t *testing.T) {
	r := mustParse(t, "FREQ=DAILY;COUNT=5")
	anchor := values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0)
	assertOccurrences(t, expandStrings(r, anchor, 0), []string{
		"20240301T100000Z",
		"20240302T100000Z",
		"20240303T100000Z",
		"20240304T100000Z",
		"20240305T100000Z",
	})
}

func TestExpandWeekly(t *testing.T) {
	// 2024-03-01 is a Friday.
	r := mustParse(t, "FREQ=WEEKLY;COUNT=3")
	anchor := values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0)
	assertOccurrences(t, expandStrings(r, anchor, 0), []string{
		"20240301T100000Z",
		"20240308T100000Z",
		"20240315T100000Z",
	})
}

func TestExpandWeeklyByDay(t *testing.T) {
	r := mustParse(t, "FREQ=WEEKLY;COUNT=5;BYDAY=MO,WE")
	anchor := values.NewDateTimeUTC(2024, 3, 1, 9, 0, 0) // Friday
	assertOccurrences(t, expandStrings(r, anchor, 0), []string{
		"20240304T090000Z",
		"20240306T090000Z",
		"20240311T090000Z",
		"20240313T090000Z",
		"20240318T090000Z",
	})
}

func TestExpandUntilInclusive(t *testing.T) {
	r := mustParse(t, "FREQ=DAILY;UNTIL=20240303T100000Z")
	anchor := values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0)
	assertOccurrences(t, expandStrings(r, anchor, 0), []string{
		"20240301T100000Z",
		"20240302T100000Z",
		"20240303T100000Z",
	})
}

func TestExpandMonthlyByMonthDay(t *testing.T) {
	r := mustParse(t, "FREQ=MONTHLY;COUNT=4;BYMONTHDAY=-1")
	anchor := values.NewDateTimeUTC(2024, 1, 31, 8, 0, 0)
	assertOccurrences(t, expandStrings(r, anchor, 0), []string{
		"20240131T080000Z",
		"20240229T080000Z",
		"20240331T080000Z",
		"20240430T080000Z",
	})
}

func TestExpandDailyByMonthDayFilter(t *testing.T) {
	r := mustParse(t, "FREQ=DAILY;COUNT=2;BYMONTHDAY=-1")
	anchor := values.NewDateTimeUTC(2024, 1, 31, 8, 0, 0)
	assertOccurrences(t, expandStrings(r, anchor, 0), []string{
		"20240131T080000Z",
		"20240229T080000Z",
	})
}

func TestExpandDailyByYearDayFilter(t *testing.T) {
	// Day 60 of a leap year is February 29.
	r := mustParse(t, "FREQ=DAILY;COUNT=2;BYYEARDAY=60")
	anchor := values.NewDateTimeUTC(2024, 2, 1, 8, 0, 0)
	assertOccurrences(t, expandStrings(r, anchor, 0), []string{
		"20240229T080000Z",
		"20250301T080000Z",
	})

	r = mustParse(t, "FREQ=DAILY;COUNT=2;BYYEARDAY=-1")
	anchor = values.NewDateTimeUTC(2024, 12, 30, 8, 0, 0)
	assertOccurrences(t, expandStrings(r, anchor, 0), []string{
		"20241231T080000Z",
		"20251231T080000Z",
	})
}

func TestExpandMonthlySkipsShortMonths(t *testing.T) {
	r := mustParse(t, "FREQ=MONTHLY;COUNT=3")
	anchor := values.NewDateTimeUTC(2024, 1, 31, 8, 0, 0)
	// February and April have no 31st.
	assertOccurrences(t, expandStrings(r, anchor, 0), []string{
		"20240131T080000Z",
		"20240331T080000Z",
		"20240531T080000Z",
	})
}

func TestExpandMonthlyNthWeekday(t *testing.T) {
	r := mustParse(t, "FREQ=MONTHLY;COUNT=3;BYDAY=2MO")
	anchor := values.NewDateTimeUTC(2024, 3, 1, 12, 0, 0)
	assertOccurrences(t, expandStrings(r, anchor, 0), []string{
		"20240311T120000Z",
		"20240408T120000Z",
		"20240513T120000Z",
	})
}

func TestExpandYearly(t *testing.T) {
	r := mustParse(t, "FREQ=YEARLY;COUNT=3;BYMONTH=3;BYMONTHDAY=14")
	anchor := values.NewDateTimeUTC(2024, 1, 1, 15, 0, 0)
	assertOccurrences(t, expandStrings(r, anchor, 0), []string{
		"20240314T150000Z",
		"20250314T150000Z",
		"20260314T150000Z",
	})
}

func TestExpandSetPos(t *testing.T) {
	// Last weekday of each month.
	r := mustParse(t, "FREQ=MONTHLY;COUNT=3;BYDAY=MO,TU,WE,TH,FR;BYSETPOS=-1")
	anchor := values.NewDateTimeUTC(2024, 3, 1, 17, 0, 0)
	assertOccurrences(t, expandStrings(r, anchor, 0), []string{
		"20240329T170000Z",
		"20240430T170000Z",
		"20240531T170000Z",
	})
}

func TestExpandInterval(t *testing.T) {
	r := mustParse(t, "FREQ=DAILY;INTERVAL=3;COUNT=3")
	anchor := values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0)
	assertOccurrences(t, expandStrings(r, anchor, 0), []string{
		"20240301T100000Z",
		"20240304T100000Z",
		"20240307T100000Z",
	})
}

func TestExpandCapBounds(t *testing.T) {
	r := mustParse(t, "FREQ=DAILY")
	anchor := values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0)
	if got := r.Expand(anchor, 0); got != nil {
		t.Errorf("unbounded rule with no cap should yield nil, got %d occurrences", len(got))
	}
	if got := r.Expand(anchor, 7); len(got) != 7 {
		t.Errorf("capped expansion yielded %d occurrences, want 7", len(got))
	}
}

func TestExpandDeterministic(t *testing.T) {
	r := mustParse(t, "FREQ=WEEKLY;COUNT=10;BYDAY=MO,WE,FR")
	anchor := values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0)
	first := expandStrings(r, anchor, 0)
	for i := 0; i < 5; i++ {
		assertOccurrences(t, expandStrings(r, anchor, 0), first)
	}
	for i := 1; i < len(first); i++ {
		if first[i] <= first[i-1] {
			t.Fatalf("occurrences not strictly ascending: %s then %s", first[i-1], first[i])
		}
	}
}

func TestExpandPreservesAnchorForm(t *testing.T) {
	r := mustParse(t, "FREQ=DAILY;COUNT=2")
	anchor := values.NewDateTimeZoned(2024, 3, 1, 10, 0, 0, "Europe/Paris")
	occs := r.Expand(anchor, 0)
	for _, o := range occs {
		if o.Kind != values.KindZoned || o.Zone != "Europe/Paris" {
			t.Errorf("occurrence %v lost the anchor time form", o)
		}
	}
}
