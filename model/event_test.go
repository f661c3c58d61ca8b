package model

import (
	"strings"
	"testing"

	"github.com/samgerene/xcal/recur"
	"github.com/samgerene/xcal/values"
)

func hourEvent(id, uid string, start values.DateTime) *Event {
	return NewEvent(id, uid,
		values.NewDateTimeUTC(2024, 2, 1, 0, 0, 0),
		values.NewPeriodDuration(start, values.NewDuration(0, 0, 1, 0, 0)))
}

func mustRule(t *testing.T, s string) *recur.Rule {
	t.Helper()
	r, err := recur.Parse(s)
	if err != nil {
		t.Fatalf("recur.Parse(%q): %v", s, err)
	}
	return r
}

func TestEventTimingViews(t *testing.T) {
	start := values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0)
	e := hourEvent("ev-1", "uid-1", start)
	if !e.Start().Equal(start) {
		t.Errorf("Start = %v", e.Start())
	}
	if want := values.NewDateTimeUTC(2024, 3, 1, 11, 0, 0); !e.End().Equal(want) {
		t.Errorf("End = %v, want %v", e.End(), want)
	}
	if !e.Duration().Equal(values.NewDuration(0, 0, 1, 0, 0)) {
		t.Errorf("Duration = %v", e.Duration())
	}
}

func TestEventIdentityChain(t *testing.T) {
	start := values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0)
	a := hourEvent("ev-1", "uid-a", start)
	b := hourEvent("ev-2", "uid-a", start)
	if !a.Equal(b) {
		t.Error("events with equal UID/sequence/datestamp should be equal despite different IDs")
	}

	b.UID = "uid-b"
	if a.Compare(b) >= 0 {
		t.Error("uid-a should order before uid-b")
	}

	b.UID = "uid-a"
	b.Sequence = 1
	if a.Compare(b) >= 0 || a.Equal(b) {
		t.Error("higher sequence should order later and break equality")
	}

	b.Sequence = 0
	b.RecurrenceID = &RecurrenceID{
		ID:    "rid-1",
		Range: RangeThisAndFuture,
		Value: values.NewDateTimeUTC(2024, 3, 8, 10, 0, 0),
	}
	if a.Equal(b) {
		t.Error("an instance with a recurrence id should differ from its parent")
	}
	if a.Compare(b) >= 0 {
		t.Error("absent recurrence id should order before a present one")
	}
}

func TestEventEqualityIgnoresZoneForm(t *testing.T) {
	a := hourEvent("ev-1", "uid-a", values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0))
	b := hourEvent("ev-2", "uid-a", values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0))
	a.Datestamp = values.NewDateTimeUTC(2024, 2, 1, 0, 0, 0)
	b.Datestamp = values.NewDateTimeZoned(2024, 2, 1, 0, 0, 0, "Europe/Paris")
	if !a.Equal(b) {
		t.Error("datestamps with the same clock reading should compare equal")
	}
}

func TestGenerateRecurrencesWeekly(t *testing.T) {
	start := values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0)
	e := hourEvent("ev-1", "uid-1", start)
	e.RecurrenceRule = mustRule(t, "FREQ=WEEKLY;COUNT=3")

	instances := e.GenerateRecurrences(0)
	if len(instances) != 3 {
		t.Fatalf("got %d instances, want 3", len(instances))
	}
	wantStarts := []values.DateTime{
		values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0),
		values.NewDateTimeUTC(2024, 3, 8, 10, 0, 0),
		values.NewDateTimeUTC(2024, 3, 15, 10, 0, 0),
	}
	for i, inst := range instances {
		if !inst.Start().Equal(wantStarts[i]) {
			t.Errorf("instance %d Start = %v, want %v", i, inst.Start(), wantStarts[i])
		}
		if want := wantStarts[i].Add(values.NewDuration(0, 0, 1, 0, 0)); !inst.End().Equal(want) {
			t.Errorf("instance %d End = %v, want %v", i, inst.End(), want)
		}
		if inst.UID != "uid-1" {
			t.Errorf("instance %d UID = %q", i, inst.UID)
		}
		if inst.RecurrenceRule != nil {
			t.Errorf("instance %d should not carry a rule", i)
		}
		if inst.RecurrenceID == nil {
			t.Fatalf("instance %d missing recurrence id", i)
		}
		if inst.RecurrenceID.Range != RangeThisAndFuture {
			t.Errorf("instance %d range = %q", i, inst.RecurrenceID.Range)
		}
		if !inst.RecurrenceID.Value.Equal(wantStarts[i]) {
			t.Errorf("instance %d recurrence id = %v", i, inst.RecurrenceID.Value)
		}
	}
	if instances[0].ID != "ev-1-1" || instances[2].ID != "ev-1-3" {
		t.Errorf("instance ids = %q, %q", instances[0].ID, instances[2].ID)
	}
}

func TestGenerateRecurrencesExcludedDatesDoNotConsumeCount(t *testing.T) {
	start := values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0)
	e := hourEvent("ev-1", "uid-1", start)
	e.RecurrenceRule = mustRule(t, "FREQ=DAILY;COUNT=5")
	e.ExceptionDates = []*ExceptionDates{{
		ID:    "xd-1",
		Dates: []values.DateTime{values.NewDateTimeUTC(2024, 3, 3, 10, 0, 0)},
	}}

	instances := e.GenerateRecurrences(0)
	want := []string{
		"20240301T100000Z",
		"20240302T100000Z",
		"20240304T100000Z",
		"20240305T100000Z",
		"20240306T100000Z",
	}
	if len(instances) != len(want) {
		t.Fatalf("got %d instances, want %d", len(instances), len(want))
	}
	for i, inst := range instances {
		if got := inst.Start().String(); got != want[i] {
			t.Errorf("instance %d Start = %s, want %s", i, got, want[i])
		}
	}
}

func TestGenerateRecurrencesUnionsRDates(t *testing.T) {
	start := values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0)
	e := hourEvent("ev-1", "uid-1", start)
	e.RecurrenceRule = mustRule(t, "FREQ=WEEKLY;COUNT=2")
	e.RecurrenceDates = []*RecurrenceDates{{
		ID: "rd-1",
		Dates: []values.DateTime{
			values.NewDateTimeUTC(2024, 3, 4, 10, 0, 0),
			// Duplicate of a rule occurrence; must not double up.
			values.NewDateTimeUTC(2024, 3, 8, 10, 0, 0),
		},
		Periods: []values.Period{
			values.NewPeriodDuration(
				values.NewDateTimeUTC(2024, 3, 20, 10, 0, 0),
				values.NewDuration(0, 0, 2, 0, 0)),
		},
	}}

	instances := e.GenerateRecurrences(0)
	want := []string{
		"20240301T100000Z",
		"20240304T100000Z",
		"20240308T100000Z",
		"20240320T100000Z",
	}
	if len(instances) != len(want) {
		t.Fatalf("got %d instances, want %d: %v", len(instances), len(want), instances)
	}
	for i, inst := range instances {
		if got := inst.Start().String(); got != want[i] {
			t.Errorf("instance %d Start = %s, want %s", i, got, want[i])
		}
	}
}

func TestGenerateRecurrencesWithoutRule(t *testing.T) {
	e := hourEvent("ev-1", "uid-1", values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0))
	if got := e.GenerateRecurrences(10); got != nil {
		t.Errorf("non-recurring event produced %d instances", len(got))
	}
}

func TestEventRendering(t *testing.T) {
	start := values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0)
	e := hourEvent("ev-1", "uid-1", start)
	e.Summary = "Planning"
	e.Location = "Room 4"
	e.Classification = ClassPublic
	e.RecurrenceRule = mustRule(t, "FREQ=WEEKLY;COUNT=3")
	e.Attendees = []*Attendee{{ID: "at-1", Address: "mailto:ann@example.org", CommonName: "Ann", Role: RoleChair}}
	e.DisplayAlarms = []*DisplayAlarm{{
		ID:          "da-1",
		Trigger:     Trigger{Duration: ptr(values.NewDuration(0, 0, 0, -15, 0)), Related: RelatedStart},
		Description: "Planning in 15 minutes",
	}}

	text := e.String()
	if !strings.HasSuffix(text, "END:VEVENT\r\n") {
		t.Errorf("rendering should end with END:VEVENT CRLF, got %q", text[len(text)-20:])
	}
	for _, want := range []string{
		"BEGIN:VEVENT\r\n",
		"DTSTAMP:20240201T000000Z\r\n",
		"UID:uid-1\r\n",
		"DTSTART:20240301T100000Z\r\n",
		"DTEND:20240301T110000Z\r\n",
		"CLASS:PUBLIC\r\n",
		"SUMMARY:Planning\r\n",
		"LOCATION:Room 4\r\n",
		"RRULE:FREQ=WEEKLY;COUNT=3\r\n",
		"ATTENDEE;CN=Ann;ROLE=CHAIR:mailto:ann@example.org\r\n",
		"BEGIN:VALARM\r\n",
		"ACTION:DISPLAY\r\n",
		"TRIGGER;RELATED=START:-PT15M\r\n",
		"END:VALARM\r\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("rendering missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "DESCRIPTION") {
		t.Error("empty properties should be omitted")
	}
	if strings.Contains(strings.ReplaceAll(text, "\r\n", "|"), "\n") {
		t.Error("every line must be CRLF-terminated")
	}
}

func TestRenderingDeterministic(t *testing.T) {
	e := hourEvent("ev-1", "uid-1", values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0))
	e.Summary = "Stable"
	first := e.String()
	for i := 0; i < 3; i++ {
		if got := e.String(); got != first {
			t.Fatal("rendering is not deterministic")
		}
	}
}

func ptr[T any](v T) *T { return &v }
