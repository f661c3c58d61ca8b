package model

import (
	"strings"
	"testing"

	"github.com/samgerene/xcal/values"
)

func TestNewCalendarDefaults(t *testing.T) {
	c := NewCalendar("cal-1", "-//xcal//EN")
	if c.Version != "2.0" || c.Calscale != "GREGORIAN" {
		t.Errorf("defaults = %q/%q", c.Version, c.Calscale)
	}
}

func TestCalendarRendering(t *testing.T) {
	c := NewCalendar("cal-1", "-//xcal//EN")
	c.Events = []*Event{hourEvent("ev-1", "uid-1", values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0))}
	c.TimeZones = []*TimeZone{{
		ID:   "tz-1",
		TZID: "Europe/Paris",
		Observances: []*Observance{{
			ID:         "ob-1",
			Kind:       ObservanceStandard,
			Start:      values.NewDateTime(1996, 10, 27, 3, 0, 0),
			OffsetFrom: values.NewUTCOffset(2, 0, 0),
			OffsetTo:   values.NewUTCOffset(1, 0, 0),
			Name:       "CET",
		}},
	}}

	text := c.String()
	if !strings.HasPrefix(text, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//xcal//EN\r\n") {
		t.Errorf("unexpected stream prefix:\n%s", text)
	}
	if !strings.HasSuffix(text, "END:VCALENDAR\r\n") {
		t.Error("stream should end with END:VCALENDAR")
	}
	for _, want := range []string{
		"CALSCALE:GREGORIAN\r\n",
		"BEGIN:VTIMEZONE\r\nTZID:Europe/Paris\r\n",
		"BEGIN:STANDARD\r\n",
		"TZOFFSETFROM:+0200\r\n",
		"TZOFFSETTO:+0100\r\n",
		"TZNAME:CET\r\n",
		"END:STANDARD\r\n",
		"BEGIN:VEVENT\r\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("stream missing %q:\n%s", want, text)
		}
	}
	// Time zone definitions precede the components that reference them.
	if strings.Index(text, "BEGIN:VTIMEZONE") > strings.Index(text, "BEGIN:VEVENT") {
		t.Error("VTIMEZONE should render before VEVENT")
	}
}

func TestCalendarLookups(t *testing.T) {
	c := NewCalendar("cal-1", "-//xcal//EN")
	e := hourEvent("ev-1", "uid-1", values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0))
	c.Events = []*Event{e}

	if got := c.FindEvent("ev-1"); got != e {
		t.Error("FindEvent should return the contained event")
	}
	if got := c.FindEvent("ev-404"); got != nil {
		t.Error("FindEvent on an unknown id should return nil")
	}
	during := values.NewDateTimeUTC(2024, 3, 1, 10, 30, 0)
	if got := c.EventsAt(during); len(got) != 1 || got[0] != e {
		t.Errorf("EventsAt(%v) = %v", during, got)
	}
	after := values.NewDateTimeUTC(2024, 3, 1, 11, 0, 0)
	if got := c.EventsAt(after); len(got) != 0 {
		t.Error("EventsAt at the exclusive end should find nothing")
	}
}
