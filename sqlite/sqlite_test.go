package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/samgerene/xcal"
	"github.com/samgerene/xcal/model"
	"github.com/samgerene/xcal/values"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testEvent(id string) *model.Event {
	start := values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0)
	span := values.NewPeriodDuration(start, values.Duration{Hours: 1})
	e := model.NewEvent(id, "uid-"+id, values.NewDateTimeUTC(2024, 2, 1, 9, 0, 0), span)
	e.Summary = "standup"
	e.Location = "room 4"
	e.Priority = 5
	e.Attendees = []*model.Attendee{
		{ID: id + "-att-1", Address: "mailto:ann@example.org", CommonName: "Ann", Role: model.RoleChair, Status: model.PartStatAccepted, RSVP: true},
		{ID: id + "-att-2", Address: "mailto:bob@example.org", CommonName: "Bob"},
	}
	e.Comments = []*model.Comment{{ID: id + "-com-1", Text: "bring slides"}}
	e.AudioAlarms = []*model.AudioAlarm{{
		ID:      id + "-aa-1",
		Trigger: model.Trigger{Duration: &values.Duration{Minutes: 15}, Related: model.RelatedStart},
		Repeat:  2,
		AttachURI: &model.AttachURI{
			ID:  id + "-aa-1-uri",
			URI: "https://example.org/ping.wav",
		},
	}}
	return e
}

func TestEventSaveFindRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db, xcal.NewSequenceKeyGenerator("k"))
	ctx := context.Background()

	want := testEvent("ev-1")
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save event: %v", err)
	}

	got, err := repo.Find(ctx, "ev-1")
	if err != nil {
		t.Fatalf("find event: %v", err)
	}
	if got == nil {
		t.Fatal("expected event, got nil")
	}
	if got.UID != want.UID {
		t.Errorf("uid = %q, want %q", got.UID, want.UID)
	}
	if !got.Span.Equal(want.Span) {
		t.Errorf("span = %v, want %v", got.Span, want.Span)
	}
	if got.Summary != "standup" || got.Location != "room 4" || got.Priority != 5 {
		t.Errorf("scalar fields did not round trip: %+v", got)
	}
	if len(got.Attendees) != 2 {
		t.Fatalf("attendees = %d, want 2", len(got.Attendees))
	}
	if got.Attendees[0].CommonName != "Ann" || !got.Attendees[0].RSVP {
		t.Errorf("attendee did not round trip: %+v", got.Attendees[0])
	}
	if len(got.Comments) != 1 || got.Comments[0].Text != "bring slides" {
		t.Errorf("comments did not round trip: %+v", got.Comments)
	}
	if len(got.AudioAlarms) != 1 {
		t.Fatalf("audio alarms = %d, want 1", len(got.AudioAlarms))
	}
	alarm := got.AudioAlarms[0]
	if alarm.Repeat != 2 {
		t.Errorf("alarm repeat = %d, want 2", alarm.Repeat)
	}
	if alarm.Trigger.Duration == nil || alarm.Trigger.Duration.Minutes != 15 {
		t.Errorf("alarm trigger did not round trip: %+v", alarm.Trigger)
	}
	if alarm.AttachURI == nil || alarm.AttachURI.URI != "https://example.org/ping.wav" {
		t.Errorf("alarm attachment did not round trip: %+v", alarm.AttachURI)
	}
}

func TestEventFindMissingReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db, xcal.NewSequenceKeyGenerator("k"))

	got, err := repo.Find(context.Background(), "absent")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing key, got %+v", got)
	}
}

func TestEventDoubleSaveKeepsLinksStable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db, xcal.NewSequenceKeyGenerator("k"))
	ctx := context.Background()

	event := testEvent("ev-1")
	if err := repo.Save(ctx, event); err != nil {
		t.Fatalf("first save: %v", err)
	}
	before, err := repo.attendeeLinks.count(ctx, db)
	if err != nil {
		t.Fatalf("count links: %v", err)
	}
	if err := repo.Save(ctx, event); err != nil {
		t.Fatalf("second save: %v", err)
	}
	after, err := repo.attendeeLinks.count(ctx, db)
	if err != nil {
		t.Fatalf("count links: %v", err)
	}
	if before != after {
		t.Errorf("attendee links grew from %d to %d on re-save", before, after)
	}
}

func TestEventPatchPrimitive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db, xcal.NewSequenceKeyGenerator("k"))
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := repo.Save(ctx, testEvent(fmt.Sprintf("ev-%d", i))); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	source := &model.Event{Summary: "retro", Priority: 1}
	fields := []xcal.Field{model.FieldSummary, model.FieldPriority}
	if err := repo.Patch(ctx, source, fields, []string{"ev-1", "ev-3"}); err != nil {
		t.Fatalf("patch: %v", err)
	}

	for id, want := range map[string]string{"ev-1": "retro", "ev-2": "standup", "ev-3": "retro"} {
		got, err := repo.Find(ctx, id)
		if err != nil {
			t.Fatalf("find %s: %v", id, err)
		}
		if got.Summary != want {
			t.Errorf("%s summary = %q, want %q", id, got.Summary, want)
		}
	}
}

func TestEventPatchRelationMerges(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db, xcal.NewSequenceKeyGenerator("k"))
	ctx := context.Background()

	if err := repo.Save(ctx, testEvent("ev-1")); err != nil {
		t.Fatalf("save: %v", err)
	}

	source := &model.Event{Comments: []*model.Comment{{Text: "added later"}}}
	if err := repo.Patch(ctx, source, []xcal.Field{model.FieldComments}, []string{"ev-1"}); err != nil {
		t.Fatalf("patch: %v", err)
	}

	got, err := repo.Find(ctx, "ev-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got.Comments) != 2 {
		t.Fatalf("comments = %d, want 2", len(got.Comments))
	}
}

func TestEventPatchRejectsUnknownField(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db, xcal.NewSequenceKeyGenerator("k"))

	err := repo.Patch(context.Background(), &model.Event{}, []xcal.Field{"bogus"}, nil)
	if !errors.Is(err, xcal.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestEventEraseCleansLinks(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db, xcal.NewSequenceKeyGenerator("k"))
	ctx := context.Background()

	if err := repo.Save(ctx, testEvent("ev-1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Erase(ctx, "ev-1"); err != nil {
		t.Fatalf("erase: %v", err)
	}

	got, err := repo.Find(ctx, "ev-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != nil {
		t.Errorf("expected event gone, got %+v", got)
	}
	n, err := repo.attendeeLinks.count(ctx, db)
	if err != nil {
		t.Fatalf("count links: %v", err)
	}
	if n != 0 {
		t.Errorf("attendee links left behind: %d", n)
	}
}

func TestEventContainsKeysModes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db, xcal.NewSequenceKeyGenerator("k"))
	ctx := context.Background()

	if err := repo.Save(ctx, testEvent("ev-1")); err != nil {
		t.Fatalf("save: %v", err)
	}

	keys := []string{"ev-1", "ev-2"}
	optimistic, err := repo.ContainsKeys(ctx, keys, xcal.Optimistic)
	if err != nil {
		t.Fatalf("contains keys: %v", err)
	}
	if !optimistic {
		t.Error("optimistic should pass with one key present")
	}
	pessimistic, err := repo.ContainsKeys(ctx, keys, xcal.Pessimistic)
	if err != nil {
		t.Fatalf("contains keys: %v", err)
	}
	if pessimistic {
		t.Error("pessimistic should fail with one key missing")
	}
}

func TestEventGetPagesInKeyOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db, xcal.NewSequenceKeyGenerator("k"))
	ctx := context.Background()

	for _, id := range []string{"ev-3", "ev-1", "ev-2"} {
		if err := repo.Save(ctx, testEvent(id)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	page, err := repo.Get(ctx, 1, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(page) != 1 || page[0].ID != "ev-2" {
		t.Errorf("page = %+v, want single ev-2", page)
	}

	all, err := repo.Get(ctx, 0, 0)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all = %d, want 3", len(all))
	}
	for i, want := range []string{"ev-1", "ev-2", "ev-3"} {
		if all[i].ID != want {
			t.Errorf("all[%d] = %s, want %s", i, all[i].ID, want)
		}
	}
}

func TestEventDehydrateClearsCollections(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db, xcal.NewSequenceKeyGenerator("k"))

	event := testEvent("ev-1")
	repo.Dehydrate(event)
	if event.Attendees != nil || event.Comments != nil || event.AudioAlarms != nil {
		t.Errorf("collections not cleared: %+v", event)
	}
	if event.Summary != "standup" {
		t.Errorf("dehydrate touched scalar fields")
	}
}

func TestTodoSaveFindRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db, xcal.NewSequenceKeyGenerator("k"))
	ctx := context.Background()

	start := values.NewDateTimeUTC(2024, 4, 1, 9, 0, 0)
	todo := &model.Todo{
		ID:              "td-1",
		UID:             "uid-td-1",
		Datestamp:       values.NewDateTimeUTC(2024, 3, 1, 8, 0, 0),
		Span:            values.NewPeriodDuration(start, values.Duration{Days: 2}),
		PercentComplete: 40,
		Summary:         "write report",
		Resources:       []*model.Resources{{ID: "td-1-res", Values: []string{"laptop", "projector"}}},
	}
	if err := repo.Save(ctx, todo); err != nil {
		t.Fatalf("save todo: %v", err)
	}

	got, err := repo.Find(ctx, "td-1")
	if err != nil {
		t.Fatalf("find todo: %v", err)
	}
	if got == nil {
		t.Fatal("expected todo, got nil")
	}
	if !got.Due().Equal(start.Add(values.Duration{Days: 2})) {
		t.Errorf("due = %v, want %v", got.Due(), start.Add(values.Duration{Days: 2}))
	}
	if got.PercentComplete != 40 {
		t.Errorf("percent complete = %d, want 40", got.PercentComplete)
	}
	if len(got.Resources) != 1 || len(got.Resources[0].Values) != 2 {
		t.Errorf("resources did not round trip: %+v", got.Resources)
	}
}

func TestTimeZoneSaveFindRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTimeZoneRepository(db, xcal.NewSequenceKeyGenerator("k"))
	ctx := context.Background()

	zone := &model.TimeZone{
		ID:   "tz-1",
		TZID: "Europe/Amsterdam",
		Observances: []*model.Observance{
			{
				ID:         "tz-1-std",
				Kind:       model.ObservanceStandard,
				Start:      values.NewDateTime(1996, 10, 27, 3, 0, 0),
				OffsetFrom: values.UTCOffset{Hours: 2},
				OffsetTo:   values.UTCOffset{Hours: 1},
				Name:       "CET",
			},
			{
				ID:         "tz-1-dst",
				Kind:       model.ObservanceDaylight,
				Start:      values.NewDateTime(1996, 3, 31, 2, 0, 0),
				OffsetFrom: values.UTCOffset{Hours: 1},
				OffsetTo:   values.UTCOffset{Hours: 2},
				Name:       "CEST",
			},
		},
	}
	if err := repo.Save(ctx, zone); err != nil {
		t.Fatalf("save zone: %v", err)
	}

	got, err := repo.Find(ctx, "tz-1")
	if err != nil {
		t.Fatalf("find zone: %v", err)
	}
	if got == nil {
		t.Fatal("expected zone, got nil")
	}
	if got.TZID != "Europe/Amsterdam" {
		t.Errorf("tzid = %q", got.TZID)
	}
	if len(got.Observances) != 2 {
		t.Fatalf("observances = %d, want 2", len(got.Observances))
	}
	std := got.Observances[1]
	if std.Kind != model.ObservanceStandard || std.Name != "CET" {
		// Link order follows generated link ids; find by kind instead.
		std = got.Observances[0]
	}
	if std.OffsetTo.Hours != 1 {
		t.Errorf("standard offset to = %+v, want +0100", std.OffsetTo)
	}
}

func TestCalendarCompositeSaveFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCalendarRepository(db, xcal.NewSequenceKeyGenerator("k"))
	ctx := context.Background()

	cal := model.NewCalendar("cal-1", "-//example//xcal//EN")
	cal.Events = []*model.Event{testEvent("ev-1"), testEvent("ev-2")}
	cal.FreeBusies = []*model.FreeBusy{{
		ID:        "fb-1",
		UID:       "uid-fb-1",
		Datestamp: values.NewDateTimeUTC(2024, 2, 1, 0, 0, 0),
		Periods: []*model.FreeBusyPeriod{{
			ID:   "fb-1-p1",
			Type: model.FreeBusyBusy,
			Period: values.NewPeriodDuration(
				values.NewDateTimeUTC(2024, 3, 1, 9, 0, 0), values.Duration{Hours: 2}),
		}},
	}}

	if err := repo.Save(ctx, cal); err != nil {
		t.Fatalf("save calendar: %v", err)
	}

	got, err := repo.Find(ctx, "cal-1")
	if err != nil {
		t.Fatalf("find calendar: %v", err)
	}
	if got == nil {
		t.Fatal("expected calendar, got nil")
	}
	if got.Version != model.DefaultVersion || got.ProdID != "-//example//xcal//EN" {
		t.Errorf("scalars did not round trip: %+v", got)
	}
	if len(got.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(got.Events))
	}
	if len(got.Events[0].Attendees) != 2 {
		t.Errorf("nested event not hydrated: %+v", got.Events[0])
	}
	if len(got.FreeBusies) != 1 || len(got.FreeBusies[0].Periods) != 1 {
		t.Fatalf("free/busy did not round trip: %+v", got.FreeBusies)
	}
	if got.FreeBusies[0].Periods[0].Type != model.FreeBusyBusy {
		t.Errorf("fb period type = %q", got.FreeBusies[0].Periods[0].Type)
	}

	// Erasing the calendar leaves the components addressable.
	if err := repo.Erase(ctx, "cal-1"); err != nil {
		t.Fatalf("erase calendar: %v", err)
	}
	event, err := repo.Events().Find(ctx, "ev-1")
	if err != nil {
		t.Fatalf("find event after erase: %v", err)
	}
	if event == nil {
		t.Error("component erased together with calendar link")
	}
}

func TestScalarRepositoryEraseAllNilWipes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		c := &model.Comment{ID: fmt.Sprintf("c-%d", i), Text: "n"}
		if err := repo.Save(ctx, c); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if err := repo.EraseAll(ctx, nil); err != nil {
		t.Fatalf("erase all: %v", err)
	}
	left, err := repo.Get(ctx, 0, 0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("rows left after nil erase: %d", len(left))
	}

	// An empty non-nil key set is a no-op, not a wipe.
	c := &model.Comment{ID: "c-4", Text: "n"}
	if err := repo.Save(ctx, c); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.EraseAll(ctx, []string{}); err != nil {
		t.Fatalf("erase none: %v", err)
	}
	if ok, _ := repo.ContainsKey(ctx, "c-4"); !ok {
		t.Error("empty key set erased rows")
	}
}
