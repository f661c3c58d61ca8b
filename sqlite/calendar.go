package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samgerene/xcal"
	"github.com/samgerene/xcal/model"
)

func calendarTable() table[*model.Calendar] {
	return table[*model.Calendar]{
		name:    "calendars",
		columns: []string{"id", "prodid", "version", "calscale", "method"},
		key:     func(c *model.Calendar) string { return c.ID },
		setKey:  func(c *model.Calendar, id string) { c.ID = id },
		args: func(c *model.Calendar) []any {
			return []any{c.ID, c.ProdID, c.Version, c.Calscale, c.Method}
		},
		scan: func(row rowScanner) (*model.Calendar, error) {
			var c model.Calendar
			if err := row.Scan(&c.ID, &c.ProdID, &c.Version, &c.Calscale, &c.Method); err != nil {
				return nil, err
			}
			return &c, nil
		},
	}
}

// CalendarRepository stores the calendar aggregate, composing the
// component repositories so a Save walks the whole graph in one
// transaction.
type CalendarRepository struct {
	db  *sql.DB
	gen xcal.KeyGenerator

	calendars  table[*model.Calendar]
	events     *EventRepository
	todos      *TodoRepository
	journals   *JournalRepository
	freebusies *FreeBusyRepository
	timezones  *TimeZoneRepository

	eventLinks    linkTable
	todoLinks     linkTable
	journalLinks  linkTable
	freebusyLinks linkTable
	timezoneLinks linkTable
}

// NewCalendarRepository returns a repository bound to the given
// database handle and key generator.
func NewCalendarRepository(db *sql.DB, gen xcal.KeyGenerator) *CalendarRepository {
	return &CalendarRepository{
		db:  db,
		gen: gen,

		calendars:  calendarTable(),
		events:     NewEventRepository(db, gen),
		todos:      NewTodoRepository(db, gen),
		journals:   NewJournalRepository(db, gen),
		freebusies: NewFreeBusyRepository(db, gen),
		timezones:  NewTimeZoneRepository(db, gen),

		eventLinks:    linkTable{name: "rel_calendars_events"},
		todoLinks:     linkTable{name: "rel_calendars_todos"},
		journalLinks:  linkTable{name: "rel_calendars_journals"},
		freebusyLinks: linkTable{name: "rel_calendars_freebusies"},
		timezoneLinks: linkTable{name: "rel_calendars_timezones"},
	}
}

// Events exposes the contained event repository.
func (r *CalendarRepository) Events() *EventRepository { return r.events }

// Todos exposes the contained todo repository.
func (r *CalendarRepository) Todos() *TodoRepository { return r.todos }

// Journals exposes the contained journal repository.
func (r *CalendarRepository) Journals() *JournalRepository { return r.journals }

// FreeBusies exposes the contained free/busy repository.
func (r *CalendarRepository) FreeBusies() *FreeBusyRepository { return r.freebusies }

// TimeZones exposes the contained time zone repository.
func (r *CalendarRepository) TimeZones() *TimeZoneRepository { return r.timezones }

// Find returns the hydrated calendar with the given key, or nil.
func (r *CalendarRepository) Find(ctx context.Context, key string) (*model.Calendar, error) {
	cal, ok, err := r.calendars.selectOne(ctx, r.db, key)
	if err != nil || !ok {
		return nil, err
	}
	return cal, r.hydrateAll(ctx, r.db, []*model.Calendar{cal})
}

// FindAll returns the hydrated calendars whose keys are in keys.
func (r *CalendarRepository) FindAll(ctx context.Context, keys []string, skip, take int) ([]*model.Calendar, error) {
	cals, err := r.calendars.selectByKeys(ctx, r.db, keys, skip, take)
	if err != nil {
		return nil, err
	}
	return cals, r.hydrateAll(ctx, r.db, cals)
}

// Get returns every stored calendar, hydrated and ordered by id.
func (r *CalendarRepository) Get(ctx context.Context, skip, take int) ([]*model.Calendar, error) {
	cals, err := r.calendars.selectAll(ctx, r.db, skip, take)
	if err != nil {
		return nil, err
	}
	return cals, r.hydrateAll(ctx, r.db, cals)
}

// Hydrate attaches the calendar's component collections.
func (r *CalendarRepository) Hydrate(ctx context.Context, dry *model.Calendar) (*model.Calendar, error) {
	if dry == nil {
		return nil, nil
	}
	return dry, r.hydrateAll(ctx, r.db, []*model.Calendar{dry})
}

// HydrateAll attaches component collections for a batch.
func (r *CalendarRepository) HydrateAll(ctx context.Context, dry []*model.Calendar) ([]*model.Calendar, error) {
	return dry, r.hydrateAll(ctx, r.db, dry)
}

func (r *CalendarRepository) hydrateAll(ctx context.Context, q dbtx, cals []*model.Calendar) error {
	if len(cals) == 0 {
		return nil
	}
	ids := make([]string, len(cals))
	for i, c := range cals {
		ids[i] = c.ID
	}
	events, err := attach(ctx, q, r.eventLinks, r.events.events, ids)
	if err != nil {
		return err
	}
	todos, err := attach(ctx, q, r.todoLinks, r.todos.todos, ids)
	if err != nil {
		return err
	}
	journals, err := attach(ctx, q, r.journalLinks, r.journals.journals, ids)
	if err != nil {
		return err
	}
	freebusies, err := attach(ctx, q, r.freebusyLinks, r.freebusies.freebusies, ids)
	if err != nil {
		return err
	}
	timezones, err := attach(ctx, q, r.timezoneLinks, r.timezones.timezones, ids)
	if err != nil {
		return err
	}

	var allEvents []*model.Event
	var allTodos []*model.Todo
	var allJournals []*model.Journal
	var allFreeBusies []*model.FreeBusy
	var allTimeZones []*model.TimeZone
	for _, c := range cals {
		c.Events = events[c.ID]
		c.Todos = todos[c.ID]
		c.Journals = journals[c.ID]
		c.FreeBusies = freebusies[c.ID]
		c.TimeZones = timezones[c.ID]
		allEvents = append(allEvents, c.Events...)
		allTodos = append(allTodos, c.Todos...)
		allJournals = append(allJournals, c.Journals...)
		allFreeBusies = append(allFreeBusies, c.FreeBusies...)
		allTimeZones = append(allTimeZones, c.TimeZones...)
	}
	if err := r.events.hydrateAll(ctx, q, allEvents); err != nil {
		return err
	}
	if err := r.todos.hydrateAll(ctx, q, allTodos); err != nil {
		return err
	}
	if err := r.journals.hydrateAll(ctx, q, allJournals); err != nil {
		return err
	}
	if err := r.freebusies.hydrateAll(ctx, q, allFreeBusies); err != nil {
		return err
	}
	return r.timezones.hydrateAll(ctx, q, allTimeZones)
}

// Dehydrate clears the component collections in place.
func (r *CalendarRepository) Dehydrate(full *model.Calendar) *model.Calendar {
	full.Events = nil
	full.Todos = nil
	full.Journals = nil
	full.FreeBusies = nil
	full.TimeZones = nil
	return full
}

// DehydrateAll clears component collections across a batch.
func (r *CalendarRepository) DehydrateAll(full []*model.Calendar) []*model.Calendar {
	for _, c := range full {
		r.Dehydrate(c)
	}
	return full
}

// Save upserts the calendar and its entire component graph in one
// transaction.
func (r *CalendarRepository) Save(ctx context.Context, entity *model.Calendar) error {
	return r.SaveAll(ctx, []*model.Calendar{entity})
}

// SaveAll upserts a batch in one transaction.
func (r *CalendarRepository) SaveAll(ctx context.Context, entities []*model.Calendar) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.saveTx(ctx, tx, entities))
}

func (r *CalendarRepository) saveTx(ctx context.Context, q dbtx, entities []*model.Calendar) error {
	if len(entities) == 0 {
		return nil
	}
	if err := r.calendars.upsert(ctx, q, entities); err != nil {
		return err
	}
	for _, c := range entities {
		if err := r.events.saveTx(ctx, q, c.Events); err != nil {
			return err
		}
		if err := r.linkComponents(ctx, q, r.eventLinks, c.ID, eventIDs(c.Events)); err != nil {
			return err
		}
		if err := r.todos.saveTx(ctx, q, c.Todos); err != nil {
			return err
		}
		if err := r.linkComponents(ctx, q, r.todoLinks, c.ID, todoIDs(c.Todos)); err != nil {
			return err
		}
		if err := r.journals.saveTx(ctx, q, c.Journals); err != nil {
			return err
		}
		if err := r.linkComponents(ctx, q, r.journalLinks, c.ID, journalIDs(c.Journals)); err != nil {
			return err
		}
		if err := r.freebusies.saveTx(ctx, q, c.FreeBusies); err != nil {
			return err
		}
		if err := r.linkComponents(ctx, q, r.freebusyLinks, c.ID, freeBusyIDs(c.FreeBusies)); err != nil {
			return err
		}
		if err := r.timezones.saveTx(ctx, q, c.TimeZones); err != nil {
			return err
		}
		if err := r.linkComponents(ctx, q, r.timezoneLinks, c.ID, timeZoneIDs(c.TimeZones)); err != nil {
			return err
		}
	}
	return nil
}

func (r *CalendarRepository) linkComponents(ctx context.Context, q dbtx, l linkTable, parentID string, childIDs []string) error {
	if len(childIDs) == 0 {
		return nil
	}
	return l.sync(ctx, q, r.gen, parentID, childIDs)
}

func eventIDs(items []*model.Event) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func todoIDs(items []*model.Todo) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func journalIDs(items []*model.Journal) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func freeBusyIDs(items []*model.FreeBusy) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func timeZoneIDs(items []*model.TimeZone) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// Patch applies the named scalar fields of source to the calendars in
// keys; nil keys means every calendar. Component collections are
// managed through Save, not Patch.
func (r *CalendarRepository) Patch(ctx context.Context, source *model.Calendar, fields []xcal.Field, keys []string) error {
	var cols []string
	var vals []any
	for _, f := range fields {
		switch f {
		case model.FieldProdID:
			cols = append(cols, "prodid")
			vals = append(vals, source.ProdID)
		case model.FieldVersion:
			cols = append(cols, "version")
			vals = append(vals, source.Version)
		case model.FieldCalscale:
			cols = append(cols, "calscale")
			vals = append(vals, source.Calscale)
		case model.FieldMethod:
			cols = append(cols, "method")
			vals = append(vals, source.Method)
		default:
			return fmt.Errorf("%w: field %q not patchable on calendars", xcal.ErrInvalidArgument, f)
		}
	}
	return r.calendars.updateColumns(ctx, r.db, cols, vals, keys)
}

// Erase removes the calendar and its component links in one
// transaction. The components themselves stay; they can be addressed
// through their own repositories.
func (r *CalendarRepository) Erase(ctx context.Context, key string) error {
	return r.EraseAll(ctx, []string{key})
}

// EraseAll removes the calendars in keys and their component links; nil
// keys means everything.
func (r *CalendarRepository) EraseAll(ctx context.Context, keys []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.eraseTx(ctx, tx, keys))
}

func (r *CalendarRepository) eraseTx(ctx context.Context, q dbtx, keys []string) error {
	links := []linkTable{
		r.eventLinks, r.todoLinks, r.journalLinks, r.freebusyLinks, r.timezoneLinks,
	}
	for _, l := range links {
		if err := l.deleteByParents(ctx, q, keys); err != nil {
			return err
		}
	}
	return r.calendars.deleteKeys(ctx, q, keys)
}

// ContainsKey reports whether the key exists.
func (r *CalendarRepository) ContainsKey(ctx context.Context, key string) (bool, error) {
	n, err := r.calendars.countKeys(ctx, r.db, []string{key})
	return n == 1, err
}

// ContainsKeys evaluates the key set under the given expectation mode.
func (r *CalendarRepository) ContainsKeys(ctx context.Context, keys []string, mode xcal.ExpectationMode) (bool, error) {
	n, err := r.calendars.countKeys(ctx, r.db, keys)
	if err != nil {
		return false, err
	}
	return containsKeys(n, len(keys), mode), nil
}
