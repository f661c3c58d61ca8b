package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samgerene/xcal"
	"github.com/samgerene/xcal/model"
)

func todoTable() table[*model.Todo] {
	return table[*model.Todo]{
		name: "todos",
		columns: []string{"id", "uid", "datestamp", "created", "last_modified", "start",
			"duration", "completed", "percent_complete", "classification",
			"description", "location", "organizer_name", "organizer_address",
			"priority", "sequence", "status", "summary", "url", "rrule", "rid_id",
			"rid_range", "rid_value", "categories"},
		key:    func(t *model.Todo) string { return t.ID },
		setKey: func(t *model.Todo, id string) { t.ID = id },
		args: func(t *model.Todo) []any {
			start, duration := fmtPeriod(t.Span)
			oname, oaddr := fmtOrganizer(t.Organizer)
			ridID, ridRange, ridValue := fmtRecurrenceID(t.RecurrenceID)
			return []any{t.ID, t.UID, fmtDateTime(t.Datestamp), fmtDateTime(t.Created),
				fmtDateTime(t.LastModified), start, duration, fmtDateTime(t.Completed),
				t.PercentComplete, string(t.Classification), t.Description,
				t.Location, oname, oaddr, t.Priority, t.Sequence, string(t.Status),
				t.Summary, t.URL, fmtRule(t.RecurrenceRule), ridID, ridRange,
				ridValue, fmtStrings(t.Categories)}
		},
		scan: func(row rowScanner) (*model.Todo, error) {
			var t model.Todo
			var datestamp, created, modified, start, duration, completed string
			var classification, oname, oaddr, status string
			var rrule, ridID, ridRange, ridValue, categories string
			if err := row.Scan(&t.ID, &t.UID, &datestamp, &created, &modified, &start,
				&duration, &completed, &t.PercentComplete, &classification,
				&t.Description, &t.Location, &oname, &oaddr, &t.Priority,
				&t.Sequence, &status, &t.Summary, &t.URL, &rrule, &ridID,
				&ridRange, &ridValue, &categories); err != nil {
				return nil, err
			}
			var err error
			if t.Datestamp, err = scanDateTime(datestamp); err != nil {
				return nil, err
			}
			if t.Created, err = scanDateTime(created); err != nil {
				return nil, err
			}
			if t.LastModified, err = scanDateTime(modified); err != nil {
				return nil, err
			}
			if t.Span, err = scanPeriod(start, duration); err != nil {
				return nil, err
			}
			if t.Completed, err = scanDateTime(completed); err != nil {
				return nil, err
			}
			t.Classification = model.Classification(classification)
			t.Organizer = scanOrganizer(oname, oaddr)
			t.Status = model.Status(status)
			if t.RecurrenceRule, err = scanRule(rrule); err != nil {
				return nil, err
			}
			if t.RecurrenceID, err = scanRecurrenceID(ridID, ridRange, ridValue); err != nil {
				return nil, err
			}
			t.Categories = scanStrings(categories)
			return &t, nil
		},
	}
}

// TodoRepository stores todos and their relation collections.
type TodoRepository struct {
	db  *sql.DB
	gen xcal.KeyGenerator

	todos      table[*model.Todo]
	attendees  table[*model.Attendee]
	attachuris table[*model.AttachURI]
	comments   table[*model.Comment]
	exdates    table[*model.ExceptionDates]
	rdates     table[*model.RecurrenceDates]
	relatedtos table[*model.RelatedTo]
	resources  table[*model.Resources]

	attendeeLinks  linkTable
	attachuriLinks linkTable
	commentLinks   linkTable
	exdateLinks    linkTable
	rdateLinks     linkTable
	relatedtoLinks linkTable
	resourceLinks  linkTable
}

// NewTodoRepository returns a repository bound to the given database
// handle and key generator.
func NewTodoRepository(db *sql.DB, gen xcal.KeyGenerator) *TodoRepository {
	return &TodoRepository{
		db:  db,
		gen: gen,

		todos:      todoTable(),
		attendees:  attendeeTable(),
		attachuris: attachURITable(),
		comments:   commentTable(),
		exdates:    exceptionDatesTable(),
		rdates:     recurrenceDatesTable(),
		relatedtos: relatedToTable(),
		resources:  resourcesTable(),

		attendeeLinks:  linkTable{name: "rel_todos_attendees"},
		attachuriLinks: linkTable{name: "rel_todos_attachuris"},
		commentLinks:   linkTable{name: "rel_todos_comments"},
		exdateLinks:    linkTable{name: "rel_todos_exdates"},
		rdateLinks:     linkTable{name: "rel_todos_rdates"},
		relatedtoLinks: linkTable{name: "rel_todos_relatedtos"},
		resourceLinks:  linkTable{name: "rel_todos_resources"},
	}
}

// Find returns the hydrated todo with the given key, or nil.
func (r *TodoRepository) Find(ctx context.Context, key string) (*model.Todo, error) {
	todo, ok, err := r.todos.selectOne(ctx, r.db, key)
	if err != nil || !ok {
		return nil, err
	}
	return todo, r.hydrateAll(ctx, r.db, []*model.Todo{todo})
}

// FindAll returns the hydrated todos whose keys are in keys, ordered by
// id.
func (r *TodoRepository) FindAll(ctx context.Context, keys []string, skip, take int) ([]*model.Todo, error) {
	todos, err := r.todos.selectByKeys(ctx, r.db, keys, skip, take)
	if err != nil {
		return nil, err
	}
	return todos, r.hydrateAll(ctx, r.db, todos)
}

// Get returns every stored todo, hydrated and ordered by id.
func (r *TodoRepository) Get(ctx context.Context, skip, take int) ([]*model.Todo, error) {
	todos, err := r.todos.selectAll(ctx, r.db, skip, take)
	if err != nil {
		return nil, err
	}
	return todos, r.hydrateAll(ctx, r.db, todos)
}

// Hydrate attaches the todo's relation collections.
func (r *TodoRepository) Hydrate(ctx context.Context, dry *model.Todo) (*model.Todo, error) {
	if dry == nil {
		return nil, nil
	}
	return dry, r.hydrateAll(ctx, r.db, []*model.Todo{dry})
}

// HydrateAll attaches relations for a batch.
func (r *TodoRepository) HydrateAll(ctx context.Context, dry []*model.Todo) ([]*model.Todo, error) {
	return dry, r.hydrateAll(ctx, r.db, dry)
}

func (r *TodoRepository) hydrateAll(ctx context.Context, q dbtx, todos []*model.Todo) error {
	if len(todos) == 0 {
		return nil
	}
	ids := make([]string, len(todos))
	for i, t := range todos {
		ids[i] = t.ID
	}
	attendees, err := attach(ctx, q, r.attendeeLinks, r.attendees, ids)
	if err != nil {
		return err
	}
	uris, err := attach(ctx, q, r.attachuriLinks, r.attachuris, ids)
	if err != nil {
		return err
	}
	comments, err := attach(ctx, q, r.commentLinks, r.comments, ids)
	if err != nil {
		return err
	}
	exdates, err := attach(ctx, q, r.exdateLinks, r.exdates, ids)
	if err != nil {
		return err
	}
	rdates, err := attach(ctx, q, r.rdateLinks, r.rdates, ids)
	if err != nil {
		return err
	}
	relatedtos, err := attach(ctx, q, r.relatedtoLinks, r.relatedtos, ids)
	if err != nil {
		return err
	}
	resources, err := attach(ctx, q, r.resourceLinks, r.resources, ids)
	if err != nil {
		return err
	}
	for _, t := range todos {
		t.Attendees = attendees[t.ID]
		t.AttachURIs = uris[t.ID]
		t.Comments = comments[t.ID]
		t.ExceptionDates = exdates[t.ID]
		t.RecurrenceDates = rdates[t.ID]
		t.RelatedTos = relatedtos[t.ID]
		t.Resources = resources[t.ID]
	}
	return nil
}

// Dehydrate clears the relation collections in place.
func (r *TodoRepository) Dehydrate(full *model.Todo) *model.Todo {
	full.Attendees = nil
	full.AttachURIs = nil
	full.Comments = nil
	full.ExceptionDates = nil
	full.RecurrenceDates = nil
	full.RelatedTos = nil
	full.Resources = nil
	return full
}

// DehydrateAll clears relations across a batch.
func (r *TodoRepository) DehydrateAll(full []*model.Todo) []*model.Todo {
	for _, t := range full {
		r.Dehydrate(t)
	}
	return full
}

// Save upserts the todo and its relation graph in one transaction.
func (r *TodoRepository) Save(ctx context.Context, entity *model.Todo) error {
	return r.SaveAll(ctx, []*model.Todo{entity})
}

// SaveAll upserts a batch in one transaction.
func (r *TodoRepository) SaveAll(ctx context.Context, entities []*model.Todo) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.saveTx(ctx, tx, entities))
}

func (r *TodoRepository) saveTx(ctx context.Context, q dbtx, entities []*model.Todo) error {
	if len(entities) == 0 {
		return nil
	}
	for _, t := range entities {
		if t.ID == "" {
			t.ID = r.gen.NextKey()
		}
	}
	if err := r.todos.upsert(ctx, q, entities); err != nil {
		return err
	}
	for _, t := range entities {
		if err := saveChildren(ctx, q, r.gen, r.attendees, r.attendeeLinks, t.ID, t.Attendees); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.attachuris, r.attachuriLinks, t.ID, t.AttachURIs); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.comments, r.commentLinks, t.ID, t.Comments); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.exdates, r.exdateLinks, t.ID, t.ExceptionDates); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.rdates, r.rdateLinks, t.ID, t.RecurrenceDates); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.relatedtos, r.relatedtoLinks, t.ID, t.RelatedTos); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.resources, r.resourceLinks, t.ID, t.Resources); err != nil {
			return err
		}
	}
	return nil
}

// Patch applies the named fields of source to the todos in keys; nil
// keys means every todo.
func (r *TodoRepository) Patch(ctx context.Context, source *model.Todo, fields []xcal.Field, keys []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.patchTx(ctx, tx, source, fields, keys))
}

func (r *TodoRepository) patchTx(ctx context.Context, q dbtx, source *model.Todo, fields []xcal.Field, keys []string) error {
	var cols []string
	var vals []any
	var relations []xcal.Field
	for _, f := range fields {
		switch f {
		case model.FieldUID:
			cols = append(cols, "uid")
			vals = append(vals, source.UID)
		case model.FieldDatestamp:
			cols = append(cols, "datestamp")
			vals = append(vals, fmtDateTime(source.Datestamp))
		case model.FieldCreated:
			cols = append(cols, "created")
			vals = append(vals, fmtDateTime(source.Created))
		case model.FieldLastModified:
			cols = append(cols, "last_modified")
			vals = append(vals, fmtDateTime(source.LastModified))
		case model.FieldStart, model.FieldDue:
			start, duration := fmtPeriod(source.Span)
			cols = append(cols, "start", "duration")
			vals = append(vals, start, duration)
		case model.FieldCompleted:
			cols = append(cols, "completed")
			vals = append(vals, fmtDateTime(source.Completed))
		case model.FieldPercent:
			cols = append(cols, "percent_complete")
			vals = append(vals, source.PercentComplete)
		case model.FieldClassification:
			cols = append(cols, "classification")
			vals = append(vals, string(source.Classification))
		case model.FieldDescription:
			cols = append(cols, "description")
			vals = append(vals, source.Description)
		case model.FieldLocation:
			cols = append(cols, "location")
			vals = append(vals, source.Location)
		case model.FieldOrganizer:
			oname, oaddr := fmtOrganizer(source.Organizer)
			cols = append(cols, "organizer_name", "organizer_address")
			vals = append(vals, oname, oaddr)
		case model.FieldPriority:
			cols = append(cols, "priority")
			vals = append(vals, source.Priority)
		case model.FieldSequence:
			cols = append(cols, "sequence")
			vals = append(vals, source.Sequence)
		case model.FieldStatus:
			cols = append(cols, "status")
			vals = append(vals, string(source.Status))
		case model.FieldSummary:
			cols = append(cols, "summary")
			vals = append(vals, source.Summary)
		case model.FieldURL:
			cols = append(cols, "url")
			vals = append(vals, source.URL)
		case model.FieldRecurrenceRule:
			cols = append(cols, "rrule")
			vals = append(vals, fmtRule(source.RecurrenceRule))
		case model.FieldCategories:
			cols = append(cols, "categories")
			vals = append(vals, fmtStrings(source.Categories))
		case model.FieldAttendees, model.FieldAttachURIs, model.FieldComments,
			model.FieldExceptionDates, model.FieldRecurrenceDates,
			model.FieldRelatedTos, model.FieldResources:
			relations = append(relations, f)
		default:
			return fmt.Errorf("%w: field %q not patchable on todos", xcal.ErrInvalidArgument, f)
		}
	}
	if err := r.todos.updateColumns(ctx, q, cols, vals, keys); err != nil {
		return err
	}
	if len(relations) == 0 {
		return nil
	}
	if keys == nil {
		var err error
		if keys, err = r.todos.allKeys(ctx, q); err != nil {
			return err
		}
	}
	for _, f := range relations {
		for _, key := range keys {
			var err error
			switch f {
			case model.FieldAttendees:
				err = saveChildren(ctx, q, r.gen, r.attendees, r.attendeeLinks, key, source.Attendees)
			case model.FieldAttachURIs:
				err = saveChildren(ctx, q, r.gen, r.attachuris, r.attachuriLinks, key, source.AttachURIs)
			case model.FieldComments:
				err = saveChildren(ctx, q, r.gen, r.comments, r.commentLinks, key, source.Comments)
			case model.FieldExceptionDates:
				err = saveChildren(ctx, q, r.gen, r.exdates, r.exdateLinks, key, source.ExceptionDates)
			case model.FieldRecurrenceDates:
				err = saveChildren(ctx, q, r.gen, r.rdates, r.rdateLinks, key, source.RecurrenceDates)
			case model.FieldRelatedTos:
				err = saveChildren(ctx, q, r.gen, r.relatedtos, r.relatedtoLinks, key, source.RelatedTos)
			case model.FieldResources:
				err = saveChildren(ctx, q, r.gen, r.resources, r.resourceLinks, key, source.Resources)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Erase removes the todo and its relation links in one transaction.
func (r *TodoRepository) Erase(ctx context.Context, key string) error {
	return r.EraseAll(ctx, []string{key})
}

// EraseAll removes the todos in keys and their relation links; nil
// keys means everything.
func (r *TodoRepository) EraseAll(ctx context.Context, keys []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.eraseTx(ctx, tx, keys))
}

func (r *TodoRepository) eraseTx(ctx context.Context, q dbtx, keys []string) error {
	links := []linkTable{
		r.attendeeLinks, r.attachuriLinks, r.commentLinks, r.exdateLinks,
		r.rdateLinks, r.relatedtoLinks, r.resourceLinks,
	}
	for _, l := range links {
		if err := l.deleteByParents(ctx, q, keys); err != nil {
			return err
		}
	}
	return r.todos.deleteKeys(ctx, q, keys)
}

// ContainsKey reports whether the key exists.
func (r *TodoRepository) ContainsKey(ctx context.Context, key string) (bool, error) {
	n, err := r.todos.countKeys(ctx, r.db, []string{key})
	return n == 1, err
}

// ContainsKeys evaluates the key set under the given expectation mode.
func (r *TodoRepository) ContainsKeys(ctx context.Context, keys []string, mode xcal.ExpectationMode) (bool, error) {
	n, err := r.todos.countKeys(ctx, r.db, keys)
	if err != nil {
		return false, err
	}
	return containsKeys(n, len(keys), mode), nil
}
