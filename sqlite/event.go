package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samgerene/xcal"
	"github.com/samgerene/xcal/model"
)

func eventTable() table[*model.Event] {
	return table[*model.Event]{
		name: "events",
		columns: []string{"id", "uid", "datestamp", "created", "last_modified", "start",
			"duration", "classification", "description", "geo", "location",
			"organizer_name", "organizer_address", "priority", "sequence", "status",
			"summary", "transparency", "url", "rrule", "rid_id", "rid_range",
			"rid_value", "categories"},
		key:    func(e *model.Event) string { return e.ID },
		setKey: func(e *model.Event, id string) { e.ID = id },
		args: func(e *model.Event) []any {
			start, duration := fmtPeriod(e.Span)
			oname, oaddr := fmtOrganizer(e.Organizer)
			ridID, ridRange, ridValue := fmtRecurrenceID(e.RecurrenceID)
			return []any{e.ID, e.UID, fmtDateTime(e.Datestamp), fmtDateTime(e.Created),
				fmtDateTime(e.LastModified), start, duration, string(e.Classification),
				e.Description, fmtGeo(e.Geo), e.Location, oname, oaddr, e.Priority,
				e.Sequence, string(e.Status), e.Summary, string(e.Transparency),
				e.URL, fmtRule(e.RecurrenceRule), ridID, ridRange, ridValue,
				fmtStrings(e.Categories)}
		},
		scan: func(row rowScanner) (*model.Event, error) {
			var e model.Event
			var datestamp, created, modified, start, duration string
			var classification, geo, oname, oaddr, status, transparency string
			var rrule, ridID, ridRange, ridValue, categories string
			if err := row.Scan(&e.ID, &e.UID, &datestamp, &created, &modified, &start,
				&duration, &classification, &e.Description, &geo, &e.Location,
				&oname, &oaddr, &e.Priority, &e.Sequence, &status, &e.Summary,
				&transparency, &e.URL, &rrule, &ridID, &ridRange, &ridValue,
				&categories); err != nil {
				return nil, err
			}
			var err error
			if e.Datestamp, err = scanDateTime(datestamp); err != nil {
				return nil, err
			}
			if e.Created, err = scanDateTime(created); err != nil {
				return nil, err
			}
			if e.LastModified, err = scanDateTime(modified); err != nil {
				return nil, err
			}
			if e.Span, err = scanPeriod(start, duration); err != nil {
				return nil, err
			}
			e.Classification = model.Classification(classification)
			if e.Geo, err = scanGeo(geo); err != nil {
				return nil, err
			}
			e.Organizer = scanOrganizer(oname, oaddr)
			e.Status = model.Status(status)
			e.Transparency = model.Transparency(transparency)
			if e.RecurrenceRule, err = scanRule(rrule); err != nil {
				return nil, err
			}
			if e.RecurrenceID, err = scanRecurrenceID(ridID, ridRange, ridValue); err != nil {
				return nil, err
			}
			e.Categories = scanStrings(categories)
			return &e, nil
		},
	}
}

// EventRepository stores events and their relation graph: the scalar
// sub-entities, the three alarm kinds, and the link rows binding them.
type EventRepository struct {
	db  *sql.DB
	gen xcal.KeyGenerator

	events      table[*model.Event]
	attendees   table[*model.Attendee]
	attachbins  table[*model.AttachBinary]
	attachuris  table[*model.AttachURI]
	comments    table[*model.Comment]
	contacts    table[*model.Contact]
	exdates     table[*model.ExceptionDates]
	rdates      table[*model.RecurrenceDates]
	relatedtos  table[*model.RelatedTo]
	reqstats    table[*model.RequestStatus]
	resources   table[*model.Resources]
	audioAlarms *AudioAlarmRepository
	dispAlarms  *DisplayAlarmRepository
	emailAlarms *EmailAlarmRepository

	attendeeLinks   linkTable
	attachbinLinks  linkTable
	attachuriLinks  linkTable
	commentLinks    linkTable
	contactLinks    linkTable
	exdateLinks     linkTable
	rdateLinks      linkTable
	relatedtoLinks  linkTable
	reqstatLinks    linkTable
	resourceLinks   linkTable
	audioAlarmLinks linkTable
	dispAlarmLinks  linkTable
	emailAlarmLinks linkTable
}

// NewEventRepository returns a repository bound to the given database
// handle and key generator.
func NewEventRepository(db *sql.DB, gen xcal.KeyGenerator) *EventRepository {
	return &EventRepository{
		db:  db,
		gen: gen,

		events:      eventTable(),
		attendees:   attendeeTable(),
		attachbins:  attachBinaryTable(),
		attachuris:  attachURITable(),
		comments:    commentTable(),
		contacts:    contactTable(),
		exdates:     exceptionDatesTable(),
		rdates:      recurrenceDatesTable(),
		relatedtos:  relatedToTable(),
		reqstats:    requestStatusTable(),
		resources:   resourcesTable(),
		audioAlarms: NewAudioAlarmRepository(db, gen),
		dispAlarms:  NewDisplayAlarmRepository(db),
		emailAlarms: NewEmailAlarmRepository(db, gen),

		attendeeLinks:   linkTable{name: "rel_events_attendees"},
		attachbinLinks:  linkTable{name: "rel_events_attachbins"},
		attachuriLinks:  linkTable{name: "rel_events_attachuris"},
		commentLinks:    linkTable{name: "rel_events_comments"},
		contactLinks:    linkTable{name: "rel_events_contacts"},
		exdateLinks:     linkTable{name: "rel_events_exdates"},
		rdateLinks:      linkTable{name: "rel_events_rdates"},
		relatedtoLinks:  linkTable{name: "rel_events_relatedtos"},
		reqstatLinks:    linkTable{name: "rel_events_reqstats"},
		resourceLinks:   linkTable{name: "rel_events_resources"},
		audioAlarmLinks: linkTable{name: "rel_events_audio_alarms"},
		dispAlarmLinks:  linkTable{name: "rel_events_display_alarms"},
		emailAlarmLinks: linkTable{name: "rel_events_email_alarms"},
	}
}

// Find returns the hydrated event with the given key, or nil.
func (r *EventRepository) Find(ctx context.Context, key string) (*model.Event, error) {
	event, ok, err := r.events.selectOne(ctx, r.db, key)
	if err != nil || !ok {
		return nil, err
	}
	return event, r.hydrateAll(ctx, r.db, []*model.Event{event})
}

// FindAll returns the hydrated events whose keys are in keys, ordered
// by id.
func (r *EventRepository) FindAll(ctx context.Context, keys []string, skip, take int) ([]*model.Event, error) {
	events, err := r.events.selectByKeys(ctx, r.db, keys, skip, take)
	if err != nil {
		return nil, err
	}
	return events, r.hydrateAll(ctx, r.db, events)
}

// Get returns every stored event, hydrated and ordered by id.
func (r *EventRepository) Get(ctx context.Context, skip, take int) ([]*model.Event, error) {
	events, err := r.events.selectAll(ctx, r.db, skip, take)
	if err != nil {
		return nil, err
	}
	return events, r.hydrateAll(ctx, r.db, events)
}

// Hydrate attaches the event's relation collections.
func (r *EventRepository) Hydrate(ctx context.Context, dry *model.Event) (*model.Event, error) {
	if dry == nil {
		return nil, nil
	}
	return dry, r.hydrateAll(ctx, r.db, []*model.Event{dry})
}

// HydrateAll attaches relations for a batch with one link and one
// child query per collection.
func (r *EventRepository) HydrateAll(ctx context.Context, dry []*model.Event) ([]*model.Event, error) {
	return dry, r.hydrateAll(ctx, r.db, dry)
}

func (r *EventRepository) hydrateAll(ctx context.Context, q dbtx, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	attendees, err := attach(ctx, q, r.attendeeLinks, r.attendees, ids)
	if err != nil {
		return err
	}
	bins, err := attach(ctx, q, r.attachbinLinks, r.attachbins, ids)
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
	contacts, err := attach(ctx, q, r.contactLinks, r.contacts, ids)
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
	reqstats, err := attach(ctx, q, r.reqstatLinks, r.reqstats, ids)
	if err != nil {
		return err
	}
	resources, err := attach(ctx, q, r.resourceLinks, r.resources, ids)
	if err != nil {
		return err
	}
	audio, err := attach(ctx, q, r.audioAlarmLinks, r.audioAlarms.alarms, ids)
	if err != nil {
		return err
	}
	display, err := attach(ctx, q, r.dispAlarmLinks, r.dispAlarms.alarms, ids)
	if err != nil {
		return err
	}
	email, err := attach(ctx, q, r.emailAlarmLinks, r.emailAlarms.alarms, ids)
	if err != nil {
		return err
	}

	var allAudio []*model.AudioAlarm
	var allEmail []*model.EmailAlarm
	for _, e := range events {
		e.Attendees = attendees[e.ID]
		e.AttachBinaries = bins[e.ID]
		e.AttachURIs = uris[e.ID]
		e.Comments = comments[e.ID]
		e.Contacts = contacts[e.ID]
		e.ExceptionDates = exdates[e.ID]
		e.RecurrenceDates = rdates[e.ID]
		e.RelatedTos = relatedtos[e.ID]
		e.RequestStatuses = reqstats[e.ID]
		e.Resources = resources[e.ID]
		e.AudioAlarms = audio[e.ID]
		e.DisplayAlarms = display[e.ID]
		e.EmailAlarms = email[e.ID]
		allAudio = append(allAudio, e.AudioAlarms...)
		allEmail = append(allEmail, e.EmailAlarms...)
	}
	if err := r.audioAlarms.hydrateAll(ctx, q, allAudio); err != nil {
		return err
	}
	return r.emailAlarms.hydrateAll(ctx, q, allEmail)
}

// Dehydrate clears the relation collections in place.
func (r *EventRepository) Dehydrate(full *model.Event) *model.Event {
	full.Attendees = nil
	full.AttachBinaries = nil
	full.AttachURIs = nil
	full.Comments = nil
	full.Contacts = nil
	full.ExceptionDates = nil
	full.RecurrenceDates = nil
	full.RelatedTos = nil
	full.RequestStatuses = nil
	full.Resources = nil
	full.AudioAlarms = nil
	full.DisplayAlarms = nil
	full.EmailAlarms = nil
	return full
}

// DehydrateAll clears relations across a batch.
func (r *EventRepository) DehydrateAll(full []*model.Event) []*model.Event {
	for _, e := range full {
		r.Dehydrate(e)
	}
	return full
}

// Save upserts the event and its relation graph in one transaction.
func (r *EventRepository) Save(ctx context.Context, entity *model.Event) error {
	return r.SaveAll(ctx, []*model.Event{entity})
}

// SaveAll upserts a batch in one transaction.
func (r *EventRepository) SaveAll(ctx context.Context, entities []*model.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.saveTx(ctx, tx, entities))
}

func (r *EventRepository) saveTx(ctx context.Context, q dbtx, entities []*model.Event) error {
	if len(entities) == 0 {
		return nil
	}
	for _, e := range entities {
		if e.ID == "" {
			e.ID = r.gen.NextKey()
		}
	}
	if err := r.events.upsert(ctx, q, entities); err != nil {
		return err
	}
	for _, e := range entities {
		if err := saveChildren(ctx, q, r.gen, r.attendees, r.attendeeLinks, e.ID, e.Attendees); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.attachbins, r.attachbinLinks, e.ID, e.AttachBinaries); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.attachuris, r.attachuriLinks, e.ID, e.AttachURIs); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.comments, r.commentLinks, e.ID, e.Comments); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.contacts, r.contactLinks, e.ID, e.Contacts); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.exdates, r.exdateLinks, e.ID, e.ExceptionDates); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.rdates, r.rdateLinks, e.ID, e.RecurrenceDates); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.relatedtos, r.relatedtoLinks, e.ID, e.RelatedTos); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.reqstats, r.reqstatLinks, e.ID, e.RequestStatuses); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.resources, r.resourceLinks, e.ID, e.Resources); err != nil {
			return err
		}
		if err := r.saveAlarms(ctx, q, e); err != nil {
			return err
		}
	}
	return nil
}

// saveAlarms persists the three alarm collections through their own
// repositories, then links them to the event.
func (r *EventRepository) saveAlarms(ctx context.Context, q dbtx, e *model.Event) error {
	if len(e.AudioAlarms) > 0 {
		for _, a := range e.AudioAlarms {
			if a.ID == "" {
				a.ID = r.gen.NextKey()
			}
		}
		if err := r.audioAlarms.saveTx(ctx, q, e.AudioAlarms); err != nil {
			return err
		}
		ids := make([]string, len(e.AudioAlarms))
		for i, a := range e.AudioAlarms {
			ids[i] = a.ID
		}
		if err := r.audioAlarmLinks.sync(ctx, q, r.gen, e.ID, ids); err != nil {
			return err
		}
	}
	if err := saveChildren(ctx, q, r.gen, r.dispAlarms.alarms, r.dispAlarmLinks, e.ID, e.DisplayAlarms); err != nil {
		return err
	}
	if len(e.EmailAlarms) > 0 {
		for _, a := range e.EmailAlarms {
			if a.ID == "" {
				a.ID = r.gen.NextKey()
			}
		}
		if err := r.emailAlarms.saveTx(ctx, q, e.EmailAlarms); err != nil {
			return err
		}
		ids := make([]string, len(e.EmailAlarms))
		for i, a := range e.EmailAlarms {
			ids[i] = a.ID
		}
		if err := r.emailAlarmLinks.sync(ctx, q, r.gen, e.ID, ids); err != nil {
			return err
		}
	}
	return nil
}

// Patch applies the named fields of source to the events in keys; nil
// keys means every event. Primitive fields become column updates,
// relation fields merge source's collection into each target.
func (r *EventRepository) Patch(ctx context.Context, source *model.Event, fields []xcal.Field, keys []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.patchTx(ctx, tx, source, fields, keys))
}

func (r *EventRepository) patchTx(ctx context.Context, q dbtx, source *model.Event, fields []xcal.Field, keys []string) error {
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
		case model.FieldStart:
			start, duration := fmtPeriod(source.Span)
			cols = append(cols, "start", "duration")
			vals = append(vals, start, duration)
		case model.FieldClassification:
			cols = append(cols, "classification")
			vals = append(vals, string(source.Classification))
		case model.FieldDescription:
			cols = append(cols, "description")
			vals = append(vals, source.Description)
		case model.FieldGeo:
			cols = append(cols, "geo")
			vals = append(vals, fmtGeo(source.Geo))
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
		case model.FieldTransparency:
			cols = append(cols, "transparency")
			vals = append(vals, string(source.Transparency))
		case model.FieldURL:
			cols = append(cols, "url")
			vals = append(vals, source.URL)
		case model.FieldRecurrenceRule:
			cols = append(cols, "rrule")
			vals = append(vals, fmtRule(source.RecurrenceRule))
		case model.FieldCategories:
			cols = append(cols, "categories")
			vals = append(vals, fmtStrings(source.Categories))
		case model.FieldAttendees, model.FieldAttachBinaries, model.FieldAttachURIs,
			model.FieldComments, model.FieldContacts, model.FieldExceptionDates,
			model.FieldRecurrenceDates, model.FieldRelatedTos, model.FieldRequestStatuses,
			model.FieldResources, model.FieldAudioAlarms, model.FieldDisplayAlarms,
			model.FieldEmailAlarms:
			relations = append(relations, f)
		default:
			return fmt.Errorf("%w: field %q not patchable on events", xcal.ErrInvalidArgument, f)
		}
	}
	if err := r.events.updateColumns(ctx, q, cols, vals, keys); err != nil {
		return err
	}
	if len(relations) == 0 {
		return nil
	}
	if keys == nil {
		var err error
		if keys, err = r.events.allKeys(ctx, q); err != nil {
			return err
		}
	}
	for _, f := range relations {
		for _, key := range keys {
			var err error
			switch f {
			case model.FieldAttendees:
				err = saveChildren(ctx, q, r.gen, r.attendees, r.attendeeLinks, key, source.Attendees)
			case model.FieldAttachBinaries:
				err = saveChildren(ctx, q, r.gen, r.attachbins, r.attachbinLinks, key, source.AttachBinaries)
			case model.FieldAttachURIs:
				err = saveChildren(ctx, q, r.gen, r.attachuris, r.attachuriLinks, key, source.AttachURIs)
			case model.FieldComments:
				err = saveChildren(ctx, q, r.gen, r.comments, r.commentLinks, key, source.Comments)
			case model.FieldContacts:
				err = saveChildren(ctx, q, r.gen, r.contacts, r.contactLinks, key, source.Contacts)
			case model.FieldExceptionDates:
				err = saveChildren(ctx, q, r.gen, r.exdates, r.exdateLinks, key, source.ExceptionDates)
			case model.FieldRecurrenceDates:
				err = saveChildren(ctx, q, r.gen, r.rdates, r.rdateLinks, key, source.RecurrenceDates)
			case model.FieldRelatedTos:
				err = saveChildren(ctx, q, r.gen, r.relatedtos, r.relatedtoLinks, key, source.RelatedTos)
			case model.FieldRequestStatuses:
				err = saveChildren(ctx, q, r.gen, r.reqstats, r.reqstatLinks, key, source.RequestStatuses)
			case model.FieldResources:
				err = saveChildren(ctx, q, r.gen, r.resources, r.resourceLinks, key, source.Resources)
			case model.FieldAudioAlarms, model.FieldDisplayAlarms, model.FieldEmailAlarms:
				stub := &model.Event{ID: key,
					AudioAlarms:   source.AudioAlarms,
					DisplayAlarms: source.DisplayAlarms,
					EmailAlarms:   source.EmailAlarms}
				if f != model.FieldAudioAlarms {
					stub.AudioAlarms = nil
				}
				if f != model.FieldDisplayAlarms {
					stub.DisplayAlarms = nil
				}
				if f != model.FieldEmailAlarms {
					stub.EmailAlarms = nil
				}
				err = r.saveAlarms(ctx, q, stub)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Erase removes the event and its relation links in one transaction.
// Linked sub-entities stay; they may be shared.
func (r *EventRepository) Erase(ctx context.Context, key string) error {
	return r.EraseAll(ctx, []string{key})
}

// EraseAll removes the events in keys and their relation links; nil
// keys means everything.
func (r *EventRepository) EraseAll(ctx context.Context, keys []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.eraseTx(ctx, tx, keys))
}

func (r *EventRepository) eraseTx(ctx context.Context, q dbtx, keys []string) error {
	links := []linkTable{
		r.attendeeLinks, r.attachbinLinks, r.attachuriLinks, r.commentLinks,
		r.contactLinks, r.exdateLinks, r.rdateLinks, r.relatedtoLinks,
		r.reqstatLinks, r.resourceLinks, r.audioAlarmLinks, r.dispAlarmLinks,
		r.emailAlarmLinks,
	}
	for _, l := range links {
		if err := l.deleteByParents(ctx, q, keys); err != nil {
			return err
		}
	}
	return r.events.deleteKeys(ctx, q, keys)
}

// ContainsKey reports whether the key exists.
func (r *EventRepository) ContainsKey(ctx context.Context, key string) (bool, error) {
	n, err := r.events.countKeys(ctx, r.db, []string{key})
	return n == 1, err
}

// ContainsKeys evaluates the key set under the given expectation mode.
func (r *EventRepository) ContainsKeys(ctx context.Context, keys []string, mode xcal.ExpectationMode) (bool, error) {
	n, err := r.events.countKeys(ctx, r.db, keys)
	if err != nil {
		return false, err
	}
	return containsKeys(n, len(keys), mode), nil
}
