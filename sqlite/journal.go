package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samgerene/xcal"
	"github.com/samgerene/xcal/model"
)

func journalTable() table[*model.Journal] {
	return table[*model.Journal]{
		name: "journals",
		columns: []string{"id", "uid", "datestamp", "created", "last_modified", "start",
			"classification", "description", "organizer_name", "organizer_address",
			"sequence", "status", "summary", "url", "rrule", "rid_id", "rid_range",
			"rid_value", "categories"},
		key:    func(j *model.Journal) string { return j.ID },
		setKey: func(j *model.Journal, id string) { j.ID = id },
		args: func(j *model.Journal) []any {
			oname, oaddr := fmtOrganizer(j.Organizer)
			ridID, ridRange, ridValue := fmtRecurrenceID(j.RecurrenceID)
			return []any{j.ID, j.UID, fmtDateTime(j.Datestamp), fmtDateTime(j.Created),
				fmtDateTime(j.LastModified), fmtDateTime(j.Start),
				string(j.Classification), j.Description, oname, oaddr, j.Sequence,
				string(j.Status), j.Summary, j.URL, fmtRule(j.RecurrenceRule),
				ridID, ridRange, ridValue, fmtStrings(j.Categories)}
		},
		scan: func(row rowScanner) (*model.Journal, error) {
			var j model.Journal
			var datestamp, created, modified, start string
			var classification, oname, oaddr, status string
			var rrule, ridID, ridRange, ridValue, categories string
			if err := row.Scan(&j.ID, &j.UID, &datestamp, &created, &modified, &start,
				&classification, &j.Description, &oname, &oaddr, &j.Sequence,
				&status, &j.Summary, &j.URL, &rrule, &ridID, &ridRange, &ridValue,
				&categories); err != nil {
				return nil, err
			}
			var err error
			if j.Datestamp, err = scanDateTime(datestamp); err != nil {
				return nil, err
			}
			if j.Created, err = scanDateTime(created); err != nil {
				return nil, err
			}
			if j.LastModified, err = scanDateTime(modified); err != nil {
				return nil, err
			}
			if j.Start, err = scanDateTime(start); err != nil {
				return nil, err
			}
			j.Classification = model.Classification(classification)
			j.Organizer = scanOrganizer(oname, oaddr)
			j.Status = model.Status(status)
			if j.RecurrenceRule, err = scanRule(rrule); err != nil {
				return nil, err
			}
			if j.RecurrenceID, err = scanRecurrenceID(ridID, ridRange, ridValue); err != nil {
				return nil, err
			}
			j.Categories = scanStrings(categories)
			return &j, nil
		},
	}
}

// JournalRepository stores journals and their relation collections.
type JournalRepository struct {
	db  *sql.DB
	gen xcal.KeyGenerator

	journals   table[*model.Journal]
	attendees  table[*model.Attendee]
	attachuris table[*model.AttachURI]
	comments   table[*model.Comment]
	exdates    table[*model.ExceptionDates]
	rdates     table[*model.RecurrenceDates]
	relatedtos table[*model.RelatedTo]

	attendeeLinks  linkTable
	attachuriLinks linkTable
	commentLinks   linkTable
	exdateLinks    linkTable
	rdateLinks     linkTable
	relatedtoLinks linkTable
}

// NewJournalRepository returns a repository bound to the given database
// handle and key generator.
func NewJournalRepository(db *sql.DB, gen xcal.KeyGenerator) *JournalRepository {
	return &JournalRepository{
		db:  db,
		gen: gen,

		journals:   journalTable(),
		attendees:  attendeeTable(),
		attachuris: attachURITable(),
		comments:   commentTable(),
		exdates:    exceptionDatesTable(),
		rdates:     recurrenceDatesTable(),
		relatedtos: relatedToTable(),

		attendeeLinks:  linkTable{name: "rel_journals_attendees"},
		attachuriLinks: linkTable{name: "rel_journals_attachuris"},
		commentLinks:   linkTable{name: "rel_journals_comments"},
		exdateLinks:    linkTable{name: "rel_journals_exdates"},
		rdateLinks:     linkTable{name: "rel_journals_rdates"},
		relatedtoLinks: linkTable{name: "rel_journals_relatedtos"},
	}
}

// Find returns the hydrated journal with the given key, or nil.
func (r *JournalRepository) Find(ctx context.Context, key string) (*model.Journal, error) {
	journal, ok, err := r.journals.selectOne(ctx, r.db, key)
	if err != nil || !ok {
		return nil, err
	}
	return journal, r.hydrateAll(ctx, r.db, []*model.Journal{journal})
}

// FindAll returns the hydrated journals whose keys are in keys.
func (r *JournalRepository) FindAll(ctx context.Context, keys []string, skip, take int) ([]*model.Journal, error) {
	journals, err := r.journals.selectByKeys(ctx, r.db, keys, skip, take)
	if err != nil {
		return nil, err
	}
	return journals, r.hydrateAll(ctx, r.db, journals)
}

// Get returns every stored journal, hydrated and ordered by id.
func (r *JournalRepository) Get(ctx context.Context, skip, take int) ([]*model.Journal, error) {
	journals, err := r.journals.selectAll(ctx, r.db, skip, take)
	if err != nil {
		return nil, err
	}
	return journals, r.hydrateAll(ctx, r.db, journals)
}

// Hydrate attaches the journal's relation collections.
func (r *JournalRepository) Hydrate(ctx context.Context, dry *model.Journal) (*model.Journal, error) {
	if dry == nil {
		return nil, nil
	}
	return dry, r.hydrateAll(ctx, r.db, []*model.Journal{dry})
}

// HydrateAll attaches relations for a batch.
func (r *JournalRepository) HydrateAll(ctx context.Context, dry []*model.Journal) ([]*model.Journal, error) {
	return dry, r.hydrateAll(ctx, r.db, dry)
}

func (r *JournalRepository) hydrateAll(ctx context.Context, q dbtx, journals []*model.Journal) error {
	if len(journals) == 0 {
		return nil
	}
	ids := make([]string, len(journals))
	for i, j := range journals {
		ids[i] = j.ID
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
	for _, j := range journals {
		j.Attendees = attendees[j.ID]
		j.AttachURIs = uris[j.ID]
		j.Comments = comments[j.ID]
		j.ExceptionDates = exdates[j.ID]
		j.RecurrenceDates = rdates[j.ID]
		j.RelatedTos = relatedtos[j.ID]
	}
	return nil
}

// Dehydrate clears the relation collections in place.
func (r *JournalRepository) Dehydrate(full *model.Journal) *model.Journal {
	full.Attendees = nil
	full.AttachURIs = nil
	full.Comments = nil
	full.ExceptionDates = nil
	full.RecurrenceDates = nil
	full.RelatedTos = nil
	return full
}

// DehydrateAll clears relations across a batch.
func (r *JournalRepository) DehydrateAll(full []*model.Journal) []*model.Journal {
	for _, j := range full {
		r.Dehydrate(j)
	}
	return full
}

// Save upserts the journal and its relation graph in one transaction.
func (r *JournalRepository) Save(ctx context.Context, entity *model.Journal) error {
	return r.SaveAll(ctx, []*model.Journal{entity})
}

// SaveAll upserts a batch in one transaction.
func (r *JournalRepository) SaveAll(ctx context.Context, entities []*model.Journal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.saveTx(ctx, tx, entities))
}

func (r *JournalRepository) saveTx(ctx context.Context, q dbtx, entities []*model.Journal) error {
	if len(entities) == 0 {
		return nil
	}
	for _, j := range entities {
		if j.ID == "" {
			j.ID = r.gen.NextKey()
		}
	}
	if err := r.journals.upsert(ctx, q, entities); err != nil {
		return err
	}
	for _, j := range entities {
		if err := saveChildren(ctx, q, r.gen, r.attendees, r.attendeeLinks, j.ID, j.Attendees); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.attachuris, r.attachuriLinks, j.ID, j.AttachURIs); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.comments, r.commentLinks, j.ID, j.Comments); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.exdates, r.exdateLinks, j.ID, j.ExceptionDates); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.rdates, r.rdateLinks, j.ID, j.RecurrenceDates); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.relatedtos, r.relatedtoLinks, j.ID, j.RelatedTos); err != nil {
			return err
		}
	}
	return nil
}

// Patch applies the named fields of source to the journals in keys; nil
// keys means every journal.
func (r *JournalRepository) Patch(ctx context.Context, source *model.Journal, fields []xcal.Field, keys []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.patchTx(ctx, tx, source, fields, keys))
}

func (r *JournalRepository) patchTx(ctx context.Context, q dbtx, source *model.Journal, fields []xcal.Field, keys []string) error {
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
			cols = append(cols, "start")
			vals = append(vals, fmtDateTime(source.Start))
		case model.FieldClassification:
			cols = append(cols, "classification")
			vals = append(vals, string(source.Classification))
		case model.FieldDescription:
			cols = append(cols, "description")
			vals = append(vals, source.Description)
		case model.FieldOrganizer:
			oname, oaddr := fmtOrganizer(source.Organizer)
			cols = append(cols, "organizer_name", "organizer_address")
			vals = append(vals, oname, oaddr)
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
			model.FieldExceptionDates, model.FieldRecurrenceDates, model.FieldRelatedTos:
			relations = append(relations, f)
		default:
			return fmt.Errorf("%w: field %q not patchable on journals", xcal.ErrInvalidArgument, f)
		}
	}
	if err := r.journals.updateColumns(ctx, q, cols, vals, keys); err != nil {
		return err
	}
	if len(relations) == 0 {
		return nil
	}
	if keys == nil {
		var err error
		if keys, err = r.journals.allKeys(ctx, q); err != nil {
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
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Erase removes the journal and its relation links in one transaction.
func (r *JournalRepository) Erase(ctx context.Context, key string) error {
	return r.EraseAll(ctx, []string{key})
}

// EraseAll removes the journals in keys and their relation links; nil
// keys means everything.
func (r *JournalRepository) EraseAll(ctx context.Context, keys []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.eraseTx(ctx, tx, keys))
}

func (r *JournalRepository) eraseTx(ctx context.Context, q dbtx, keys []string) error {
	links := []linkTable{
		r.attendeeLinks, r.attachuriLinks, r.commentLinks, r.exdateLinks,
		r.rdateLinks, r.relatedtoLinks,
	}
	for _, l := range links {
		if err := l.deleteByParents(ctx, q, keys); err != nil {
			return err
		}
	}
	return r.journals.deleteKeys(ctx, q, keys)
}

// ContainsKey reports whether the key exists.
func (r *JournalRepository) ContainsKey(ctx context.Context, key string) (bool, error) {
	n, err := r.journals.countKeys(ctx, r.db, []string{key})
	return n == 1, err
}

// ContainsKeys evaluates the key set under the given expectation mode.
func (r *JournalRepository) ContainsKeys(ctx context.Context, keys []string, mode xcal.ExpectationMode) (bool, error) {
	n, err := r.journals.countKeys(ctx, r.db, keys)
	if err != nil {
		return false, err
	}
	return containsKeys(n, len(keys), mode), nil
}
