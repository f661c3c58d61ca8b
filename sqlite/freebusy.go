package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samgerene/xcal"
	"github.com/samgerene/xcal/model"
)

func freeBusyTable() table[*model.FreeBusy] {
	return table[*model.FreeBusy]{
		name: "freebusies",
		columns: []string{"id", "uid", "datestamp", "start", "duration",
			"organizer_name", "organizer_address", "url"},
		key:    func(f *model.FreeBusy) string { return f.ID },
		setKey: func(f *model.FreeBusy, id string) { f.ID = id },
		args: func(f *model.FreeBusy) []any {
			start, duration := fmtPeriod(f.Span)
			oname, oaddr := fmtOrganizer(f.Organizer)
			return []any{f.ID, f.UID, fmtDateTime(f.Datestamp), start, duration,
				oname, oaddr, f.URL}
		},
		scan: func(row rowScanner) (*model.FreeBusy, error) {
			var f model.FreeBusy
			var datestamp, start, duration, oname, oaddr string
			if err := row.Scan(&f.ID, &f.UID, &datestamp, &start, &duration,
				&oname, &oaddr, &f.URL); err != nil {
				return nil, err
			}
			var err error
			if f.Datestamp, err = scanDateTime(datestamp); err != nil {
				return nil, err
			}
			if f.Span, err = scanPeriod(start, duration); err != nil {
				return nil, err
			}
			f.Organizer = scanOrganizer(oname, oaddr)
			return &f, nil
		},
	}
}

// FreeBusyRepository stores free/busy blocks and their relation
// collections.
type FreeBusyRepository struct {
	db  *sql.DB
	gen xcal.KeyGenerator

	freebusies table[*model.FreeBusy]
	attendees  table[*model.Attendee]
	comments   table[*model.Comment]
	periods    table[*model.FreeBusyPeriod]

	attendeeLinks linkTable
	commentLinks  linkTable
	periodLinks   linkTable
}

// NewFreeBusyRepository returns a repository bound to the given
// database handle and key generator.
func NewFreeBusyRepository(db *sql.DB, gen xcal.KeyGenerator) *FreeBusyRepository {
	return &FreeBusyRepository{
		db:  db,
		gen: gen,

		freebusies: freeBusyTable(),
		attendees:  attendeeTable(),
		comments:   commentTable(),
		periods:    fbPeriodTable(),

		attendeeLinks: linkTable{name: "rel_freebusies_attendees"},
		commentLinks:  linkTable{name: "rel_freebusies_comments"},
		periodLinks:   linkTable{name: "rel_freebusies_periods"},
	}
}

// Find returns the hydrated block with the given key, or nil.
func (r *FreeBusyRepository) Find(ctx context.Context, key string) (*model.FreeBusy, error) {
	fb, ok, err := r.freebusies.selectOne(ctx, r.db, key)
	if err != nil || !ok {
		return nil, err
	}
	return fb, r.hydrateAll(ctx, r.db, []*model.FreeBusy{fb})
}

// FindAll returns the hydrated blocks whose keys are in keys.
func (r *FreeBusyRepository) FindAll(ctx context.Context, keys []string, skip, take int) ([]*model.FreeBusy, error) {
	fbs, err := r.freebusies.selectByKeys(ctx, r.db, keys, skip, take)
	if err != nil {
		return nil, err
	}
	return fbs, r.hydrateAll(ctx, r.db, fbs)
}

// Get returns every stored block, hydrated and ordered by id.
func (r *FreeBusyRepository) Get(ctx context.Context, skip, take int) ([]*model.FreeBusy, error) {
	fbs, err := r.freebusies.selectAll(ctx, r.db, skip, take)
	if err != nil {
		return nil, err
	}
	return fbs, r.hydrateAll(ctx, r.db, fbs)
}

// Hydrate attaches the block's relation collections.
func (r *FreeBusyRepository) Hydrate(ctx context.Context, dry *model.FreeBusy) (*model.FreeBusy, error) {
	if dry == nil {
		return nil, nil
	}
	return dry, r.hydrateAll(ctx, r.db, []*model.FreeBusy{dry})
}

// HydrateAll attaches relations for a batch.
func (r *FreeBusyRepository) HydrateAll(ctx context.Context, dry []*model.FreeBusy) ([]*model.FreeBusy, error) {
	return dry, r.hydrateAll(ctx, r.db, dry)
}

func (r *FreeBusyRepository) hydrateAll(ctx context.Context, q dbtx, fbs []*model.FreeBusy) error {
	if len(fbs) == 0 {
		return nil
	}
	ids := make([]string, len(fbs))
	for i, f := range fbs {
		ids[i] = f.ID
	}
	attendees, err := attach(ctx, q, r.attendeeLinks, r.attendees, ids)
	if err != nil {
		return err
	}
	comments, err := attach(ctx, q, r.commentLinks, r.comments, ids)
	if err != nil {
		return err
	}
	periods, err := attach(ctx, q, r.periodLinks, r.periods, ids)
	if err != nil {
		return err
	}
	for _, f := range fbs {
		f.Attendees = attendees[f.ID]
		f.Comments = comments[f.ID]
		f.Periods = periods[f.ID]
	}
	return nil
}

// Dehydrate clears the relation collections in place.
func (r *FreeBusyRepository) Dehydrate(full *model.FreeBusy) *model.FreeBusy {
	full.Attendees = nil
	full.Comments = nil
	full.Periods = nil
	return full
}

// DehydrateAll clears relations across a batch.
func (r *FreeBusyRepository) DehydrateAll(full []*model.FreeBusy) []*model.FreeBusy {
	for _, f := range full {
		r.Dehydrate(f)
	}
	return full
}

// Save upserts the block and its relation graph in one transaction.
func (r *FreeBusyRepository) Save(ctx context.Context, entity *model.FreeBusy) error {
	return r.SaveAll(ctx, []*model.FreeBusy{entity})
}

// SaveAll upserts a batch in one transaction.
func (r *FreeBusyRepository) SaveAll(ctx context.Context, entities []*model.FreeBusy) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.saveTx(ctx, tx, entities))
}

func (r *FreeBusyRepository) saveTx(ctx context.Context, q dbtx, entities []*model.FreeBusy) error {
	if len(entities) == 0 {
		return nil
	}
	for _, f := range entities {
		if f.ID == "" {
			f.ID = r.gen.NextKey()
		}
	}
	if err := r.freebusies.upsert(ctx, q, entities); err != nil {
		return err
	}
	for _, f := range entities {
		if err := saveChildren(ctx, q, r.gen, r.attendees, r.attendeeLinks, f.ID, f.Attendees); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.comments, r.commentLinks, f.ID, f.Comments); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.periods, r.periodLinks, f.ID, f.Periods); err != nil {
			return err
		}
	}
	return nil
}

// Patch applies the named fields of source to the blocks in keys; nil
// keys means every block.
func (r *FreeBusyRepository) Patch(ctx context.Context, source *model.FreeBusy, fields []xcal.Field, keys []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.patchTx(ctx, tx, source, fields, keys))
}

func (r *FreeBusyRepository) patchTx(ctx context.Context, q dbtx, source *model.FreeBusy, fields []xcal.Field, keys []string) error {
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
		case model.FieldStart:
			start, duration := fmtPeriod(source.Span)
			cols = append(cols, "start", "duration")
			vals = append(vals, start, duration)
		case model.FieldOrganizer:
			oname, oaddr := fmtOrganizer(source.Organizer)
			cols = append(cols, "organizer_name", "organizer_address")
			vals = append(vals, oname, oaddr)
		case model.FieldURL:
			cols = append(cols, "url")
			vals = append(vals, source.URL)
		case model.FieldAttendees, model.FieldComments:
			relations = append(relations, f)
		default:
			return fmt.Errorf("%w: field %q not patchable on free/busy blocks", xcal.ErrInvalidArgument, f)
		}
	}
	if err := r.freebusies.updateColumns(ctx, q, cols, vals, keys); err != nil {
		return err
	}
	if len(relations) == 0 {
		return nil
	}
	if keys == nil {
		var err error
		if keys, err = r.freebusies.allKeys(ctx, q); err != nil {
			return err
		}
	}
	for _, f := range relations {
		for _, key := range keys {
			var err error
			switch f {
			case model.FieldAttendees:
				err = saveChildren(ctx, q, r.gen, r.attendees, r.attendeeLinks, key, source.Attendees)
			case model.FieldComments:
				err = saveChildren(ctx, q, r.gen, r.comments, r.commentLinks, key, source.Comments)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Erase removes the block and its relation links in one transaction.
func (r *FreeBusyRepository) Erase(ctx context.Context, key string) error {
	return r.EraseAll(ctx, []string{key})
}

// EraseAll removes the blocks in keys and their relation links; nil
// keys means everything.
func (r *FreeBusyRepository) EraseAll(ctx context.Context, keys []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.eraseTx(ctx, tx, keys))
}

func (r *FreeBusyRepository) eraseTx(ctx context.Context, q dbtx, keys []string) error {
	for _, l := range []linkTable{r.attendeeLinks, r.commentLinks, r.periodLinks} {
		if err := l.deleteByParents(ctx, q, keys); err != nil {
			return err
		}
	}
	return r.freebusies.deleteKeys(ctx, q, keys)
}

// ContainsKey reports whether the key exists.
func (r *FreeBusyRepository) ContainsKey(ctx context.Context, key string) (bool, error) {
	n, err := r.freebusies.countKeys(ctx, r.db, []string{key})
	return n == 1, err
}

// ContainsKeys evaluates the key set under the given expectation mode.
func (r *FreeBusyRepository) ContainsKeys(ctx context.Context, keys []string, mode xcal.ExpectationMode) (bool, error) {
	n, err := r.freebusies.countKeys(ctx, r.db, keys)
	if err != nil {
		return false, err
	}
	return containsKeys(n, len(keys), mode), nil
}
