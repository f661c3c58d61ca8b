package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samgerene/xcal"
	"github.com/samgerene/xcal/model"
)

func audioAlarmTable() table[*model.AudioAlarm] {
	return table[*model.AudioAlarm]{
		name:    "audio_alarms",
		columns: []string{"id", "trigger_duration", "trigger_datetime", "trigger_related", "duration", "repeat"},
		key:     func(a *model.AudioAlarm) string { return a.ID },
		setKey:  func(a *model.AudioAlarm, id string) { a.ID = id },
		args: func(a *model.AudioAlarm) []any {
			td, tdt, tr := fmtTrigger(a.Trigger)
			return []any{a.ID, td, tdt, tr, fmtDuration(a.Duration), a.Repeat}
		},
		scan: func(row rowScanner) (*model.AudioAlarm, error) {
			var a model.AudioAlarm
			var td, tdt, tr, duration string
			if err := row.Scan(&a.ID, &td, &tdt, &tr, &duration, &a.Repeat); err != nil {
				return nil, err
			}
			var err error
			if a.Trigger, err = scanTrigger(td, tdt, tr); err != nil {
				return nil, err
			}
			if a.Duration, err = scanDuration(duration); err != nil {
				return nil, err
			}
			return &a, nil
		},
	}
}

func displayAlarmTable() table[*model.DisplayAlarm] {
	return table[*model.DisplayAlarm]{
		name:    "display_alarms",
		columns: []string{"id", "trigger_duration", "trigger_datetime", "trigger_related", "duration", "repeat", "description"},
		key:     func(a *model.DisplayAlarm) string { return a.ID },
		setKey:  func(a *model.DisplayAlarm, id string) { a.ID = id },
		args: func(a *model.DisplayAlarm) []any {
			td, tdt, tr := fmtTrigger(a.Trigger)
			return []any{a.ID, td, tdt, tr, fmtDuration(a.Duration), a.Repeat, a.Description}
		},
		scan: func(row rowScanner) (*model.DisplayAlarm, error) {
			var a model.DisplayAlarm
			var td, tdt, tr, duration string
			if err := row.Scan(&a.ID, &td, &tdt, &tr, &duration, &a.Repeat, &a.Description); err != nil {
				return nil, err
			}
			var err error
			if a.Trigger, err = scanTrigger(td, tdt, tr); err != nil {
				return nil, err
			}
			if a.Duration, err = scanDuration(duration); err != nil {
				return nil, err
			}
			return &a, nil
		},
	}
}

func emailAlarmTable() table[*model.EmailAlarm] {
	return table[*model.EmailAlarm]{
		name:    "email_alarms",
		columns: []string{"id", "trigger_duration", "trigger_datetime", "trigger_related", "duration", "repeat", "description", "summary"},
		key:     func(a *model.EmailAlarm) string { return a.ID },
		setKey:  func(a *model.EmailAlarm, id string) { a.ID = id },
		args: func(a *model.EmailAlarm) []any {
			td, tdt, tr := fmtTrigger(a.Trigger)
			return []any{a.ID, td, tdt, tr, fmtDuration(a.Duration), a.Repeat, a.Description, a.Summary}
		},
		scan: func(row rowScanner) (*model.EmailAlarm, error) {
			var a model.EmailAlarm
			var td, tdt, tr, duration string
			if err := row.Scan(&a.ID, &td, &tdt, &tr, &duration, &a.Repeat, &a.Description, &a.Summary); err != nil {
				return nil, err
			}
			var err error
			if a.Trigger, err = scanTrigger(td, tdt, tr); err != nil {
				return nil, err
			}
			if a.Duration, err = scanDuration(duration); err != nil {
				return nil, err
			}
			return &a, nil
		},
	}
}

// AudioAlarmRepository stores audio alarms and their single sound
// attachment, inline or by reference.
type AudioAlarmRepository struct {
	db  *sql.DB
	gen xcal.KeyGenerator

	alarms     table[*model.AudioAlarm]
	attachbins table[*model.AttachBinary]
	attachuris table[*model.AttachURI]
	binLinks   linkTable
	uriLinks   linkTable
}

// NewAudioAlarmRepository returns a repository bound to the given
// database handle and key generator.
func NewAudioAlarmRepository(db *sql.DB, gen xcal.KeyGenerator) *AudioAlarmRepository {
	return &AudioAlarmRepository{
		db:         db,
		gen:        gen,
		alarms:     audioAlarmTable(),
		attachbins: attachBinaryTable(),
		attachuris: attachURITable(),
		binLinks:   linkTable{name: "rel_aalarms_attachbins"},
		uriLinks:   linkTable{name: "rel_aalarms_attachuris"},
	}
}

// Find returns the hydrated alarm with the given key, or nil.
func (r *AudioAlarmRepository) Find(ctx context.Context, key string) (*model.AudioAlarm, error) {
	alarm, ok, err := r.alarms.selectOne(ctx, r.db, key)
	if err != nil || !ok {
		return nil, err
	}
	return alarm, r.hydrateAll(ctx, r.db, []*model.AudioAlarm{alarm})
}

// FindAll returns the hydrated alarms whose keys are in keys.
func (r *AudioAlarmRepository) FindAll(ctx context.Context, keys []string, skip, take int) ([]*model.AudioAlarm, error) {
	alarms, err := r.alarms.selectByKeys(ctx, r.db, keys, skip, take)
	if err != nil {
		return nil, err
	}
	return alarms, r.hydrateAll(ctx, r.db, alarms)
}

// Get returns every stored alarm, hydrated and ordered by id.
func (r *AudioAlarmRepository) Get(ctx context.Context, skip, take int) ([]*model.AudioAlarm, error) {
	alarms, err := r.alarms.selectAll(ctx, r.db, skip, take)
	if err != nil {
		return nil, err
	}
	return alarms, r.hydrateAll(ctx, r.db, alarms)
}

// Hydrate attaches the alarm's attachment relations.
func (r *AudioAlarmRepository) Hydrate(ctx context.Context, dry *model.AudioAlarm) (*model.AudioAlarm, error) {
	if dry == nil {
		return nil, nil
	}
	return dry, r.hydrateAll(ctx, r.db, []*model.AudioAlarm{dry})
}

// HydrateAll attaches relations for a batch with one link and one
// child query per collection.
func (r *AudioAlarmRepository) HydrateAll(ctx context.Context, dry []*model.AudioAlarm) ([]*model.AudioAlarm, error) {
	return dry, r.hydrateAll(ctx, r.db, dry)
}

func (r *AudioAlarmRepository) hydrateAll(ctx context.Context, q dbtx, alarms []*model.AudioAlarm) error {
	if len(alarms) == 0 {
		return nil
	}
	ids := make([]string, len(alarms))
	for i, a := range alarms {
		ids[i] = a.ID
	}
	bins, err := attach(ctx, q, r.binLinks, r.attachbins, ids)
	if err != nil {
		return err
	}
	uris, err := attach(ctx, q, r.uriLinks, r.attachuris, ids)
	if err != nil {
		return err
	}
	for _, a := range alarms {
		if list := bins[a.ID]; len(list) > 0 {
			a.AttachBinary = list[0]
		}
		if list := uris[a.ID]; len(list) > 0 {
			a.AttachURI = list[0]
		}
	}
	return nil
}

// Dehydrate clears the attachment relations in place.
func (r *AudioAlarmRepository) Dehydrate(full *model.AudioAlarm) *model.AudioAlarm {
	full.AttachBinary = nil
	full.AttachURI = nil
	return full
}

// DehydrateAll clears relations across a batch.
func (r *AudioAlarmRepository) DehydrateAll(full []*model.AudioAlarm) []*model.AudioAlarm {
	for _, a := range full {
		r.Dehydrate(a)
	}
	return full
}

// Save upserts the alarm, its attachment and the relation link in one
// transaction.
func (r *AudioAlarmRepository) Save(ctx context.Context, entity *model.AudioAlarm) error {
	return r.SaveAll(ctx, []*model.AudioAlarm{entity})
}

// SaveAll upserts a batch in one transaction.
func (r *AudioAlarmRepository) SaveAll(ctx context.Context, entities []*model.AudioAlarm) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.saveTx(ctx, tx, entities))
}

func (r *AudioAlarmRepository) saveTx(ctx context.Context, q dbtx, entities []*model.AudioAlarm) error {
	if len(entities) == 0 {
		return nil
	}
	if err := r.alarms.upsert(ctx, q, entities); err != nil {
		return err
	}
	for _, a := range entities {
		if a.AttachBinary != nil {
			if a.AttachBinary.ID == "" {
				a.AttachBinary.ID = r.gen.NextKey()
			}
			if err := r.attachbins.upsert(ctx, q, []*model.AttachBinary{a.AttachBinary}); err != nil {
				return err
			}
			if err := r.binLinks.sync(ctx, q, r.gen, a.ID, []string{a.AttachBinary.ID}); err != nil {
				return err
			}
		}
		if a.AttachURI != nil {
			if a.AttachURI.ID == "" {
				a.AttachURI.ID = r.gen.NextKey()
			}
			if err := r.attachuris.upsert(ctx, q, []*model.AttachURI{a.AttachURI}); err != nil {
				return err
			}
			if err := r.uriLinks.sync(ctx, q, r.gen, a.ID, []string{a.AttachURI.ID}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Patch applies the named fields of source to the alarms in keys; nil
// keys means every alarm.
func (r *AudioAlarmRepository) Patch(ctx context.Context, source *model.AudioAlarm, fields []xcal.Field, keys []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.patchTx(ctx, tx, source, fields, keys))
}

func (r *AudioAlarmRepository) patchTx(ctx context.Context, q dbtx, source *model.AudioAlarm, fields []xcal.Field, keys []string) error {
	var cols []string
	var vals []any
	var relations []xcal.Field
	for _, f := range fields {
		switch f {
		case model.FieldTrigger:
			td, tdt, tr := fmtTrigger(source.Trigger)
			cols = append(cols, "trigger_duration", "trigger_datetime", "trigger_related")
			vals = append(vals, td, tdt, tr)
		case model.FieldDuration:
			cols = append(cols, "duration")
			vals = append(vals, fmtDuration(source.Duration))
		case model.FieldRepeat:
			cols = append(cols, "repeat")
			vals = append(vals, source.Repeat)
		case model.FieldAttachBinaries, model.FieldAttachURIs:
			relations = append(relations, f)
		default:
			return fmt.Errorf("%w: field %q not patchable on audio alarms", xcal.ErrInvalidArgument, f)
		}
	}
	if err := r.alarms.updateColumns(ctx, q, cols, vals, keys); err != nil {
		return err
	}
	if len(relations) == 0 {
		return nil
	}
	if keys == nil {
		var err error
		if keys, err = r.alarms.allKeys(ctx, q); err != nil {
			return err
		}
	}
	for _, f := range relations {
		switch f {
		case model.FieldAttachBinaries:
			if source.AttachBinary == nil {
				continue
			}
			if err := r.attachbins.upsert(ctx, q, []*model.AttachBinary{source.AttachBinary}); err != nil {
				return err
			}
			for _, key := range keys {
				if err := r.binLinks.sync(ctx, q, r.gen, key, []string{source.AttachBinary.ID}); err != nil {
					return err
				}
			}
		case model.FieldAttachURIs:
			if source.AttachURI == nil {
				continue
			}
			if err := r.attachuris.upsert(ctx, q, []*model.AttachURI{source.AttachURI}); err != nil {
				return err
			}
			for _, key := range keys {
				if err := r.uriLinks.sync(ctx, q, r.gen, key, []string{source.AttachURI.ID}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Erase removes the alarm and its relation links in one transaction.
func (r *AudioAlarmRepository) Erase(ctx context.Context, key string) error {
	return r.EraseAll(ctx, []string{key})
}

// EraseAll removes the alarms in keys and their relation links; nil
// keys means everything.
func (r *AudioAlarmRepository) EraseAll(ctx context.Context, keys []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.eraseTx(ctx, tx, keys))
}

func (r *AudioAlarmRepository) eraseTx(ctx context.Context, q dbtx, keys []string) error {
	if err := r.binLinks.deleteByParents(ctx, q, keys); err != nil {
		return err
	}
	if err := r.uriLinks.deleteByParents(ctx, q, keys); err != nil {
		return err
	}
	return r.alarms.deleteKeys(ctx, q, keys)
}

// ContainsKey reports whether the key exists.
func (r *AudioAlarmRepository) ContainsKey(ctx context.Context, key string) (bool, error) {
	n, err := r.alarms.countKeys(ctx, r.db, []string{key})
	return n == 1, err
}

// ContainsKeys evaluates the key set under the given expectation mode.
func (r *AudioAlarmRepository) ContainsKeys(ctx context.Context, keys []string, mode xcal.ExpectationMode) (bool, error) {
	n, err := r.alarms.countKeys(ctx, r.db, keys)
	if err != nil {
		return false, err
	}
	return containsKeys(n, len(keys), mode), nil
}

// DisplayAlarmRepository stores display alarms, which carry no
// relations; hydration is the identity.
type DisplayAlarmRepository struct {
	db     *sql.DB
	alarms table[*model.DisplayAlarm]
}

// NewDisplayAlarmRepository returns a repository bound to the given
// database handle.
func NewDisplayAlarmRepository(db *sql.DB) *DisplayAlarmRepository {
	return &DisplayAlarmRepository{db: db, alarms: displayAlarmTable()}
}

// Find returns the alarm with the given key, or nil.
func (r *DisplayAlarmRepository) Find(ctx context.Context, key string) (*model.DisplayAlarm, error) {
	alarm, _, err := r.alarms.selectOne(ctx, r.db, key)
	return alarm, err
}

// FindAll returns the alarms whose keys are in keys, ordered by id.
func (r *DisplayAlarmRepository) FindAll(ctx context.Context, keys []string, skip, take int) ([]*model.DisplayAlarm, error) {
	return r.alarms.selectByKeys(ctx, r.db, keys, skip, take)
}

// Get returns every stored alarm, ordered by id.
func (r *DisplayAlarmRepository) Get(ctx context.Context, skip, take int) ([]*model.DisplayAlarm, error) {
	return r.alarms.selectAll(ctx, r.db, skip, take)
}

// Save upserts one alarm.
func (r *DisplayAlarmRepository) Save(ctx context.Context, entity *model.DisplayAlarm) error {
	return r.alarms.upsert(ctx, r.db, []*model.DisplayAlarm{entity})
}

// SaveAll upserts a batch.
func (r *DisplayAlarmRepository) SaveAll(ctx context.Context, entities []*model.DisplayAlarm) error {
	return r.alarms.upsert(ctx, r.db, entities)
}

// Patch applies the named fields of source to the alarms in keys; nil
// keys means every alarm.
func (r *DisplayAlarmRepository) Patch(ctx context.Context, source *model.DisplayAlarm, fields []xcal.Field, keys []string) error {
	var cols []string
	var vals []any
	for _, f := range fields {
		switch f {
		case model.FieldTrigger:
			td, tdt, tr := fmtTrigger(source.Trigger)
			cols = append(cols, "trigger_duration", "trigger_datetime", "trigger_related")
			vals = append(vals, td, tdt, tr)
		case model.FieldDuration:
			cols = append(cols, "duration")
			vals = append(vals, fmtDuration(source.Duration))
		case model.FieldRepeat:
			cols = append(cols, "repeat")
			vals = append(vals, source.Repeat)
		case model.FieldDescription:
			cols = append(cols, "description")
			vals = append(vals, source.Description)
		default:
			return fmt.Errorf("%w: field %q not patchable on display alarms", xcal.ErrInvalidArgument, f)
		}
	}
	return r.alarms.updateColumns(ctx, r.db, cols, vals, keys)
}

// Erase removes one alarm.
func (r *DisplayAlarmRepository) Erase(ctx context.Context, key string) error {
	return r.alarms.deleteKeys(ctx, r.db, []string{key})
}

// EraseAll removes the alarms in keys; nil keys means everything.
func (r *DisplayAlarmRepository) EraseAll(ctx context.Context, keys []string) error {
	return r.alarms.deleteKeys(ctx, r.db, keys)
}

// ContainsKey reports whether the key exists.
func (r *DisplayAlarmRepository) ContainsKey(ctx context.Context, key string) (bool, error) {
	n, err := r.alarms.countKeys(ctx, r.db, []string{key})
	return n == 1, err
}

// ContainsKeys evaluates the key set under the given expectation mode.
func (r *DisplayAlarmRepository) ContainsKeys(ctx context.Context, keys []string, mode xcal.ExpectationMode) (bool, error) {
	n, err := r.alarms.countKeys(ctx, r.db, keys)
	if err != nil {
		return false, err
	}
	return containsKeys(n, len(keys), mode), nil
}

// EmailAlarmRepository stores email alarms with their recipients and
// attachments.
type EmailAlarmRepository struct {
	db  *sql.DB
	gen xcal.KeyGenerator

	alarms        table[*model.EmailAlarm]
	attendees     table[*model.Attendee]
	attachbins    table[*model.AttachBinary]
	attachuris    table[*model.AttachURI]
	attendeeLinks linkTable
	binLinks      linkTable
	uriLinks      linkTable
}

// NewEmailAlarmRepository returns a repository bound to the given
// database handle and key generator.
func NewEmailAlarmRepository(db *sql.DB, gen xcal.KeyGenerator) *EmailAlarmRepository {
	return &EmailAlarmRepository{
		db:            db,
		gen:           gen,
		alarms:        emailAlarmTable(),
		attendees:     attendeeTable(),
		attachbins:    attachBinaryTable(),
		attachuris:    attachURITable(),
		attendeeLinks: linkTable{name: "rel_ealarms_attendees"},
		binLinks:      linkTable{name: "rel_ealarms_attachbins"},
		uriLinks:      linkTable{name: "rel_ealarms_attachuris"},
	}
}

// Find returns the hydrated alarm with the given key, or nil.
func (r *EmailAlarmRepository) Find(ctx context.Context, key string) (*model.EmailAlarm, error) {
	alarm, ok, err := r.alarms.selectOne(ctx, r.db, key)
	if err != nil || !ok {
		return nil, err
	}
	return alarm, r.hydrateAll(ctx, r.db, []*model.EmailAlarm{alarm})
}

// FindAll returns the hydrated alarms whose keys are in keys.
func (r *EmailAlarmRepository) FindAll(ctx context.Context, keys []string, skip, take int) ([]*model.EmailAlarm, error) {
	alarms, err := r.alarms.selectByKeys(ctx, r.db, keys, skip, take)
	if err != nil {
		return nil, err
	}
	return alarms, r.hydrateAll(ctx, r.db, alarms)
}

// Get returns every stored alarm, hydrated and ordered by id.
func (r *EmailAlarmRepository) Get(ctx context.Context, skip, take int) ([]*model.EmailAlarm, error) {
	alarms, err := r.alarms.selectAll(ctx, r.db, skip, take)
	if err != nil {
		return nil, err
	}
	return alarms, r.hydrateAll(ctx, r.db, alarms)
}

// Hydrate attaches the alarm's relations.
func (r *EmailAlarmRepository) Hydrate(ctx context.Context, dry *model.EmailAlarm) (*model.EmailAlarm, error) {
	if dry == nil {
		return nil, nil
	}
	return dry, r.hydrateAll(ctx, r.db, []*model.EmailAlarm{dry})
}

// HydrateAll attaches relations for a batch with one link and one
// child query per collection.
func (r *EmailAlarmRepository) HydrateAll(ctx context.Context, dry []*model.EmailAlarm) ([]*model.EmailAlarm, error) {
	return dry, r.hydrateAll(ctx, r.db, dry)
}

func (r *EmailAlarmRepository) hydrateAll(ctx context.Context, q dbtx, alarms []*model.EmailAlarm) error {
	if len(alarms) == 0 {
		return nil
	}
	ids := make([]string, len(alarms))
	for i, a := range alarms {
		ids[i] = a.ID
	}
	attendees, err := attach(ctx, q, r.attendeeLinks, r.attendees, ids)
	if err != nil {
		return err
	}
	bins, err := attach(ctx, q, r.binLinks, r.attachbins, ids)
	if err != nil {
		return err
	}
	uris, err := attach(ctx, q, r.uriLinks, r.attachuris, ids)
	if err != nil {
		return err
	}
	for _, a := range alarms {
		a.Attendees = attendees[a.ID]
		a.AttachBinaries = bins[a.ID]
		a.AttachURIs = uris[a.ID]
	}
	return nil
}

// Dehydrate clears the relations in place.
func (r *EmailAlarmRepository) Dehydrate(full *model.EmailAlarm) *model.EmailAlarm {
	full.Attendees = nil
	full.AttachBinaries = nil
	full.AttachURIs = nil
	return full
}

// DehydrateAll clears relations across a batch.
func (r *EmailAlarmRepository) DehydrateAll(full []*model.EmailAlarm) []*model.EmailAlarm {
	for _, a := range full {
		r.Dehydrate(a)
	}
	return full
}

// Save upserts the alarm and its relations in one transaction.
func (r *EmailAlarmRepository) Save(ctx context.Context, entity *model.EmailAlarm) error {
	return r.SaveAll(ctx, []*model.EmailAlarm{entity})
}

// SaveAll upserts a batch in one transaction.
func (r *EmailAlarmRepository) SaveAll(ctx context.Context, entities []*model.EmailAlarm) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.saveTx(ctx, tx, entities))
}

func (r *EmailAlarmRepository) saveTx(ctx context.Context, q dbtx, entities []*model.EmailAlarm) error {
	if len(entities) == 0 {
		return nil
	}
	if err := r.alarms.upsert(ctx, q, entities); err != nil {
		return err
	}
	for _, a := range entities {
		if err := saveChildren(ctx, q, r.gen, r.attendees, r.attendeeLinks, a.ID, a.Attendees); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.attachbins, r.binLinks, a.ID, a.AttachBinaries); err != nil {
			return err
		}
		if err := saveChildren(ctx, q, r.gen, r.attachuris, r.uriLinks, a.ID, a.AttachURIs); err != nil {
			return err
		}
	}
	return nil
}

// Patch applies the named fields of source to the alarms in keys; nil
// keys means every alarm.
func (r *EmailAlarmRepository) Patch(ctx context.Context, source *model.EmailAlarm, fields []xcal.Field, keys []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.patchTx(ctx, tx, source, fields, keys))
}

func (r *EmailAlarmRepository) patchTx(ctx context.Context, q dbtx, source *model.EmailAlarm, fields []xcal.Field, keys []string) error {
	var cols []string
	var vals []any
	var relations []xcal.Field
	for _, f := range fields {
		switch f {
		case model.FieldTrigger:
			td, tdt, tr := fmtTrigger(source.Trigger)
			cols = append(cols, "trigger_duration", "trigger_datetime", "trigger_related")
			vals = append(vals, td, tdt, tr)
		case model.FieldDuration:
			cols = append(cols, "duration")
			vals = append(vals, fmtDuration(source.Duration))
		case model.FieldRepeat:
			cols = append(cols, "repeat")
			vals = append(vals, source.Repeat)
		case model.FieldDescription:
			cols = append(cols, "description")
			vals = append(vals, source.Description)
		case model.FieldSummary:
			cols = append(cols, "summary")
			vals = append(vals, source.Summary)
		case model.FieldAttendees, model.FieldAttachBinaries, model.FieldAttachURIs:
			relations = append(relations, f)
		default:
			return fmt.Errorf("%w: field %q not patchable on email alarms", xcal.ErrInvalidArgument, f)
		}
	}
	if err := r.alarms.updateColumns(ctx, q, cols, vals, keys); err != nil {
		return err
	}
	if len(relations) == 0 {
		return nil
	}
	if keys == nil {
		var err error
		if keys, err = r.alarms.allKeys(ctx, q); err != nil {
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
				err = saveChildren(ctx, q, r.gen, r.attachbins, r.binLinks, key, source.AttachBinaries)
			case model.FieldAttachURIs:
				err = saveChildren(ctx, q, r.gen, r.attachuris, r.uriLinks, key, source.AttachURIs)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Erase removes the alarm and its relation links in one transaction.
func (r *EmailAlarmRepository) Erase(ctx context.Context, key string) error {
	return r.EraseAll(ctx, []string{key})
}

// EraseAll removes the alarms in keys and their relation links; nil
// keys means everything.
func (r *EmailAlarmRepository) EraseAll(ctx context.Context, keys []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.eraseTx(ctx, tx, keys))
}

func (r *EmailAlarmRepository) eraseTx(ctx context.Context, q dbtx, keys []string) error {
	for _, l := range []linkTable{r.attendeeLinks, r.binLinks, r.uriLinks} {
		if err := l.deleteByParents(ctx, q, keys); err != nil {
			return err
		}
	}
	return r.alarms.deleteKeys(ctx, q, keys)
}

// ContainsKey reports whether the key exists.
func (r *EmailAlarmRepository) ContainsKey(ctx context.Context, key string) (bool, error) {
	n, err := r.alarms.countKeys(ctx, r.db, []string{key})
	return n == 1, err
}

// ContainsKeys evaluates the key set under the given expectation mode.
func (r *EmailAlarmRepository) ContainsKeys(ctx context.Context, keys []string, mode xcal.ExpectationMode) (bool, error) {
	n, err := r.alarms.countKeys(ctx, r.db, keys)
	if err != nil {
		return false, err
	}
	return containsKeys(n, len(keys), mode), nil
}
