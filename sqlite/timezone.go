package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samgerene/xcal"
	"github.com/samgerene/xcal/model"
	"github.com/samgerene/xcal/values"
)

func timeZoneTable() table[*model.TimeZone] {
	return table[*model.TimeZone]{
		name:    "timezones",
		columns: []string{"id", "tzid", "last_modified", "url"},
		key:     func(z *model.TimeZone) string { return z.ID },
		setKey:  func(z *model.TimeZone, id string) { z.ID = id },
		args: func(z *model.TimeZone) []any {
			return []any{z.ID, string(z.TZID), fmtDateTime(z.LastModified), z.URL}
		},
		scan: func(row rowScanner) (*model.TimeZone, error) {
			var z model.TimeZone
			var tzid, modified string
			if err := row.Scan(&z.ID, &tzid, &modified, &z.URL); err != nil {
				return nil, err
			}
			z.TZID = values.TZID(tzid)
			var err error
			if z.LastModified, err = scanDateTime(modified); err != nil {
				return nil, err
			}
			return &z, nil
		},
	}
}

// TimeZoneRepository stores zone definitions and their observances.
type TimeZoneRepository struct {
	db  *sql.DB
	gen xcal.KeyGenerator

	timezones       table[*model.TimeZone]
	observances     table[*model.Observance]
	observanceLinks linkTable
}

// NewTimeZoneRepository returns a repository bound to the given
// database handle and key generator.
func NewTimeZoneRepository(db *sql.DB, gen xcal.KeyGenerator) *TimeZoneRepository {
	return &TimeZoneRepository{
		db:              db,
		gen:             gen,
		timezones:       timeZoneTable(),
		observances:     observanceTable(),
		observanceLinks: linkTable{name: "rel_timezones_observances"},
	}
}

// Find returns the hydrated zone with the given key, or nil.
func (r *TimeZoneRepository) Find(ctx context.Context, key string) (*model.TimeZone, error) {
	zone, ok, err := r.timezones.selectOne(ctx, r.db, key)
	if err != nil || !ok {
		return nil, err
	}
	return zone, r.hydrateAll(ctx, r.db, []*model.TimeZone{zone})
}

// FindAll returns the hydrated zones whose keys are in keys.
func (r *TimeZoneRepository) FindAll(ctx context.Context, keys []string, skip, take int) ([]*model.TimeZone, error) {
	zones, err := r.timezones.selectByKeys(ctx, r.db, keys, skip, take)
	if err != nil {
		return nil, err
	}
	return zones, r.hydrateAll(ctx, r.db, zones)
}

// Get returns every stored zone, hydrated and ordered by id.
func (r *TimeZoneRepository) Get(ctx context.Context, skip, take int) ([]*model.TimeZone, error) {
	zones, err := r.timezones.selectAll(ctx, r.db, skip, take)
	if err != nil {
		return nil, err
	}
	return zones, r.hydrateAll(ctx, r.db, zones)
}

// Hydrate attaches the zone's observances.
func (r *TimeZoneRepository) Hydrate(ctx context.Context, dry *model.TimeZone) (*model.TimeZone, error) {
	if dry == nil {
		return nil, nil
	}
	return dry, r.hydrateAll(ctx, r.db, []*model.TimeZone{dry})
}

// HydrateAll attaches observances for a batch.
func (r *TimeZoneRepository) HydrateAll(ctx context.Context, dry []*model.TimeZone) ([]*model.TimeZone, error) {
	return dry, r.hydrateAll(ctx, r.db, dry)
}

func (r *TimeZoneRepository) hydrateAll(ctx context.Context, q dbtx, zones []*model.TimeZone) error {
	if len(zones) == 0 {
		return nil
	}
	ids := make([]string, len(zones))
	for i, z := range zones {
		ids[i] = z.ID
	}
	observances, err := attach(ctx, q, r.observanceLinks, r.observances, ids)
	if err != nil {
		return err
	}
	for _, z := range zones {
		z.Observances = observances[z.ID]
	}
	return nil
}

// Dehydrate clears the observances in place.
func (r *TimeZoneRepository) Dehydrate(full *model.TimeZone) *model.TimeZone {
	full.Observances = nil
	return full
}

// DehydrateAll clears observances across a batch.
func (r *TimeZoneRepository) DehydrateAll(full []*model.TimeZone) []*model.TimeZone {
	for _, z := range full {
		r.Dehydrate(z)
	}
	return full
}

// Save upserts the zone and its observances in one transaction.
func (r *TimeZoneRepository) Save(ctx context.Context, entity *model.TimeZone) error {
	return r.SaveAll(ctx, []*model.TimeZone{entity})
}

// SaveAll upserts a batch in one transaction.
func (r *TimeZoneRepository) SaveAll(ctx context.Context, entities []*model.TimeZone) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.saveTx(ctx, tx, entities))
}

func (r *TimeZoneRepository) saveTx(ctx context.Context, q dbtx, entities []*model.TimeZone) error {
	if len(entities) == 0 {
		return nil
	}
	for _, z := range entities {
		if z.ID == "" {
			z.ID = r.gen.NextKey()
		}
	}
	if err := r.timezones.upsert(ctx, q, entities); err != nil {
		return err
	}
	for _, z := range entities {
		if err := saveChildren(ctx, q, r.gen, r.observances, r.observanceLinks, z.ID, z.Observances); err != nil {
			return err
		}
	}
	return nil
}

// Patch applies the named fields of source to the zones in keys; nil
// keys means every zone.
func (r *TimeZoneRepository) Patch(ctx context.Context, source *model.TimeZone, fields []xcal.Field, keys []string) error {
	var cols []string
	var vals []any
	for _, f := range fields {
		switch f {
		case model.FieldLastModified:
			cols = append(cols, "last_modified")
			vals = append(vals, fmtDateTime(source.LastModified))
		case model.FieldURL:
			cols = append(cols, "url")
			vals = append(vals, source.URL)
		default:
			return fmt.Errorf("%w: field %q not patchable on time zones", xcal.ErrInvalidArgument, f)
		}
	}
	return r.timezones.updateColumns(ctx, r.db, cols, vals, keys)
}

// Erase removes the zone and its observance links in one transaction.
func (r *TimeZoneRepository) Erase(ctx context.Context, key string) error {
	return r.EraseAll(ctx, []string{key})
}

// EraseAll removes the zones in keys and their observance links; nil
// keys means everything.
func (r *TimeZoneRepository) EraseAll(ctx context.Context, keys []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	return finishTx(tx, r.eraseTx(ctx, tx, keys))
}

func (r *TimeZoneRepository) eraseTx(ctx context.Context, q dbtx, keys []string) error {
	if err := r.observanceLinks.deleteByParents(ctx, q, keys); err != nil {
		return err
	}
	return r.timezones.deleteKeys(ctx, q, keys)
}

// ContainsKey reports whether the key exists.
func (r *TimeZoneRepository) ContainsKey(ctx context.Context, key string) (bool, error) {
	n, err := r.timezones.countKeys(ctx, r.db, []string{key})
	return n == 1, err
}

// ContainsKeys evaluates the key set under the given expectation mode.
func (r *TimeZoneRepository) ContainsKeys(ctx context.Context, keys []string, mode xcal.ExpectationMode) (bool, error) {
	n, err := r.timezones.countKeys(ctx, r.db, keys)
	if err != nil {
		return false, err
	}
	return containsKeys(n, len(keys), mode), nil
}
