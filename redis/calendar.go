package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/samgerene/xcal"
	"github.com/samgerene/xcal/model"
)

const (
	calPrefix  = "xcal:calendar:"
	linkPrefix = "xcal:links:"
)

// ComponentStore is the slice of a backing repository the cache tier
// needs: batch lookup, batch save and batch erase by key. The sqlite
// component repositories satisfy it directly.
type ComponentStore[T any] interface {
	FindAll(ctx context.Context, keys []string, skip, take int) ([]T, error)
	SaveAll(ctx context.Context, entities []T) error
	EraseAll(ctx context.Context, keys []string) error
}

// link is one cached relation record binding a calendar to a component.
type link struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id"`
	ChildID  string `json:"child_id"`
}

// CalendarRepository caches dehydrated calendars in Redis while the
// component entities stay in the backing stores. A Save runs under
// WATCH on the keys it rewrites, so a concurrent writer surfaces as
// xcal.ErrConflict instead of a lost update.
type CalendarRepository struct {
	client *redis.Client
	gen    xcal.KeyGenerator

	events     ComponentStore[*model.Event]
	todos      ComponentStore[*model.Todo]
	journals   ComponentStore[*model.Journal]
	freebusies ComponentStore[*model.FreeBusy]
	timezones  ComponentStore[*model.TimeZone]
}

// NewCalendarRepository returns a repository over the given client,
// key generator and backing component stores.
func NewCalendarRepository(
	client *redis.Client,
	gen xcal.KeyGenerator,
	events ComponentStore[*model.Event],
	todos ComponentStore[*model.Todo],
	journals ComponentStore[*model.Journal],
	freebusies ComponentStore[*model.FreeBusy],
	timezones ComponentStore[*model.TimeZone],
) *CalendarRepository {
	return &CalendarRepository{
		client:     client,
		gen:        gen,
		events:     events,
		todos:      todos,
		journals:   journals,
		freebusies: freebusies,
		timezones:  timezones,
	}
}

func calKey(id string) string { return calPrefix + id }

func linkKey(kind, id string) string { return linkPrefix + kind + ":" + id }

func linkKeys(id string) []string {
	return []string{
		linkKey("events", id),
		linkKey("todos", id),
		linkKey("journals", id),
		linkKey("freebusies", id),
		linkKey("timezones", id),
	}
}

// Find returns the hydrated calendar with the given key, or nil.
func (r *CalendarRepository) Find(ctx context.Context, key string) (*model.Calendar, error) {
	data, err := r.client.Get(ctx, calKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, xcal.StoreError("get calendar", err)
	}
	var cal model.Calendar
	if err := json.Unmarshal(data, &cal); err != nil {
		return nil, xcal.StoreError("decode calendar", err)
	}
	return r.Hydrate(ctx, &cal)
}

// FindAll returns the hydrated calendars whose keys are in keys,
// ordered by key. Missing keys are skipped.
func (r *CalendarRepository) FindAll(ctx context.Context, keys []string, skip, take int) ([]*model.Calendar, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	sorted = page(sorted, skip, take)
	if len(sorted) == 0 {
		return nil, nil
	}

	blobKeys := make([]string, len(sorted))
	for i, k := range sorted {
		blobKeys[i] = calKey(k)
	}
	blobs, err := r.client.MGet(ctx, blobKeys...).Result()
	if err != nil {
		return nil, xcal.StoreError("mget calendars", err)
	}

	var cals []*model.Calendar
	for _, blob := range blobs {
		s, ok := blob.(string)
		if !ok {
			continue
		}
		var cal model.Calendar
		if err := json.Unmarshal([]byte(s), &cal); err != nil {
			return nil, xcal.StoreError("decode calendar", err)
		}
		cals = append(cals, &cal)
	}
	return r.HydrateAll(ctx, cals)
}

// Get returns every cached calendar, hydrated and ordered by key.
func (r *CalendarRepository) Get(ctx context.Context, skip, take int) ([]*model.Calendar, error) {
	keys, err := r.GetKeys(ctx, skip, take)
	if err != nil {
		return nil, err
	}
	return r.FindAll(ctx, keys, 0, 0)
}

// GetKeys returns the cached calendar keys, sorted and paged.
func (r *CalendarRepository) GetKeys(ctx context.Context, skip, take int) ([]string, error) {
	raw, err := r.client.Keys(ctx, calPrefix+"*").Result()
	if err != nil {
		return nil, xcal.StoreError("list calendar keys", err)
	}
	keys := make([]string, len(raw))
	for i, k := range raw {
		keys[i] = strings.TrimPrefix(k, calPrefix)
	}
	sort.Strings(keys)
	return page(keys, skip, take), nil
}

func page(keys []string, skip, take int) []string {
	if skip >= len(keys) {
		return nil
	}
	keys = keys[skip:]
	if take > 0 && take < len(keys) {
		keys = keys[:take]
	}
	return keys
}

// Hydrate resolves the calendar's link records against the backing
// stores and attaches the component collections.
func (r *CalendarRepository) Hydrate(ctx context.Context, dry *model.Calendar) (*model.Calendar, error) {
	if dry == nil {
		return nil, nil
	}
	cals, err := r.HydrateAll(ctx, []*model.Calendar{dry})
	if err != nil {
		return nil, err
	}
	return cals[0], nil
}

// HydrateAll resolves link records for a batch, one backing-store
// lookup per component kind.
func (r *CalendarRepository) HydrateAll(ctx context.Context, dry []*model.Calendar) ([]*model.Calendar, error) {
	for _, cal := range dry {
		eventIDs, err := r.childIDs(ctx, "events", cal.ID)
		if err != nil {
			return nil, err
		}
		if cal.Events, err = r.events.FindAll(ctx, eventIDs, 0, 0); err != nil {
			return nil, err
		}
		todoIDs, err := r.childIDs(ctx, "todos", cal.ID)
		if err != nil {
			return nil, err
		}
		if cal.Todos, err = r.todos.FindAll(ctx, todoIDs, 0, 0); err != nil {
			return nil, err
		}
		journalIDs, err := r.childIDs(ctx, "journals", cal.ID)
		if err != nil {
			return nil, err
		}
		if cal.Journals, err = r.journals.FindAll(ctx, journalIDs, 0, 0); err != nil {
			return nil, err
		}
		freebusyIDs, err := r.childIDs(ctx, "freebusies", cal.ID)
		if err != nil {
			return nil, err
		}
		if cal.FreeBusies, err = r.freebusies.FindAll(ctx, freebusyIDs, 0, 0); err != nil {
			return nil, err
		}
		timezoneIDs, err := r.childIDs(ctx, "timezones", cal.ID)
		if err != nil {
			return nil, err
		}
		if cal.TimeZones, err = r.timezones.FindAll(ctx, timezoneIDs, 0, 0); err != nil {
			return nil, err
		}
	}
	return dry, nil
}

func (r *CalendarRepository) childIDs(ctx context.Context, kind, calID string) ([]string, error) {
	links, err := r.readLinks(ctx, r.client, kind, calID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(links))
	for i, l := range links {
		ids[i] = l.ChildID
	}
	return ids, nil
}

func (r *CalendarRepository) readLinks(ctx context.Context, c redis.Cmdable, kind, calID string) ([]link, error) {
	data, err := c.Get(ctx, linkKey(kind, calID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, xcal.StoreError("get "+kind+" links", err)
	}
	var links []link
	if err := json.Unmarshal(data, &links); err != nil {
		return nil, xcal.StoreError("decode "+kind+" links", err)
	}
	return links, nil
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

// Save persists the calendar: components go to the backing stores, the
// dehydrated blob and the merged link records go to Redis in one
// transaction under WATCH. A concurrent write to the same calendar
// fails the transaction and surfaces as xcal.ErrConflict; the caller
// decides whether to retry.
func (r *CalendarRepository) Save(ctx context.Context, entity *model.Calendar) error {
	return r.SaveAll(ctx, []*model.Calendar{entity})
}

// SaveAll persists a batch, one watched transaction per calendar.
func (r *CalendarRepository) SaveAll(ctx context.Context, entities []*model.Calendar) error {
	for _, cal := range entities {
		if err := r.save(ctx, cal); err != nil {
			return err
		}
	}
	return nil
}

func (r *CalendarRepository) save(ctx context.Context, cal *model.Calendar) error {
	if cal.ID == "" {
		cal.ID = r.gen.NextKey()
	}

	if err := r.events.SaveAll(ctx, cal.Events); err != nil {
		return err
	}
	if err := r.todos.SaveAll(ctx, cal.Todos); err != nil {
		return err
	}
	if err := r.journals.SaveAll(ctx, cal.Journals); err != nil {
		return err
	}
	if err := r.freebusies.SaveAll(ctx, cal.FreeBusies); err != nil {
		return err
	}
	if err := r.timezones.SaveAll(ctx, cal.TimeZones); err != nil {
		return err
	}

	watched := append([]string{calKey(cal.ID)}, linkKeys(cal.ID)...)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		merged := map[string][]byte{}
		for kind, ids := range map[string][]string{
			"events":     componentIDs(cal.Events, func(e *model.Event) string { return e.ID }),
			"todos":      componentIDs(cal.Todos, func(t *model.Todo) string { return t.ID }),
			"journals":   componentIDs(cal.Journals, func(j *model.Journal) string { return j.ID }),
			"freebusies": componentIDs(cal.FreeBusies, func(f *model.FreeBusy) string { return f.ID }),
			"timezones":  componentIDs(cal.TimeZones, func(z *model.TimeZone) string { return z.ID }),
		} {
			links, err := r.mergeLinks(ctx, tx, kind, cal.ID, ids)
			if err != nil {
				return err
			}
			if links == nil {
				continue
			}
			data, err := json.Marshal(links)
			if err != nil {
				return xcal.StoreError("encode "+kind+" links", err)
			}
			merged[linkKey(kind, cal.ID)] = data
		}

		shallow := *cal
		r.Dehydrate(&shallow)
		blob, err := json.Marshal(&shallow)
		if err != nil {
			return xcal.StoreError("encode calendar", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for key, data := range merged {
				pipe.Set(ctx, key, data, 0)
			}
			pipe.Set(ctx, calKey(cal.ID), blob, 0)
			return nil
		})
		return err
	}, watched...)

	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("save calendar %s: %w", cal.ID, xcal.ErrConflict)
	}
	if err != nil {
		return xcal.StoreError("save calendar", err)
	}
	return nil
}

func componentIDs[T any](items []T, id func(T) string) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = id(it)
	}
	return ids
}

// mergeLinks folds the desired child set into the stored link records,
// keeping existing links and appending records for new children. It
// returns nil when nothing changed.
func (r *CalendarRepository) mergeLinks(ctx context.Context, tx *redis.Tx, kind, calID string, childIDs []string) ([]link, error) {
	if len(childIDs) == 0 {
		return nil, nil
	}
	stored, err := r.readLinks(ctx, tx, kind, calID)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(stored))
	for _, l := range stored {
		existing[l.ChildID] = true
	}
	changed := false
	for _, child := range childIDs {
		if existing[child] {
			continue
		}
		existing[child] = true
		stored = append(stored, link{ID: r.gen.NextKey(), ParentID: calID, ChildID: child})
		changed = true
	}
	if !changed {
		return nil, nil
	}
	return stored, nil
}

// Patch applies the named scalar fields of source to the cached
// calendars in keys; nil keys means every cached calendar. Each target
// is rewritten under WATCH.
func (r *CalendarRepository) Patch(ctx context.Context, source *model.Calendar, fields []xcal.Field, keys []string) error {
	for _, f := range fields {
		switch f {
		case model.FieldProdID, model.FieldVersion, model.FieldCalscale, model.FieldMethod:
		default:
			return fmt.Errorf("%w: field %q not patchable on cached calendars", xcal.ErrInvalidArgument, f)
		}
	}
	if keys == nil {
		var err error
		if keys, err = r.GetKeys(ctx, 0, 0); err != nil {
			return err
		}
	}
	for _, key := range keys {
		if err := r.patchOne(ctx, source, fields, key); err != nil {
			return err
		}
	}
	return nil
}

func (r *CalendarRepository) patchOne(ctx context.Context, source *model.Calendar, fields []xcal.Field, key string) error {
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, calKey(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return xcal.StoreError("get calendar", err)
		}
		var cal model.Calendar
		if err := json.Unmarshal(data, &cal); err != nil {
			return xcal.StoreError("decode calendar", err)
		}
		for _, f := range fields {
			switch f {
			case model.FieldProdID:
				cal.ProdID = source.ProdID
			case model.FieldVersion:
				cal.Version = source.Version
			case model.FieldCalscale:
				cal.Calscale = source.Calscale
			case model.FieldMethod:
				cal.Method = source.Method
			}
		}
		blob, err := json.Marshal(&cal)
		if err != nil {
			return xcal.StoreError("encode calendar", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, calKey(key), blob, 0)
			return nil
		})
		return err
	}, calKey(key))

	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("patch calendar %s: %w", key, xcal.ErrConflict)
	}
	return err
}

// Erase removes the cached calendar and its link records. The
// components stay in the backing stores.
func (r *CalendarRepository) Erase(ctx context.Context, key string) error {
	return r.EraseAll(ctx, []string{key})
}

// EraseAll removes the cached calendars in keys and their link
// records; nil keys means every cached calendar.
func (r *CalendarRepository) EraseAll(ctx context.Context, keys []string) error {
	if keys == nil {
		var err error
		if keys, err = r.GetKeys(ctx, 0, 0); err != nil {
			return err
		}
	}
	if len(keys) == 0 {
		return nil
	}
	var watched []string
	for _, key := range keys {
		watched = append(watched, calKey(key))
		watched = append(watched, linkKeys(key)...)
	}
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, key := range keys {
				pipe.Del(ctx, linkKeys(key)...)
				pipe.Del(ctx, calKey(key))
			}
			return nil
		})
		return err
	}, watched...)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("erase calendars: %w", xcal.ErrConflict)
	}
	if err != nil {
		return xcal.StoreError("erase calendars", err)
	}
	return nil
}

// ContainsKey reports whether the calendar is cached.
func (r *CalendarRepository) ContainsKey(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, calKey(key)).Result()
	if err != nil {
		return false, xcal.StoreError("exists calendar", err)
	}
	return n == 1, nil
}

// ContainsKeys evaluates the key set under the given expectation mode.
func (r *CalendarRepository) ContainsKeys(ctx context.Context, keys []string, mode xcal.ExpectationMode) (bool, error) {
	if len(keys) == 0 {
		return false, nil
	}
	blobKeys := make([]string, len(keys))
	for i, k := range keys {
		blobKeys[i] = calKey(k)
	}
	n, err := r.client.Exists(ctx, blobKeys...).Result()
	if err != nil {
		return false, xcal.StoreError("exists calendars", err)
	}
	if mode == xcal.Pessimistic {
		return n == int64(len(keys)), nil
	}
	return n > 0, nil
}
