package xcal

import "context"

// ExpectationMode selects how ContainsKeys judges a key set.
type ExpectationMode int

const (
	// Optimistic is satisfied when at least one of the keys exists.
	Optimistic ExpectationMode = iota
	// Pessimistic is satisfied only when every key exists.
	Pessimistic
)

// Field names a patchable field of an entity type. The model package
// declares the valid constants per type; repositories reject names
// outside that set.
type Field string

// Repository is the persistence contract shared by the relational and
// cache-tier backends.
//
// Find and FindAll return hydrated entities; a missing key yields a nil
// entity (or a shorter slice) rather than an error. Get returns the full
// hydrated data set ordered by id; skip and take bound the page, with
// take <= 0 meaning no upper bound. Save and SaveAll perform complete
// upserts of the entity graph. Erase and EraseAll remove entities and
// their relation links; a nil key slice for EraseAll means everything.
type Repository[T any] interface {
	Find(ctx context.Context, key string) (T, error)
	FindAll(ctx context.Context, keys []string, skip, take int) ([]T, error)
	Get(ctx context.Context, skip, take int) ([]T, error)
	Save(ctx context.Context, entity T) error
	SaveAll(ctx context.Context, entities []T) error
	Patch(ctx context.Context, source T, fields []Field, keys []string) error
	Erase(ctx context.Context, key string) error
	EraseAll(ctx context.Context, keys []string) error
	ContainsKey(ctx context.Context, key string) (bool, error)
	ContainsKeys(ctx context.Context, keys []string, mode ExpectationMode) (bool, error)
}

// Hydrator converts between the dry (scalar columns only) and full
// (relations attached) forms of an entity. Hydration reads relation and
// child rows but never writes; dehydration clears the owned collection
// fields in place and returns the same entity.
type Hydrator[T any] interface {
	Hydrate(ctx context.Context, dry T) (T, error)
	HydrateAll(ctx context.Context, dry []T) ([]T, error)
	Dehydrate(full T) T
	DehydrateAll(full []T) []T
}
