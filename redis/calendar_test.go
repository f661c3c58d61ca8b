package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"github.com/samgerene/xcal"
	"github.com/samgerene/xcal/model"
	"github.com/samgerene/xcal/values"
)

// memStore is an in-memory ComponentStore used so the cache tests
// exercise only the Redis interaction.
type memStore[T any] struct {
	key   func(T) string
	items map[string]T
}

func newMemStore[T any](key func(T) string) *memStore[T] {
	return &memStore[T]{key: key, items: map[string]T{}}
}

func (s *memStore[T]) FindAll(_ context.Context, keys []string, _, _ int) ([]T, error) {
	var out []T
	for _, k := range keys {
		if it, ok := s.items[k]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *memStore[T]) SaveAll(_ context.Context, entities []T) error {
	for _, e := range entities {
		s.items[s.key(e)] = e
	}
	return nil
}

func (s *memStore[T]) EraseAll(_ context.Context, keys []string) error {
	if keys == nil {
		s.items = map[string]T{}
		return nil
	}
	for _, k := range keys {
		delete(s.items, k)
	}
	return nil
}

func setupTestRepo(t *testing.T) (*CalendarRepository, *goredis.Client) {
	t.Helper()

	addr := os.Getenv("XCAL_REDIS_ADDR")
	if addr == "" {
		t.Skip("XCAL_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := Open(ctx, Options{Addr: addr, DB: 9})
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush test db: %v", err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	repo := NewCalendarRepository(client, xcal.NewSequenceKeyGenerator("k"),
		newMemStore(func(e *model.Event) string { return e.ID }),
		newMemStore(func(td *model.Todo) string { return td.ID }),
		newMemStore(func(j *model.Journal) string { return j.ID }),
		newMemStore(func(f *model.FreeBusy) string { return f.ID }),
		newMemStore(func(z *model.TimeZone) string { return z.ID }),
	)
	return repo, client
}

func testCalendar(id string) *model.Calendar {
	cal := model.NewCalendar(id, "-//example//xcal//EN")
	start := values.NewDateTimeUTC(2024, 3, 1, 10, 0, 0)
	event := model.NewEvent(id+"-ev-1", "uid-"+id, values.NewDateTimeUTC(2024, 2, 1, 9, 0, 0),
		values.NewPeriodDuration(start, values.Duration{Hours: 1}))
	event.Summary = "standup"
	cal.Events = []*model.Event{event}
	return cal
}

func TestCalendarSaveFindRoundTrip(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	want := testCalendar("cal-1")
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save calendar: %v", err)
	}

	got, err := repo.Find(ctx, "cal-1")
	if err != nil {
		t.Fatalf("find calendar: %v", err)
	}
	if got == nil {
		t.Fatal("expected calendar, got nil")
	}
	if got.ProdID != want.ProdID || got.Version != model.DefaultVersion {
		t.Errorf("scalars did not round trip: %+v", got)
	}
	if len(got.Events) != 1 || got.Events[0].Summary != "standup" {
		t.Errorf("events not hydrated from backing store: %+v", got.Events)
	}
}

func TestCalendarFindMissingReturnsNil(t *testing.T) {
	repo, _ := setupTestRepo(t)

	got, err := repo.Find(context.Background(), "absent")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestCalendarBlobIsDehydrated(t *testing.T) {
	repo, client := setupTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, testCalendar("cal-1")); err != nil {
		t.Fatalf("save: %v", err)
	}

	blob, err := client.Get(ctx, calKey("cal-1")).Result()
	if err != nil {
		t.Fatalf("get blob: %v", err)
	}
	if strings.Contains(blob, `"events"`) {
		t.Errorf("cached blob carries hydrated events: %s", blob)
	}
}

func TestCalendarDoubleSaveKeepsLinksStable(t *testing.T) {
	repo, client := setupTestRepo(t)
	ctx := context.Background()

	cal := testCalendar("cal-1")
	if err := repo.Save(ctx, cal); err != nil {
		t.Fatalf("first save: %v", err)
	}
	before, err := client.Get(ctx, linkKey("events", "cal-1")).Result()
	if err != nil {
		t.Fatalf("get links: %v", err)
	}
	if err := repo.Save(ctx, cal); err != nil {
		t.Fatalf("second save: %v", err)
	}
	after, err := client.Get(ctx, linkKey("events", "cal-1")).Result()
	if err != nil {
		t.Fatalf("get links: %v", err)
	}
	if before != after {
		t.Errorf("link records changed on re-save:\n%s\n%s", before, after)
	}
}

func TestCalendarConcurrentWriteConflicts(t *testing.T) {
	repo, client := setupTestRepo(t)
	ctx := context.Background()

	cal := testCalendar("cal-1")
	if err := repo.Save(ctx, cal); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A writer that touches the watched blob between WATCH and EXEC
	// must fail the transaction.
	err := client.Watch(ctx, func(tx *goredis.Tx) error {
		if err := client.Set(ctx, calKey("cal-1"), "interloper", 0).Err(); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, calKey("cal-1"), "loser", 0)
			return nil
		})
		return err
	}, calKey("cal-1"))
	if !errors.Is(err, goredis.TxFailedErr) {
		t.Fatalf("expected tx failure, got %v", err)
	}

	got, err := client.Get(ctx, calKey("cal-1")).Result()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "interloper" {
		t.Errorf("stale write won: %s", got)
	}
}

func TestCalendarPatchScalars(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		if err := repo.Save(ctx, testCalendar(fmt.Sprintf("cal-%d", i))); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	source := &model.Calendar{Method: "PUBLISH"}
	if err := repo.Patch(ctx, source, []xcal.Field{model.FieldMethod}, []string{"cal-2"}); err != nil {
		t.Fatalf("patch: %v", err)
	}

	one, err := repo.Find(ctx, "cal-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	two, err := repo.Find(ctx, "cal-2")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if one.Method != "" || two.Method != "PUBLISH" {
		t.Errorf("patch applied wrong: %q %q", one.Method, two.Method)
	}

	err = repo.Patch(ctx, source, []xcal.Field{model.FieldEvents}, nil)
	if !errors.Is(err, xcal.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for relation patch, got %v", err)
	}
}

func TestCalendarEraseKeepsComponents(t *testing.T) {
	repo, client := setupTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, testCalendar("cal-1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Erase(ctx, "cal-1"); err != nil {
		t.Fatalf("erase: %v", err)
	}

	if n, _ := client.Exists(ctx, calKey("cal-1")).Result(); n != 0 {
		t.Error("blob left behind")
	}
	if n, _ := client.Exists(ctx, linkKey("events", "cal-1")).Result(); n != 0 {
		t.Error("link records left behind")
	}
	events, err := repo.events.FindAll(ctx, []string{"cal-1-ev-1"}, 0, 0)
	if err != nil {
		t.Fatalf("backing find: %v", err)
	}
	if len(events) != 1 {
		t.Error("erase reached into the backing store")
	}
}

func TestCalendarContainsKeysModes(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, testCalendar("cal-1")); err != nil {
		t.Fatalf("save: %v", err)
	}

	keys := []string{"cal-1", "cal-2"}
	optimistic, err := repo.ContainsKeys(ctx, keys, xcal.Optimistic)
	if err != nil {
		t.Fatalf("contains keys: %v", err)
	}
	if !optimistic {
		t.Error("optimistic should pass with one key cached")
	}
	pessimistic, err := repo.ContainsKeys(ctx, keys, xcal.Pessimistic)
	if err != nil {
		t.Fatalf("contains keys: %v", err)
	}
	if pessimistic {
		t.Error("pessimistic should fail with one key missing")
	}
}

func TestCalendarGetKeysPaging(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"cal-3", "cal-1", "cal-2"} {
		if err := repo.Save(ctx, testCalendar(id)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	keys, err := repo.GetKeys(ctx, 1, 1)
	if err != nil {
		t.Fatalf("get keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "cal-2" {
		t.Errorf("keys = %v, want [cal-2]", keys)
	}
}
