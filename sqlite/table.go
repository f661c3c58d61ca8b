package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/samgerene/xcal"
)

// dbtx is the query surface shared by *sql.DB and *sql.Tx, so every
// statement helper can run standalone or inside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// table maps an entity type onto its primary table: the column list in
// insert/select order (id first), the argument extractor, and the row
// scanner. Repositories are mostly configurations of this type.
type table[T any] struct {
	name    string
	columns []string
	key     func(T) string
	setKey  func(T, string)
	args    func(T) []any
	scan    func(rowScanner) (T, error)
}

// attach resolves one parent/child collection for a batch of parents:
// one relation query restricted to the batch, one child query
// restricted to the referenced ids, then an in-memory stitch that
// preserves link order.
func attach[T any](ctx context.Context, q dbtx, l linkTable, t table[T], parentIDs []string) (map[string][]T, error) {
	linkMap, err := l.byParents(ctx, q, parentIDs)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var childIDs []string
	for _, children := range linkMap {
		for _, c := range children {
			if !seen[c] {
				seen[c] = true
				childIDs = append(childIDs, c)
			}
		}
	}
	children, err := t.selectByKeys(ctx, q, childIDs, 0, 0)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]T, len(children))
	for _, c := range children {
		byID[t.key(c)] = c
	}
	out := make(map[string][]T, len(linkMap))
	for parent, ids := range linkMap {
		for _, id := range ids {
			if child, ok := byID[id]; ok {
				out[parent] = append(out[parent], child)
			}
		}
	}
	return out, nil
}

// saveChildren upserts one parent's child collection and syncs the
// relation rows, generating ids for children that have none yet.
func saveChildren[T any](ctx context.Context, q dbtx, gen xcal.KeyGenerator, t table[T], l linkTable, parentID string, children []T) error {
	if len(children) == 0 {
		return nil
	}
	for _, c := range children {
		if t.key(c) == "" {
			t.setKey(c, gen.NextKey())
		}
	}
	if err := t.upsert(ctx, q, children); err != nil {
		return err
	}
	ids := make([]string, len(children))
	for i, c := range children {
		ids[i] = t.key(c)
	}
	return l.sync(ctx, q, gen, parentID, ids)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func keyArgs(keys []string) []any {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return args
}

func (t table[T]) selectClause() string {
	return "SELECT " + strings.Join(t.columns, ", ") + " FROM " + t.name
}

// selectOne fetches one row by key; the bool reports whether it exists.
func (t table[T]) selectOne(ctx context.Context, q dbtx, key string) (T, bool, error) {
	var zero T
	row := q.QueryRowContext(ctx, t.selectClause()+" WHERE id = ?", key)
	entity, err := t.scan(row)
	if err == sql.ErrNoRows {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("query %s: %w", t.name, err)
	}
	return entity, true, nil
}

func (t table[T]) collect(rows *sql.Rows, err error) ([]T, error) {
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.name, err)
	}
	defer rows.Close()

	var entities []T
	for rows.Next() {
		entity, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

// selectByKeys fetches the rows whose ids are in keys, ordered by id.
// take <= 0 means no upper bound.
func (t table[T]) selectByKeys(ctx context.Context, q dbtx, keys []string, skip, take int) ([]T, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if take <= 0 {
		take = -1
	}
	query := t.selectClause() + " WHERE id IN (" + placeholders(len(keys)) + ") ORDER BY id LIMIT ? OFFSET ?"
	args := append(keyArgs(keys), take, skip)
	rows, err := q.QueryContext(ctx, query, args...)
	return t.collect(rows, err)
}

// selectAll fetches every row, ordered by id. take <= 0 means no upper
// bound.
func (t table[T]) selectAll(ctx context.Context, q dbtx, skip, take int) ([]T, error) {
	if take <= 0 {
		take = -1
	}
	rows, err := q.QueryContext(ctx, t.selectClause()+" ORDER BY id LIMIT ? OFFSET ?", take, skip)
	return t.collect(rows, err)
}

// upsert inserts the entities, replacing every non-key column on id
// conflict.
func (t table[T]) upsert(ctx context.Context, q dbtx, entities []T) error {
	if len(entities) == 0 {
		return nil
	}
	var sets []string
	for _, c := range t.columns[1:] {
		sets = append(sets, c+" = excluded."+c)
	}
	query := "INSERT INTO " + t.name + " (" + strings.Join(t.columns, ", ") + ") VALUES (" +
		placeholders(len(t.columns)) + ") ON CONFLICT (id) DO UPDATE SET " + strings.Join(sets, ", ")
	for _, entity := range entities {
		if _, err := q.ExecContext(ctx, query, t.args(entity)...); err != nil {
			return fmt.Errorf("upsert %s: %w", t.name, err)
		}
	}
	return nil
}

// updateColumns sets the named columns on the rows in keys; nil keys
// means every row.
func (t table[T]) updateColumns(ctx context.Context, q dbtx, cols []string, vals []any, keys []string) error {
	if len(cols) == 0 {
		return nil
	}
	var sets []string
	for _, c := range cols {
		sets = append(sets, c+" = ?")
	}
	query := "UPDATE " + t.name + " SET " + strings.Join(sets, ", ")
	args := vals
	if keys != nil {
		query += " WHERE id IN (" + placeholders(len(keys)) + ")"
		args = append(args, keyArgs(keys)...)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s: %w", t.name, err)
	}
	return nil
}

// deleteKeys removes the rows in keys; nil keys means every row.
func (t table[T]) deleteKeys(ctx context.Context, q dbtx, keys []string) error {
	query := "DELETE FROM " + t.name
	var args []any
	if keys != nil {
		if len(keys) == 0 {
			return nil
		}
		query += " WHERE id IN (" + placeholders(len(keys)) + ")"
		args = keyArgs(keys)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s: %w", t.name, err)
	}
	return nil
}

// countKeys counts how many of the given keys exist.
func (t table[T]) countKeys(ctx context.Context, q dbtx, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	var n int
	query := "SELECT COUNT(*) FROM " + t.name + " WHERE id IN (" + placeholders(len(keys)) + ")"
	if err := q.QueryRowContext(ctx, query, keyArgs(keys)...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.name, err)
	}
	return n, nil
}

// allKeys lists every id, ordered.
func (t table[T]) allKeys(ctx context.Context, q dbtx) ([]string, error) {
	rows, err := q.QueryContext(ctx, "SELECT id FROM "+t.name+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query %s keys: %w", t.name, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan %s key: %w", t.name, err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// link is one relation row: parent entity to child entity.
type link struct {
	ID       string
	ParentID string
	ChildID  string
}

// linkTable maps one parent/child collection onto its relation table.
type linkTable struct {
	name string
}

// byParents fetches the relation rows of the given parents, grouped by
// parent with child order stable.
func (l linkTable) byParents(ctx context.Context, q dbtx, parentIDs []string) (map[string][]string, error) {
	if len(parentIDs) == 0 {
		return map[string][]string{}, nil
	}
	query := "SELECT parent_id, child_id FROM " + l.name +
		" WHERE parent_id IN (" + placeholders(len(parentIDs)) + ") ORDER BY id"
	rows, err := q.QueryContext(ctx, query, keyArgs(parentIDs)...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", l.name, err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var parent, child string
		if err := rows.Scan(&parent, &child); err != nil {
			return nil, fmt.Errorf("scan %s: %w", l.name, err)
		}
		out[parent] = append(out[parent], child)
	}
	return out, rows.Err()
}

// sync writes the set difference between the desired child set and the
// stored one: links already present are kept untouched, missing ones
// are inserted with generated ids.
func (l linkTable) sync(ctx context.Context, q dbtx, gen xcal.KeyGenerator, parentID string, childIDs []string) error {
	if len(childIDs) == 0 {
		return nil
	}
	stored, err := l.byParents(ctx, q, []string{parentID})
	if err != nil {
		return err
	}
	existing := make(map[string]bool, len(stored[parentID]))
	for _, c := range stored[parentID] {
		existing[c] = true
	}
	for _, child := range childIDs {
		if existing[child] {
			continue
		}
		existing[child] = true
		_, err := q.ExecContext(ctx,
			"INSERT INTO "+l.name+" (id, parent_id, child_id) VALUES (?, ?, ?)",
			gen.NextKey(), parentID, child)
		if err != nil {
			return fmt.Errorf("insert %s: %w", l.name, err)
		}
	}
	return nil
}

// deleteByParents removes the relation rows of the given parents; nil
// means every row.
func (l linkTable) deleteByParents(ctx context.Context, q dbtx, parentIDs []string) error {
	query := "DELETE FROM " + l.name
	var args []any
	if parentIDs != nil {
		if len(parentIDs) == 0 {
			return nil
		}
		query += " WHERE parent_id IN (" + placeholders(len(parentIDs)) + ")"
		args = keyArgs(parentIDs)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s: %w", l.name, err)
	}
	return nil
}

// count returns the number of relation rows, for tests and diagnostics.
func (l linkTable) count(ctx context.Context, q dbtx) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+l.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", l.name, err)
	}
	return n, nil
}

// finishTx commits on success and rolls back on failure, surfacing
// both errors when the rollback fails too.
func finishTx(tx *sql.Tx, err error) error {
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// containsKeys evaluates a key set against an existence count:
// pessimistic wants every key present, optimistic wants at least one.
func containsKeys(found, want int, mode xcal.ExpectationMode) bool {
	if mode == xcal.Pessimistic {
		return found == want
	}
	return found > 0
}
