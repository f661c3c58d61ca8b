// Package xcal provides the shared contracts of the calendar storage
// library: the error taxonomy, the repository and hydration interfaces
// implemented by the sqlite and redis backends, and key generation.
package xcal

import "errors"

var (
	// ErrInvalidArgument reports a caller-supplied value that violates an
	// operation's preconditions, such as an out-of-range date component.
	ErrInvalidArgument = errors.New("xcal: invalid argument")

	// ErrFormat reports text that does not conform to the value grammar
	// being parsed.
	ErrFormat = errors.New("xcal: malformed value")

	// ErrArithmetic reports an invalid arithmetic operation, such as a
	// duration division by zero.
	ErrArithmetic = errors.New("xcal: arithmetic error")

	// ErrNotFound reports a key with no stored entity.
	ErrNotFound = errors.New("xcal: not found")

	// ErrConflict reports a concurrent modification detected by the cache
	// tier's optimistic write protocol. The operation is not retried.
	ErrConflict = errors.New("xcal: concurrent modification")

	// ErrStore reports a backend failure (connection, statement, or
	// transaction) unrelated to the entity data itself.
	ErrStore = errors.New("xcal: store failure")
)

type storeError struct {
	op  string
	err error
}

func (e *storeError) Error() string { return e.op + ": " + e.err.Error() }

func (e *storeError) Unwrap() []error { return []error{ErrStore, e.err} }

// StoreError wraps a backend failure so that errors.Is matches both
// ErrStore and the underlying cause. A nil cause returns nil.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &storeError{op: op, err: err}
}
