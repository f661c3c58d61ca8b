package xcal

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// KeyGenerator produces storage keys for entities and relation links.
// Generated keys are distinct from the business UID carried by calendar
// components.
type KeyGenerator interface {
	NextKey() string
}

// UUIDKeyGenerator issues random version 4 UUID keys. The zero value is
// ready to use and safe for concurrent callers.
type UUIDKeyGenerator struct{}

func (UUIDKeyGenerator) NextKey() string { return uuid.NewString() }

// SequenceKeyGenerator issues monotonically increasing keys with a fixed
// prefix ("ev-1", "ev-2", ...). Deterministic, so suited to tests and
// fixtures. Safe for concurrent callers.
type SequenceKeyGenerator struct {
	prefix string
	n      atomic.Uint64
}

// NewSequenceKeyGenerator returns a generator whose keys start at
// prefix + "-1".
func NewSequenceKeyGenerator(prefix string) *SequenceKeyGenerator {
	return &SequenceKeyGenerator{prefix: prefix}
}

func (g *SequenceKeyGenerator) NextKey() string {
	return g.prefix + "-" + strconv.FormatUint(g.n.Add(1), 10)
}
