package scan

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// idempotency caches the outcome of a (barcode, action, actor, minute)
// tuple for the duration of the window (spec.md §5 "implementations
// SHOULD tolerate a duplicate scan ... by detecting that the target
// transition has already happened and returning success without a
// second mutation"), grounded on internal/routing's ristretto cache.
const (
	idempotencyNumCounters = 100_000
	idempotencyMaxCost     = 10_000_00
	idempotencyBufferItems = 64
	idempotencyWindow      = 60 * time.Second
)

type idempotencyCache struct {
	cache *ristretto.Cache[string, Result]
}

func newIdempotencyCache() (*idempotencyCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, Result]{
		NumCounters: idempotencyNumCounters,
		MaxCost:     idempotencyMaxCost,
		BufferItems: idempotencyBufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("scan: new idempotency cache: %w", err)
	}

	return &idempotencyCache{cache: c}, nil
}

func (c *idempotencyCache) Close() {
	c.cache.Close()
}

func idempotencyKey(codeValue, action, actorID string, at time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%d", codeValue, action, actorID, at.Unix()/int64(idempotencyWindow.Seconds()))
}

func (c *idempotencyCache) get(codeValue, action, actorID string, at time.Time) (Result, bool) {
	return c.cache.Get(idempotencyKey(codeValue, action, actorID, at))
}

func (c *idempotencyCache) set(codeValue, action, actorID string, at time.Time, res Result) {
	c.cache.SetWithTTL(idempotencyKey(codeValue, action, actorID, at), res, 1, idempotencyWindow)
}
