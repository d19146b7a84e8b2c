// Package gateway is the request executor sitting between the service
// layer and the backend client. It deduplicates concurrent identical
// reads, caches their results, and guarantees that a mutation's cache
// invalidation is visible before the mutation returns to its caller.
package gateway

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// CallFunc performs one remote call and returns its decoded result.
type CallFunc func(ctx context.Context) (interface{}, error)

// Invoker executes remote calls on behalf of the service layer.
//
// Reads go through Query: concurrent callers sharing a cache key receive
// the result of a single underlying call, and successful results are
// cached under that key. Mutations go through Mutate: on success, every
// cache entry under the given prefixes is removed before the caller sees
// the result, so a re-fetch issued synchronously afterwards reads fresh
// data.
type Invoker struct {
	cache *Cache
	group singleflight.Group
	log   *logrus.Logger
}

// NewInvoker creates an Invoker backed by cache. A nil logger falls back
// to the logrus standard logger.
func NewInvoker(cache *Cache, log *logrus.Logger) *Invoker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Invoker{cache: cache, log: log}
}

// Query executes fn once per concurrent cacheKey and caches the result.
// Errors are never cached.
func (iv *Invoker) Query(
	ctx context.Context,
	cacheKey string,
	fn CallFunc,
) (interface{}, error) {
	if v, ok := iv.cache.Get(cacheKey); ok {
		return v, nil
	}

	v, err, shared := iv.group.Do(cacheKey, func() (interface{}, error) {
		// A concurrent caller may have populated the cache while this
		// call waited for the singleflight slot.
		if v, ok := iv.cache.Get(cacheKey); ok {
			return v, nil
		}

		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		iv.cache.Set(cacheKey, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		iv.log.WithField("key", cacheKey).Debug("coalesced duplicate fetch")
	}
	return v, nil
}

// Mutate executes fn and, on success, invalidates every cache entry under
// the given key prefixes before returning.
func (iv *Invoker) Mutate(
	ctx context.Context,
	fn CallFunc,
	invalidatePrefixes ...string,
) (interface{}, error) {
	v, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	for _, prefix := range invalidatePrefixes {
		if n := iv.cache.Invalidate(prefix); n > 0 {
			iv.log.WithFields(logrus.Fields{
				"prefix":  prefix,
				"removed": n,
			}).Debug("invalidated cached reads after mutation")
		}
	}
	return v, nil
}
