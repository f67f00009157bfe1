package tips

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"orcamento/internal/cache"
)

// DefaultGenerateTimeout bounds a shared provider call.
const DefaultGenerateTimeout = 30 * time.Second

// cachingGenerator is implemented by generators that can tell whether a
// result is worth caching.
type cachingGenerator interface {
	generate(ctx context.Context, req Request) ([]Tip, bool, error)
}

// CachedGenerator remembers tips per request fingerprint and collapses
// concurrent identical requests into one provider call.
type CachedGenerator struct {
	next    Generator
	cache   *cache.LRUCache[[]Tip]
	group   singleflight.Group
	timeout time.Duration
}

// NewCached wraps next with an LRU cache of the given size and TTL.
func NewCached(next Generator, maxEntries int, ttl time.Duration) *CachedGenerator {
	return &CachedGenerator{
		next:    next,
		cache:   cache.NewLRUCache[[]Tip](maxEntries, ttl),
		timeout: DefaultGenerateTimeout,
	}
}

// Cache exposes the underlying cache so it can be registered for cleanup.
func (g *CachedGenerator) Cache() *cache.LRUCache[[]Tip] { return g.cache }

// Generate returns cached tips or joins the shared provider call. The shared
// call is detached from any single caller's cancellation; a caller that
// gives up gets its own context error while the others keep waiting.
func (g *CachedGenerator) Generate(ctx context.Context, req Request) ([]Tip, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	key := req.Fingerprint()
	if tips, ok := g.cache.Get(key); ok {
		return append([]Tip(nil), tips...), nil
	}

	ch := g.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()

		tips, keep, err := g.generate(callCtx, req)
		if err != nil {
			return nil, err
		}
		if keep {
			g.cache.Set(key, tips)
		}
		return tips, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return append([]Tip(nil), res.Val.([]Tip)...), nil
	}
}

func (g *CachedGenerator) generate(ctx context.Context, req Request) ([]Tip, bool, error) {
	if cg, ok := g.next.(cachingGenerator); ok {
		return cg.generate(ctx, req)
	}
	tips, err := g.next.Generate(ctx, req)
	return tips, err == nil, err
}
