// Package artifactcache is the content-addressed store for computed
// artifacts. Lookups are answered from a bounded in-process index or the
// backing cache clusters; misses collapse into a single computation per
// fingerprint.
package artifactcache

import (
	"container/list"
	"context"
	"errors"
	"sync"

	"encore.dev/rlog"
	"golang.org/x/sync/singleflight"

	"encore.app/analysis/model"
)

// ErrMiss signals that the backing store has no entry for a fingerprint.
var ErrMiss = errors.New("artifact cache miss")

// Backing is the durable store behind the in-process index. Implementations
// separate artifact classes into distinct namespaces.
type Backing interface {
	Get(ctx context.Context, class model.ArtifactClass, fingerprint string) (model.Artifact, error)
	Set(ctx context.Context, class model.ArtifactClass, art model.Artifact) error
	Delete(ctx context.Context, class model.ArtifactClass, fingerprint string) error
}

// ComputeFunc produces the artifact for a fingerprint on a cache miss.
type ComputeFunc func(ctx context.Context) (model.Artifact, error)

// Origin says how a returned artifact was obtained.
type Origin string

const (
	// OriginHit means the artifact was already stored.
	OriginHit Origin = "hit"
	// OriginComputed means this caller took part in (or waited on) a
	// single-flight computation.
	OriginComputed Origin = "computed"
)

type indexEntry struct {
	key string
	art model.Artifact
}

// Cache layers a bounded LRU index and single-flight computation over a
// Backing store. Entries being computed live only in the flight group, so
// eviction can never remove an in-progress computation.
type Cache struct {
	backing     Backing
	entryBudget int

	flights singleflight.Group

	mu    sync.Mutex
	index map[string]*list.Element
	order *list.List // front is most recently used
}

// New creates a cache holding at most entryBudget artifacts in the
// in-process index.
func New(backing Backing, entryBudget int) *Cache {
	if entryBudget <= 0 {
		entryBudget = 256
	}
	return &Cache{
		backing:     backing,
		entryBudget: entryBudget,
		index:       make(map[string]*list.Element),
		order:       list.New(),
	}
}

// GetOrCompute returns the artifact for a fingerprint, computing it at most
// once across concurrent callers. Every caller of the same in-flight
// computation receives the identical artifact or the identical failure. A
// caller whose context ends stops waiting without disturbing other waiters:
// the computation itself is bounded by the work unit deadline, not by any
// single caller.
func (c *Cache) GetOrCompute(ctx context.Context, class model.ArtifactClass, fingerprint string, compute ComputeFunc) (model.Artifact, Origin, error) {
	key := string(class) + "/" + fingerprint

	if art, ok := c.lookup(key); ok {
		return art, OriginHit, nil
	}

	if art, ok := c.lookupBacking(ctx, class, fingerprint); ok {
		c.insert(key, art)
		return art, OriginHit, nil
	}

	computeCtx := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(key, func() (interface{}, error) {
		art, err := compute(computeCtx)
		if err != nil {
			return nil, err
		}
		if err := c.backing.Set(computeCtx, class, art); err != nil {
			rlog.Error("failed to store computed artifact", "fingerprint", fingerprint, "class", class, "error", err)
		}
		c.insert(key, art)
		return art, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return model.Artifact{}, OriginComputed, res.Err
		}
		return res.Val.(model.Artifact), OriginComputed, nil
	case <-ctx.Done():
		return model.Artifact{}, OriginComputed, ctx.Err()
	}
}

// lookup checks the in-process index and refreshes recency on a hit.
func (c *Cache) lookup(key string) (model.Artifact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if !ok {
		return model.Artifact{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*indexEntry).art, true
}

// lookupBacking consults the backing store. Unreadable entries are dropped
// and reported as misses so the caller recomputes them; backing outages are
// also treated as misses rather than failing the request.
func (c *Cache) lookupBacking(ctx context.Context, class model.ArtifactClass, fingerprint string) (model.Artifact, bool) {
	art, err := c.backing.Get(ctx, class, fingerprint)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			rlog.Warn("artifact backing store lookup failed, treating as miss",
				"fingerprint", fingerprint, "class", class, "error", err)
		}
		return model.Artifact{}, false
	}
	if verr := art.Verify(fingerprint); verr != nil {
		rlog.Warn("stored artifact unreadable, dropping and recomputing",
			"fingerprint", fingerprint, "class", class, "error", verr)
		if derr := c.backing.Delete(ctx, class, fingerprint); derr != nil {
			rlog.Error("failed to drop corrupt artifact", "fingerprint", fingerprint, "error", derr)
		}
		return model.Artifact{}, false
	}
	return art, true
}

// insert adds a completed artifact to the index, evicting least-recently
// used entries beyond the budget. Only finished artifacts ever enter the
// index, so in-progress computations are not evictable.
func (c *Cache) insert(key string, art model.Artifact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		// Artifacts are immutable per fingerprint; just refresh recency.
		c.order.MoveToFront(el)
		return
	}
	c.index[key] = c.order.PushFront(&indexEntry{key: key, art: art})
	for len(c.index) > c.entryBudget {
		tail := c.order.Back()
		if tail == nil {
			return
		}
		c.order.Remove(tail)
		delete(c.index, tail.Value.(*indexEntry).key)
	}
}

// Len reports the current index size.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}
