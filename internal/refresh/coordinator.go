// Package refresh drives collection fetches and applies the results to the
// snapshot store.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"kindra/internal/core"
	"kindra/internal/source"
	"kindra/internal/store"
)

// defaultConcurrency bounds parallel upstream fetches per batch.
const defaultConcurrency = 4

const defaultTimeout = 30 * time.Second

// Persister stores fetched collections outside process memory so a restart
// can serve the last known snapshot before the first fetch completes.
type Persister interface {
	SaveCollection(ctx context.Context, collection string, records any, fetchedAt time.Time) error
}

// Result reports one refresh batch. A collection appears in exactly one of
// the two sets.
type Result struct {
	Refreshed []string
	Failed    map[string]error
}

// Coordinator fetches collections concurrently and replaces them in the
// store as each fetch lands. Failures degrade per collection: the previous
// data stays in place and the rest of the batch continues.
type Coordinator struct {
	fetcher source.Fetcher
	store   *store.Store
	persist Persister
	logger  *slog.Logger
	timeout time.Duration

	group singleflight.Group

	mu       sync.Mutex
	onCommit []func()
}

type Option func(*Coordinator)

// WithPersister enables snapshot persistence after each successful fetch.
func WithPersister(p Persister) Option {
	return func(c *Coordinator) { c.persist = p }
}

// WithTimeout bounds one refresh batch.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

func New(fetcher source.Fetcher, st *store.Store, logger *slog.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		fetcher: fetcher,
		store:   st,
		logger:  logger,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnCommit registers a hook run after every batch that refreshed at least
// one collection. Used to invalidate derived caches.
func (c *Coordinator) OnCommit(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCommit = append(c.onCommit, fn)
}

// RefreshAll fetches every collection. Concurrent callers are coalesced
// into one in-flight batch and share its result.
func (c *Coordinator) RefreshAll(ctx context.Context) (Result, error) {
	v, err, shared := c.group.Do("all", func() (any, error) {
		return c.run(ctx, core.Collections)
	})
	if err != nil {
		return Result{}, err
	}
	if shared {
		c.logger.DebugContext(ctx, "Refresh coalesced with in-flight batch")
	}
	return v.(Result), nil
}

// RefreshCollection fetches a single collection.
func (c *Coordinator) RefreshCollection(ctx context.Context, collection string) error {
	res, err := c.run(ctx, []string{collection})
	if err != nil {
		return err
	}
	if ferr, ok := res.Failed[collection]; ok {
		return ferr
	}
	return nil
}

// TriggerAsync starts a full refresh without waiting for it. The batch runs
// on a background context so it outlives the caller's request.
func (c *Coordinator) TriggerAsync() {
	go func() {
		if _, err := c.RefreshAll(context.Background()); err != nil {
			c.logger.Error("Background refresh failed", "error", err)
		}
	}()
}

func (c *Coordinator) run(ctx context.Context, collections []string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()
	res := Result{Failed: make(map[string]error)}
	var mu sync.Mutex

	// Failures are recorded, not returned: one dead upstream domain must
	// not cancel the sibling fetches.
	g := &errgroup.Group{}
	g.SetLimit(defaultConcurrency)
	for _, name := range collections {
		name := name
		g.Go(func() error {
			err := c.refreshOne(ctx, name)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed[name] = err
			} else {
				res.Refreshed = append(res.Refreshed, name)
			}
			return nil
		})
	}
	_ = g.Wait() // the closures above always return nil
	sort.Strings(res.Refreshed)

	if len(res.Refreshed) == 0 && len(res.Failed) > 0 {
		return res, fmt.Errorf("refresh failed for all %d collections", len(res.Failed))
	}

	for name, err := range res.Failed {
		c.logger.WarnContext(ctx, "Collection refresh failed, keeping previous data",
			"collection", name,
			"error", err)
	}
	c.logger.InfoContext(ctx, "Refresh batch complete",
		"refreshed", len(res.Refreshed),
		"failed", len(res.Failed),
		"duration", time.Since(started))

	if len(res.Refreshed) > 0 {
		c.runCommitHooks()
	}
	return res, nil
}

func (c *Coordinator) refreshOne(ctx context.Context, collection string) error {
	records, err := c.fetcher.Fetch(ctx, collection)
	if err != nil {
		return err
	}

	fetchedAt := time.Now().UTC()
	if err := c.store.Replace(collection, records, fetchedAt); err != nil {
		return err
	}

	if c.persist != nil {
		if err := c.persist.SaveCollection(ctx, collection, records, fetchedAt); err != nil {
			// The in-memory snapshot is already updated; persistence is
			// only a warm-start optimization.
			c.logger.WarnContext(ctx, "Failed to persist collection",
				"collection", collection,
				"error", err)
		}
	}
	return nil
}

func (c *Coordinator) runCommitHooks() {
	c.mu.Lock()
	hooks := append([]func(){}, c.onCommit...)
	c.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}
