// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package icon

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/singleflight"
)

// Extension is appended to every icon name to build its location.
const Extension = ".svg"

// Cache memoizes icon markup by name.
//
// The lock is never held while fetching. Concurrent misses for the same name
// share a single in-flight fetch, and whatever is stored first for a name is
// what every later lookup returns.
type Cache struct {
	base     string
	fetcher  Fetcher
	observer Observer

	mu      sync.Mutex
	store   map[string]string
	fetches map[string]int
	stats   Stats

	flights singleflight.Group
}

// Option customizes a Cache.
type Option func(*Cache)

// WithObserver registers an observer for hits, misses, fetches and failures.
func WithObserver(o Observer) Option {
	return func(c *Cache) {
		if o != nil {
			c.observer = o
		}
	}
}

// New returns an empty cache resolving names against base with f.
func New(base string, f Fetcher, opts ...Option) *Cache {
	c := &Cache{
		base:     base,
		fetcher:  f,
		observer: nopObserver{},
		store:    make(map[string]string),
		fetches:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Base returns the location prefix the cache was built with.
func (c *Cache) Base() string {
	return c.base
}

// Location returns the resource location for name.
func (c *Cache) Location(name string) string {
	return c.base + name + Extension
}

// Lookup returns the markup for name, fetching it on the first request. A
// failed fetch leaves the cache unchanged and is reported in Result.Err as a
// *FetchError.
func (c *Cache) Lookup(ctx context.Context, name string) Result {
	if name == "" {
		err := &FetchError{Name: name, Err: ErrEmptyName}
		c.failed(name, err)
		return Result{Name: name, Err: err}
	}

	c.mu.Lock()
	if content, ok := c.store[name]; ok {
		c.stats.Hits++
		c.mu.Unlock()
		c.observer.Hit(name)
		return Result{Name: name, Location: c.Location(name), Content: content, Cached: true}
	}
	c.stats.Misses++
	c.mu.Unlock()
	c.observer.Miss(name)

	location := c.Location(name)

	// The flight outlives any single caller. Each caller stops waiting when
	// its own ctx ends, and the fetch itself is bounded by the fetcher's
	// timeout.
	ch := c.flights.DoChan(name, func() (interface{}, error) {
		return c.fetch(context.WithoutCancel(ctx), name, location)
	})

	var err error
	select {
	case res := <-ch:
		if res.Err == nil {
			return Result{Name: name, Location: location, Content: res.Val.(string)}
		}
		err = res.Err
	case <-ctx.Done():
		err = &FetchError{Name: name, Location: location, Err: ctx.Err()}
	}

	c.failed(name, err)
	return Result{Name: name, Location: location, Err: err}
}

func (c *Cache) fetch(ctx context.Context, name, location string) (string, error) {
	// A flight that finished between our miss and this call already stored it.
	c.mu.Lock()
	if content, ok := c.store[name]; ok {
		c.mu.Unlock()
		return content, nil
	}
	c.fetches[name]++
	c.stats.Fetches++
	c.mu.Unlock()

	log.Debugf("fetching icon %s from %s", name, location)

	start := time.Now()
	content, err := c.fetcher.Fetch(ctx, location)
	if err == nil {
		err = checkText(content)
	}
	if err != nil {
		return "", &FetchError{Name: name, Location: location, Err: err}
	}
	c.observer.Fetched(name, time.Since(start), len(content))

	c.mu.Lock()
	if existing, ok := c.store[name]; ok {
		content = existing
	} else {
		c.store[name] = content
	}
	c.mu.Unlock()

	return content, nil
}

func (c *Cache) failed(name string, err error) {
	c.mu.Lock()
	c.stats.Failures++
	c.mu.Unlock()
	c.observer.Failed(name, err)
}

// Resolve returns the markup for name, or "" if it could not be fetched. The
// failure is logged and never returned.
func (c *Cache) Resolve(ctx context.Context, name string) string {
	r := c.Lookup(ctx, name)
	if !r.Ok() {
		logFailure(r)
		return ""
	}
	return r.Content
}

// Apply replaces the content of t with the markup for name. When the icon
// cannot be resolved t is left untouched.
func (c *Cache) Apply(ctx context.Context, t Target, name string) {
	if _, err := c.ApplyResult(ctx, t, name); err != nil {
		log.WithField("name", name).WithError(err).Error("failed to apply icon")
	}
}

// ApplyResult is Apply for callers that need the outcome. The Result carries
// the lookup failure, if any, and the returned error is the target's write
// error. t is only written when the lookup succeeded.
func (c *Cache) ApplyResult(ctx context.Context, t Target, name string) (Result, error) {
	r := c.Lookup(ctx, name)
	if !r.Ok() {
		logFailure(r)
		return r, nil
	}
	return r, t.SetContent(r.Content)
}

func logFailure(r Result) {
	log.WithFields(log.Fields{
		"name":     r.Name,
		"location": r.Location,
	}).WithError(r.Err).Error("icon fetch failed")
}

// Has reports whether name has been resolved.
func (c *Cache) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.store[name]
	return ok
}

// Len returns the number of resolved icons.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

// Entries returns a snapshot of the resolved icons ordered by name.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	entries := make([]Entry, 0, len(c.store))
	for name, content := range c.store {
		entries = append(entries, Entry{
			Name:     name,
			Location: c.Location(name),
			Size:     len(content),
			Fetches:  c.fetches[name],
		})
	}
	c.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Fetches returns how many fetches have been issued for name.
func (c *Cache) Fetches(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches[name]
}

// Stats returns a copy of the running counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
