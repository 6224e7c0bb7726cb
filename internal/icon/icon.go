// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package icon

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

var (
	// ErrNotFound is wrapped by fetchers when the resource does not exist.
	ErrNotFound = errors.New("icon not found")
	// ErrEmptyName is returned for a lookup of "".
	ErrEmptyName = errors.New("icon name is empty")
	// ErrNotText covers empty bodies and bodies that are not UTF-8 text.
	ErrNotText = errors.New("icon resource is not text")
)

// Fetcher reads the full text of the resource at location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (string, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, location string) (string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, location string) (string, error) {
	return f(ctx, location)
}

// Target is anything whose displayable content can be replaced with markup.
type Target interface {
	SetContent(markup string) error
}

// Observer receives cache events. Implementations must be safe for
// concurrent use.
type Observer interface {
	Hit(name string)
	Miss(name string)
	Fetched(name string, took time.Duration, size int)
	Failed(name string, err error)
}

type nopObserver struct{}

func (nopObserver) Hit(string)                         {}
func (nopObserver) Miss(string)                        {}
func (nopObserver) Fetched(string, time.Duration, int) {}
func (nopObserver) Failed(string, error)               {}

// FetchError is the single failure kind produced by a lookup. It carries the
// icon name and location alongside the underlying cause.
type FetchError struct {
	Name     string
	Location string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("fetch icon %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("fetch icon %q from %s: %v", e.Name, e.Location, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a lookup. Exactly one of Content or Err is set.
type Result struct {
	Name     string
	Location string
	Content  string
	// Cached is true when the content came from the memo without I/O.
	Cached bool
	Err    error
}

// Ok reports whether the lookup produced content.
func (r Result) Ok() bool {
	return r.Err == nil
}

// Entry describes one memoized icon.
type Entry struct {
	Name     string
	Location string
	Size     int
	Fetches  int
}

// Stats are running counters for a Cache. Failures counts failed lookups, so
// one failed fetch shared by several waiting callers counts once per caller.
type Stats struct {
	Hits     int
	Misses   int
	Failures int
	Fetches  int
}

// checkText rejects bodies that cannot be rendered as markup.
func checkText(content string) error {
	if content == "" {
		return fmt.Errorf("%w: empty body", ErrNotText)
	}
	if !utf8.ValidString(content) {
		return fmt.Errorf("%w: invalid utf-8", ErrNotText)
	}
	return nil
}
