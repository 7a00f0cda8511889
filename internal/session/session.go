// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session keeps per-page state in memory, keyed by the page id that
// the landing page embeds into its signals.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidID is returned for ids that are not UUIDs.
var ErrInvalidID = errors.New("session: invalid page id")

// ErrClosed is returned after the registry has been closed.
var ErrClosed = errors.New("session: registry closed")

// DefaultMaxEntries bounds the registry when no WithMaxEntries option is given.
const DefaultMaxEntries = 10000

// Closer is implemented by values held in a Registry. Close is called once
// when the entry is swept, evicted or the registry shuts down.
type Closer interface {
	Close()
}

type entry[V Closer] struct {
	value    V
	lastSeen time.Time
}

// Registry maps page ids to values created on first use.
type Registry[V Closer] struct {
	mu         sync.Mutex
	entries    map[string]*entry[V]
	newValue   func(id string) V
	maxEntries int
	now        func() time.Time
	closed     bool
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	maxEntries int
	now        func() time.Time
}

// WithMaxEntries caps the number of live entries. When the cap is reached the
// least recently seen entry is evicted.
func WithMaxEntries(n int) Option {
	return func(o *options) { o.maxEntries = n }
}

// WithNow overrides the time source, for tests.
func WithNow(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewRegistry creates a registry that builds values with newValue.
func NewRegistry[V Closer](newValue func(id string) V, opts ...Option) *Registry[V] {
	o := options{maxEntries: DefaultMaxEntries, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry[V]{
		entries:    make(map[string]*entry[V]),
		newValue:   newValue,
		maxEntries: o.maxEntries,
		now:        o.now,
	}
}

// NewID mints a fresh page id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id is a well-formed page id.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// GetOrCreate returns the value for id, creating it if needed, and marks the
// entry as seen. created reports whether a new value was built.
func (r *Registry[V]) GetOrCreate(id string) (v V, created bool, err error) {
	if !ValidID(id) {
		return v, false, ErrInvalidID
	}

	var evicted *entry[V]

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return v, false, ErrClosed
	}
	now := r.now()
	if e, ok := r.entries[id]; ok {
		e.lastSeen = now
		r.mu.Unlock()
		return e.value, false, nil
	}
	if r.maxEntries > 0 && len(r.entries) >= r.maxEntries {
		evicted = r.evictOldestLocked()
	}
	e := &entry[V]{value: r.newValue(id), lastSeen: now}
	r.entries[id] = e
	r.mu.Unlock()

	if evicted != nil {
		evicted.value.Close()
	}
	return e.value, true, nil
}

// Get returns the value for id without creating one.
func (r *Registry[V]) Get(id string) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		var zero V
		return zero, false
	}
	e.lastSeen = r.now()
	return e.value, true
}

// Delete removes and closes the entry for id.
func (r *Registry[V]) Delete(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()

	if ok {
		e.value.Close()
	}
}

// Sweep closes and removes entries not seen for longer than ttl and returns
// how many were removed.
func (r *Registry[V]) Sweep(ttl time.Duration) int {
	r.mu.Lock()
	cutoff := r.now().Add(-ttl)
	var expired []V
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.value)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, v := range expired {
		v.Close()
	}
	return len(expired)
}

// Len returns the number of live entries.
func (r *Registry[V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close closes every entry. Later GetOrCreate calls fail with ErrClosed.
func (r *Registry[V]) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry[V])
	r.closed = true
	r.mu.Unlock()

	for _, e := range entries {
		e.value.Close()
	}
}

func (r *Registry[V]) evictOldestLocked() *entry[V] {
	var (
		oldestID string
		oldest   *entry[V]
	)
	for id, e := range r.entries {
		if oldest == nil || e.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, e
		}
	}
	if oldest != nil {
		delete(r.entries, oldestID)
	}
	return oldest
}
