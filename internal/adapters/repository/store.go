// Package repository holds the current dataset snapshot. Readers get an
// immutable view without locking; a reload swaps the pointer atomically.
package repository

import (
	"sync/atomic"
	"time"

	"github.com/mbaleato/rota/internal/domain/dataset"
)

// Store is the snapshot contract consumed by the service layer.
type Store interface {
	// Current returns the active dataset view. Always safe to call; an
	// empty dataset is returned before the first Swap.
	Current() dataset.Dataset

	// Swap installs a new snapshot and returns the previous row count.
	Swap(ds dataset.Dataset) int

	// LoadedAt reports when the active snapshot was installed; zero before
	// the first Swap.
	LoadedAt() time.Time
}

type snapshot struct {
	ds       dataset.Dataset
	loadedAt time.Time
}

// Snapshot is the in-memory Store. The zero value is not usable; use New.
type Snapshot struct {
	current atomic.Pointer[snapshot]
	clock   func() time.Time
}

// Option applies a configuration option to the Snapshot store.
type Option func(*Snapshot)

// WithClock overrides the time source used for LoadedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Snapshot) {
		if now != nil {
			s.clock = now
		}
	}
}

// New creates an empty snapshot store.
func New(opts ...Option) *Snapshot {
	s := &Snapshot{clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&snapshot{})
	return s
}

func (s *Snapshot) Current() dataset.Dataset {
	return s.current.Load().ds
}

func (s *Snapshot) Swap(ds dataset.Dataset) int {
	prev := s.current.Swap(&snapshot{ds: ds, loadedAt: s.clock()})
	return prev.ds.Len()
}

func (s *Snapshot) LoadedAt() time.Time {
	return s.current.Load().loadedAt
}
