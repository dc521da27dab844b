package models

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// FetchStatus is the lifecycle state of a category fetch.
type FetchStatus string

const (
	FetchPending FetchStatus = "pending"
	FetchLoaded  FetchStatus = "loaded"
	FetchFailed  FetchStatus = "failed"
)

// Fetch tracks one load of a resource category from the inventory source.
type Fetch struct {
	ID         string
	Category   Category
	StartedAt  time.Time
	status     FetchStatus
	finishedAt *time.Time
	err        string
	items      []Resource
	done       chan struct{}
	mu         sync.Mutex
}

// FetchState is an immutable copy of a Fetch, safe to hand to renderers.
type FetchState struct {
	ID         string      `json:"id"`
	Category   Category    `json:"category"`
	Status     FetchStatus `json:"status"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
	Error      string      `json:"error,omitempty"`
	Items      []Resource  `json:"items"`
}

// Pending reports whether the fetch has not settled yet.
func (s FetchState) Pending() bool { return s.Status == FetchPending }

// Done is closed once the fetch completes or fails.
func (f *Fetch) Done() <-chan struct{} { return f.done }

// State returns a snapshot of the fetch.
func (f *Fetch) State() FetchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FetchState{
		ID:         f.ID,
		Category:   f.Category,
		Status:     f.status,
		StartedAt:  f.StartedAt,
		FinishedAt: f.finishedAt,
		Error:      f.err,
		Items:      f.items,
	}
}

func (f *Fetch) settle(status FetchStatus, items []Resource, err string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status != FetchPending {
		return false
	}
	f.status = status
	if status == FetchLoaded {
		f.items = items
	}
	f.err = err
	now := time.Now()
	f.finishedAt = &now
	close(f.done)
	return true
}

func (f *Fetch) fresh(ttl time.Duration, now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.status {
	case FetchPending:
		return true
	case FetchLoaded:
		return ttl <= 0 || now.Sub(*f.finishedAt) < ttl
	default:
		return false
	}
}

// FetchStore is an in-memory thread-safe cache of category fetches. A category
// with a pending or fresh loaded fetch is never fetched again until it is
// invalidated or its TTL passes.
type FetchStore struct {
	mu      sync.RWMutex
	fetches map[Category]*Fetch
	ttl     time.Duration
	now     func() time.Time
	subs    map[int]chan Category
	nextSub int
}

// NewFetchStore creates an empty store. A zero ttl keeps loaded data until
// invalidated.
func NewFetchStore(ttl time.Duration) *FetchStore {
	return &FetchStore{
		fetches: make(map[Category]*Fetch),
		ttl:     ttl,
		now:     time.Now,
		subs:    make(map[int]chan Category),
	}
}

// Begin returns the fetch to wait on for a category. started is true when the
// caller owns a newly created fetch and must settle it with Complete or Fail.
func (s *FetchStore) Begin(c Category) (f *Fetch, started bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.fetches[c]; ok && existing.fresh(s.ttl, s.now()) {
		return existing, false
	}
	var carried []Resource
	if prev, ok := s.fetches[c]; ok {
		carried = prev.State().Items
	}
	f = &Fetch{
		ID:        uuid.New().String(),
		Category:  c,
		StartedAt: s.now(),
		status:    FetchPending,
		items:     carried,
		done:      make(chan struct{}),
	}
	s.fetches[c] = f
	return f, true
}

// Complete marks the fetch as loaded with the given items.
func (s *FetchStore) Complete(f *Fetch, items []Resource) {
	if items == nil {
		items = []Resource{}
	}
	if f.settle(FetchLoaded, items, "") {
		s.notify(f.Category)
	}
}

// Fail marks the fetch as failed. Items from an earlier load are kept.
func (s *FetchStore) Fail(f *Fetch, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if f.settle(FetchFailed, nil, msg) {
		s.notify(f.Category)
	}
}

// Get returns the current state of a category, or false if it was never fetched.
func (s *FetchStore) Get(c Category) (FetchState, bool) {
	s.mu.RLock()
	f, ok := s.fetches[c]
	s.mu.RUnlock()
	if !ok {
		return FetchState{}, false
	}
	return f.State(), true
}

// Invalidate drops the cached fetch for a category.
func (s *FetchStore) Invalidate(c Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fetches, c)
}

// InvalidateAll drops every cached fetch.
func (s *FetchStore) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches = make(map[Category]*Fetch)
}

// Subscribe registers for settle notifications. The returned cancel func must
// be called to release the subscription. Slow subscribers miss notifications
// rather than blocking fetches.
func (s *FetchStore) Subscribe() (<-chan Category, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Category, len(Categories))
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

func (s *FetchStore) notify(c Category) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
		}
	}
}
