package family

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/yndnr/omfamily/pkg/metric"
)

// Faults raised as panics. See the package documentation.
var (
	ErrPoisoned           = errors.New("family: metric map poisoned by a panic during insert")
	ErrMissingAfterInsert = errors.New("family: metric missing after insert")
)

// Family is a set of metrics of one kind, differentiated by label-set values
// of type S. It is a small handle: copies and clones share one map.
//
// The zero Family is not usable; create one with New or NewDefault.
type Family[S comparable, M metric.Typed] struct {
	metrics     *store[S, M]
	constructor func() M
}

type store[S comparable, M any] struct {
	mu       sync.RWMutex
	items    map[S]M
	poisoned atomic.Bool

	strict   bool
	onCreate func(S)
}

// Option configures a Family at creation.
type Option[S comparable] func(*options[S])

type options[S comparable] struct {
	strict   bool
	onCreate func(S)
}

// WithStrictInsert makes the slow path re-check the key under the exclusive
// lock, so each key is constructed exactly once and no increments are lost.
func WithStrictInsert[S comparable]() Option[S] {
	return func(o *options[S]) { o.strict = true }
}

// WithOnCreate registers a hook called with the key after every insert.
// It runs under the exclusive lock and must not call back into the family.
// Without WithStrictInsert it may run more than once per key.
//
// Hooks from several WithOnCreate options run in the order given.
func WithOnCreate[S comparable](fn func(key S)) Option[S] {
	return func(o *options[S]) {
		if fn == nil {
			return
		}
		prev := o.onCreate
		if prev == nil {
			o.onCreate = fn
			return
		}
		o.onCreate = func(key S) {
			prev(key)
			fn(key)
		}
	}
}

// New creates an empty Family whose instances are built by constructor.
// constructor must be safe for concurrent use and free of side effects.
func New[S comparable, M metric.Typed](constructor func() M, opts ...Option[S]) Family[S, M] {
	if constructor == nil {
		panic("family: nil constructor")
	}

	var o options[S]
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return Family[S, M]{
		metrics: &store[S, M]{
			items:    make(map[S]M),
			strict:   o.strict,
			onCreate: o.onCreate,
		},
		constructor: constructor,
	}
}

// NewDefault creates an empty Family whose instances are zero values of T,
// e.g. NewDefault[labels.Set, metric.Counter]() tracks *metric.Counter.
func NewDefault[S comparable, T any, M interface {
	*T
	metric.Typed
}](opts ...Option[S]) Family[S, M] {
	return New[S, M](func() M { return M(new(T)) }, opts...)
}

// Clone returns a handle sharing this family's map and constructor.
func (f Family[S, M]) Clone() Family[S, M] {
	return f
}

// MetricType returns the declared kind of M without constructing an instance.
// It calls MetricType on the zero value of M, so M must be a concrete type
// whose method tolerates a nil receiver; an interface M reports TypeUnknown.
func (f Family[S, M]) MetricType() metric.Type {
	var zero M
	if any(zero) == nil {
		return metric.TypeUnknown
	}
	return zero.MetricType()
}

// GetOrCreate returns the instance for key, creating it on first use.
//
// The returned instance stays valid after the call: entries are never
// removed and instances guard their own state. Under concurrent first use of
// one key a returned instance may already have been replaced; see the
// package documentation.
func (f Family[S, M]) GetOrCreate(key S) M {
	m := f.acquire(key)
	f.metrics.mu.RUnlock()
	return m
}

// Acquire is GetOrCreate returning a handle that keeps the family read-locked
// until Release. Inserts into the family block while any handle is held.
//
// Calling GetOrCreate or Acquire for a missing key on the same family while
// holding a handle deadlocks.
func (f Family[S, M]) Acquire(key S) *Handle[M] {
	return newHandle(f.acquire(key), f.metrics.mu.RUnlock)
}

// acquire returns the instance for key with the read lock held.
func (f Family[S, M]) acquire(key S) M {
	s := f.metrics
	s.checkPoisoned()

	s.mu.RLock()
	if m, ok := s.items[key]; ok {
		return m
	}
	s.mu.RUnlock()

	s.insert(key, f.constructor)

	s.mu.RLock()
	m, ok := s.items[key]
	if !ok {
		s.mu.RUnlock()
		panic(fmt.Errorf("%w: %v", ErrMissingAfterInsert, key))
	}
	return m
}

// With calls fn with the instance for key while holding the family read lock.
// The lock is released on every exit path, including a panic in fn.
func (f Family[S, M]) With(key S, fn func(M)) {
	m := f.acquire(key)
	defer f.metrics.mu.RUnlock()
	fn(m)
}

// Get returns the instance for key without creating it.
func (f Family[S, M]) Get(key S) (M, bool) {
	s := f.metrics
	s.checkPoisoned()

	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.items[key]
	return m, ok
}

// Len returns the number of label sets in the family.
func (f Family[S, M]) Len() int {
	s := f.metrics
	s.checkPoisoned()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Range calls fn for each entry under one read-lock acquisition until fn
// returns false. The order is unspecified. fn must not call GetOrCreate for a
// missing key on the same family.
func (f Family[S, M]) Range(fn func(key S, m M) bool) {
	s := f.metrics
	s.checkPoisoned()

	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, m := range s.items {
		if !fn(k, m) {
			return
		}
	}
}

// Entry is a label set and its instance.
type Entry[S comparable, M any] struct {
	Key    S
	Metric M
}

// Snapshot returns the current entries, collected under one read lock.
// Instances are shared, not copied.
func (f Family[S, M]) Snapshot() []Entry[S, M] {
	var out []Entry[S, M]
	f.Range(func(k S, m M) bool {
		out = append(out, Entry[S, M]{Key: k, Metric: m})
		return true
	})
	return out
}

// insert stores a new instance for key under the exclusive lock.
func (s *store[S, M]) insert(key S, constructor func() M) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.poisoned.Store(true)
			panic(r)
		}
	}()

	if s.strict {
		if _, ok := s.items[key]; ok {
			return
		}
	}

	s.items[key] = constructor()
	if s.onCreate != nil {
		s.onCreate(key)
	}
}

func (s *store[S, M]) checkPoisoned() {
	if s.poisoned.Load() {
		panic(ErrPoisoned)
	}
}
