// Package family implements an OpenMetrics metric family: a concurrent,
// lazily populated cache mapping label-set values to metric instances of one
// declared kind.
//
// # Usage
//
//	requests := family.NewDefault[labels.Set, metric.Counter]()
//	requests.GetOrCreate(labels.MustNew("method", "GET")).Inc()
//
// Metric types that need construction arguments use New with a constructor:
//
//	latency := family.New[labels.Set](func() *metric.Histogram {
//		return metric.NewHistogram(metric.ExponentialBuckets(0.001, 2, 12))
//	})
//
// # Concurrency
//
// A Family guards its map with one sync.RWMutex. Lookups of existing keys take
// the shared lock only. A miss releases the shared lock, takes the exclusive
// lock, inserts a freshly constructed instance, then re-reads the key under a
// new shared lock.
//
// The insert is unconditional: when several goroutines miss the same key at
// the same time, each constructs an instance and the last insert wins.
// Increments applied to a losing instance between its construction and its
// replacement are lost. Constructors must therefore be side-effect free and
// callers must not rely on exactly-once construction. WithStrictInsert
// re-checks the key under the exclusive lock and constructs exactly once.
//
// Entries are never removed.
//
// # Faults
//
// Methods return no errors. If the constructor or the WithOnCreate hook panics
// while the exclusive lock is held, the lock is released, the family is
// marked poisoned and the panic propagates. Every later call on the family or
// any of its clones panics with an error wrapping ErrPoisoned.
package family
