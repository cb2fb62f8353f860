package family

import "sync"

// Handle is a read-locked reference to a metric instance. Release unlocks
// the family; it is safe to call more than once.
type Handle[M any] struct {
	metric  M
	release func()
	once    sync.Once
}

func newHandle[M any](m M, release func()) *Handle[M] {
	return &Handle[M]{metric: m, release: release}
}

// Metric returns the referenced instance.
func (h *Handle[M]) Metric() M {
	return h.metric
}

// Release drops the read lock held by the handle.
func (h *Handle[M]) Release() {
	h.once.Do(h.release)
}
