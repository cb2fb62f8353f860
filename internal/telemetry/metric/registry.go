package metric

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yndnr/omfamily/pkg/cmap"
	"github.com/yndnr/omfamily/pkg/family"
	"github.com/yndnr/omfamily/pkg/labels"
	"github.com/yndnr/omfamily/pkg/metric"
)

// Registration errors.
var (
	ErrDuplicateName = errors.New("metric: family already registered")
	ErrInvalidName   = errors.New("metric: invalid metric name")
	ErrNilCollector  = errors.New("metric: nil collector")
)

// SeriesCreatedName is the family counting label sets created in families
// built by the registry helpers.
const SeriesCreatedName = "omfamily_series_created"

type entry struct {
	name string
	help string
	c    Collector
}

// runtimeOwner marks names claimed by the Go runtime and process collectors.
const runtimeOwner = "runtime collectors"

// Registry holds registered metric families.
type Registry struct {
	entries *cmap.Map[string, *entry]

	// claimed maps every exposed sample name to the family owning it.
	mu      sync.Mutex
	claimed map[string]string

	registry      *prometheus.Registry
	seriesCreated family.Family[labels.Set, *metric.Counter]
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	runtime bool
}

// WithoutRuntimeCollectors leaves out the Go runtime and process collectors.
func WithoutRuntimeCollectors() Option {
	return func(o *options) { o.runtime = false }
}

// NewRegistry creates an empty registry holding only the series-created family.
func NewRegistry(opts ...Option) *Registry {
	o := options{runtime: true}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{
		entries:       cmap.New[string, *entry](),
		claimed:       make(map[string]string),
		registry:      prometheus.NewRegistry(),
		seriesCreated: family.NewDefault[labels.Set, metric.Counter](family.WithStrictInsert[labels.Set]()),
	}
	if o.runtime {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		r.claimRuntimeNames()
	}
	r.registry.MustRegister(bridge{r: r})
	r.MustRegister(SeriesCreatedName, "Label sets created per family", FromFamily(r.seriesCreated))
	return r
}

var (
	globalRegistry *Registry
	globalOnce     sync.Once
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Register adds c under name. help is exposed in the HELP line.
//
// Register fails with ErrDuplicateName when any sample name the family would
// expose (name_total for a counter, name_bucket for a histogram and so on)
// is already exposed by another family or by the runtime collectors.
func (r *Registry) Register(name, help string, c Collector) error {
	if c == nil {
		return ErrNilCollector
	}
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	exposed := exposedNames(name, c.MetricType())

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries.Get(name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	for _, n := range exposed {
		if owner, ok := r.claimed[n]; ok {
			return fmt.Errorf("%w: %s exposes %s, already exposed by %s", ErrDuplicateName, name, n, owner)
		}
	}
	for _, n := range exposed {
		r.claimed[n] = name
	}
	r.entries.Set(name, &entry{name: name, help: help, c: c})
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name, help string, c Collector) {
	if err := r.Register(name, help, c); err != nil {
		panic(err)
	}
}

// Unregister removes the family registered under name.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries.Pop(name)
	if !ok {
		return false
	}
	for _, n := range exposedNames(name, e.c.MetricType()) {
		if r.claimed[n] == name {
			delete(r.claimed, n)
		}
	}
	return true
}

// exposedNames lists the names a family of type t registered under name
// puts on the wire.
func exposedNames(name string, t metric.Type) []string {
	switch t {
	case metric.TypeCounter:
		return []string{name, name + "_total"}
	case metric.TypeHistogram:
		return []string{name, name + "_bucket", name + "_sum", name + "_count"}
	case metric.TypeInfo:
		return []string{name, name + "_info"}
	default:
		return []string{name}
	}
}

// claimRuntimeNames reserves what the runtime collectors expose. Summaries
// and histograms among them also own their derived sample names.
func (r *Registry) claimRuntimeNames() {
	// Gather returns whatever it collected alongside any error.
	mfs, _ := r.registry.Gather()
	for _, mf := range mfs {
		for _, n := range []string{"", "_total", "_bucket", "_sum", "_count"} {
			r.claimed[mf.GetName()+n] = runtimeOwner
		}
	}
}

// Names returns the registered family names, sorted.
func (r *Registry) Names() []string {
	names := r.entries.Keys()
	sort.Strings(names)
	return names
}

// FamilyInfo describes a registered family.
type FamilyInfo struct {
	Name   string `json:"name" yaml:"name"`
	Help   string `json:"help" yaml:"help"`
	Type   string `json:"type" yaml:"type"`
	Series int    `json:"series" yaml:"series"`
}

// Families describes the registered families, sorted by name. Series is -1
// for collectors that cannot report their size.
func (r *Registry) Families() []FamilyInfo {
	list := r.sorted()
	out := make([]FamilyInfo, 0, len(list))
	for _, e := range list {
		info := FamilyInfo{Name: e.name, Help: e.help, Type: e.c.MetricType().String(), Series: -1}
		if l, ok := e.c.(interface{ Len() int }); ok {
			info.Series = l.Len()
		}
		out = append(out, info)
	}
	return out
}

// SeriesCreated returns how many label sets the registry helpers have
// created in the named family.
func (r *Registry) SeriesCreated(name string) uint64 {
	c, ok := r.seriesCreated.Get(labels.MustNew("family", name))
	if !ok {
		return 0
	}
	return c.Get()
}

// Gatherer returns the Prometheus view of the registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus text or OpenMetrics format,
// negotiated from the Accept header.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Handler serves the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

func (r *Registry) sorted() []*entry {
	var list []*entry
	r.entries.Range(func(_ string, e *entry) bool {
		list = append(list, e)
		return true
	})
	sort.Slice(list, func(i, j int) bool { return list[i].name < list[j].name })
	return list
}

// ValidName reports whether name is a legal metric name.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r == ':', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
