package benchmark

import (
	"strconv"

	"github.com/yndnr/omfamily/internal/telemetry/metric"
	"github.com/yndnr/omfamily/pkg/family"
	"github.com/yndnr/omfamily/pkg/labels"
	pkgmetric "github.com/yndnr/omfamily/pkg/metric"
)

// SeriesCounts are the family sizes benchmarks run against.
var SeriesCounts = []int{10, 1_000, 100_000}

// SmallSeriesCounts keeps encode benchmarks fast.
var SmallSeriesCounts = []int{10, 1_000}

type route struct {
	Method string
	Path   string
}

func (r route) Pairs() []labels.Pair {
	return []labels.Pair{{Name: "method", Value: r.Method}, {Name: "path", Value: r.Path}}
}

// routes returns n distinct struct keys.
func routes(n int) []route {
	out := make([]route, n)
	for i := range out {
		out[i] = route{Method: "GET", Path: "/r/" + strconv.Itoa(i)}
	}
	return out
}

// labelSets returns n distinct canonical label sets.
func labelSets(n int) []labels.Set {
	out := make([]labels.Set, n)
	for i := range out {
		out[i] = labels.MustNew("method", "GET", "path", "/r/"+strconv.Itoa(i))
	}
	return out
}

// prefill creates a counter family holding every key.
func prefill[S comparable](keys []S, opts ...family.Option[S]) family.Family[S, *pkgmetric.Counter] {
	f := family.NewDefault[S, pkgmetric.Counter](opts...)
	for _, k := range keys {
		f.GetOrCreate(k).Inc()
	}
	return f
}

// prefillRegistry registers a counter family with n series.
func prefillRegistry(n int) *metric.Registry {
	r := metric.NewRegistry(metric.WithoutRuntimeCollectors())
	f, err := metric.NewCounterFamily[route](r, "bench_requests", "Benchmark requests")
	if err != nil {
		panic(err)
	}
	for _, k := range routes(n) {
		f.GetOrCreate(k).Inc()
	}
	return r
}
