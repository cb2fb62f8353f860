package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/omfamily/internal/server/config"
	"github.com/yndnr/omfamily/internal/telemetry/logger"
	"github.com/yndnr/omfamily/internal/telemetry/metric"
	"github.com/yndnr/omfamily/pkg/family"
	"github.com/yndnr/omfamily/pkg/labels"
	pkgmetric "github.com/yndnr/omfamily/pkg/metric"
)

// Family names registered by NewInstruments.
const (
	RequestsName         = "http_requests"
	RequestDurationName  = "http_request_duration_seconds"
	RequestsInFlightName = "http_requests_in_flight"
)

// unmatchedPath labels requests that no route matched.
const unmatchedPath = "unmatched"

// otherMethod labels requests with a non-standard method.
const otherMethod = "other"

type requestLabels struct {
	Method string
	Path   string
	Code   string
}

func (l requestLabels) Pairs() []labels.Pair {
	return []labels.Pair{{Name: "code", Value: l.Code}, {Name: "method", Value: l.Method}, {Name: "path", Value: l.Path}}
}

type routeLabels struct {
	Method string
	Path   string
}

func (l routeLabels) Pairs() []labels.Pair {
	return []labels.Pair{{Name: "method", Value: l.Method}, {Name: "path", Value: l.Path}}
}

type methodLabels struct {
	Method string
}

func (l methodLabels) Pairs() []labels.Pair {
	return []labels.Pair{{Name: "method", Value: l.Method}}
}

// Instruments holds the HTTP server families.
type Instruments struct {
	requests family.Family[requestLabels, *pkgmetric.Counter]
	duration family.Family[routeLabels, *pkgmetric.Histogram]
	inFlight family.Family[methodLabels, *pkgmetric.Gauge]
}

// InstrumentsOption configures NewInstruments.
type InstrumentsOption func(*instrumentsOptions)

type instrumentsOptions struct {
	logger logger.Logger
}

// WithSeriesLogger logs every label set the HTTP families create at debug level.
func WithSeriesLogger(l logger.Logger) InstrumentsOption {
	return func(o *instrumentsOptions) { o.logger = l }
}

// NewInstruments registers the HTTP server families in r.
func NewInstruments(r *metric.Registry, cfg config.FamilySection, opts ...InstrumentsOption) (*Instruments, error) {
	var o instrumentsOptions
	for _, opt := range opts {
		opt(&o)
	}

	var (
		in  Instruments
		err error
	)

	in.requests, err = metric.NewCounterFamily(r, RequestsName, "HTTP requests served", familyOpts[requestLabels](cfg, RequestsName, o.logger)...)
	if err != nil {
		return nil, err
	}
	in.duration, err = metric.NewHistogramFamily(r, RequestDurationName, "HTTP request latency in seconds", cfg.LatencyBuckets, familyOpts[routeLabels](cfg, RequestDurationName, o.logger)...)
	if err != nil {
		return nil, err
	}
	in.inFlight, err = metric.NewGaugeFamily(r, RequestsInFlightName, "HTTP requests currently being served", familyOpts[methodLabels](cfg, RequestsInFlightName, o.logger)...)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func familyOpts[S metric.LabelSet](cfg config.FamilySection, name string, l logger.Logger) []family.Option[S] {
	var opts []family.Option[S]
	if cfg.StrictInsert {
		opts = append(opts, family.WithStrictInsert[S]())
	}
	if l != nil {
		opts = append(opts, family.WithOnCreate(func(key S) {
			l.Debug("series created", "family", name, "labels", labels.Format(key.Pairs()))
		}))
	}
	return opts
}

// Instrument records each request into the families. It must wrap the
// ServeMux directly so the matched pattern is visible after serving.
func (in *Instruments) Instrument() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			method := sanitizeMethod(r.Method)

			inFlight := in.inFlight.GetOrCreate(methodLabels{Method: method})
			inFlight.Inc()
			defer inFlight.Dec()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			path := routePath(r.Pattern)
			in.duration.GetOrCreate(routeLabels{Method: method, Path: path}).Observe(time.Since(start).Seconds())
			in.requests.GetOrCreate(requestLabels{
				Method: method,
				Path:   path,
				Code:   strconv.Itoa(wrapped.statusCode),
			}).Inc()
		})
	}
}

// routePath strips the method from a ServeMux pattern.
func routePath(pattern string) string {
	if pattern == "" {
		return unmatchedPath
	}
	if _, path, ok := strings.Cut(pattern, " "); ok {
		return path
	}
	return pattern
}

// sanitizeMethod keeps the method label to the standard set; clients choose
// the method, and every distinct value would be a new series.
func sanitizeMethod(m string) string {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodConnect,
		http.MethodOptions, http.MethodTrace:
		return m
	}
	return otherMethod
}
