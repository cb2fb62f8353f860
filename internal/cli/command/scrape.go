package command

import (
	"context"
	"sort"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yndnr/omfamily/internal/cli/connection"
	"github.com/yndnr/omfamily/pkg/labels"
)

// maxConcurrentScrapes bounds the number of targets fetched at once.
const maxConcurrentScrapes = 8

// FamilyRow summarizes one scraped family.
type FamilyRow struct {
	Target string `json:"target" yaml:"target"`
	Name   string `json:"name" yaml:"name"`
	Type   string `json:"type" yaml:"type"`
	Series int    `json:"series" yaml:"series"`
	Help   string `json:"help" yaml:"help" table:"wide"`
}

// SampleRow is one series of a scraped family.
type SampleRow struct {
	Target string  `json:"target" yaml:"target"`
	Name   string  `json:"name" yaml:"name"`
	Labels string  `json:"labels" yaml:"labels"`
	Value  float64 `json:"value" yaml:"value"`
}

// ScrapeCommand returns the scrape command.
func ScrapeCommand() *cli.Command {
	return &cli.Command{
		Name:  "scrape",
		Usage: "Fetch and summarize the metrics of one or more exporters",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "target",
				Aliases: []string{"t"},
				Usage:   "exporter to scrape (repeatable); defaults to the configured targets or --server",
			},
			&cli.StringFlag{
				Name:  "path",
				Usage: "metrics path",
			},
			&cli.StringFlag{
				Name:    "family",
				Aliases: []string{"f"},
				Usage:   "only show families with this name prefix",
			},
			&cli.BoolFlag{
				Name:  "samples",
				Usage: "list every series instead of a per-family summary",
			},
		},
		Action: scrape,
	}
}

func scrape(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	cfg := cliConfig(c)

	targets := c.StringSlice("target")
	if len(targets) == 0 {
		targets = cfg.Targets
	}
	if len(targets) == 0 {
		targets = []string{flags.Server}
	}
	path := cfg.MetricsPath
	if c.IsSet("path") {
		path = c.String("path")
	}

	results, err := scrapeAll(c.Context, targets, path, flags)
	if err != nil {
		return err
	}

	prefix := c.String("family")
	if c.Bool("samples") {
		return render(c, flags, sampleRows(targets, results, prefix))
	}
	return render(c, flags, familyRows(targets, results, prefix))
}

// scrapeAll fetches every target concurrently. results[i] belongs to
// targets[i]; the first failure cancels the rest.
func scrapeAll(ctx context.Context, targets []string, path string, flags *GlobalFlags) ([][]*dto.MetricFamily, error) {
	results := make([][]*dto.MetricFamily, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentScrapes)
	for i, target := range targets {
		g.Go(func() error {
			families, err := connection.NewHTTPClient(target, flags.Token, flags.Timeout).Scrape(ctx, path)
			if err != nil {
				return err
			}
			results[i] = families
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func familyRows(targets []string, results [][]*dto.MetricFamily, prefix string) []FamilyRow {
	var rows []FamilyRow
	for i, families := range results {
		for _, mf := range families {
			if !strings.HasPrefix(mf.GetName(), prefix) {
				continue
			}
			rows = append(rows, FamilyRow{
				Target: targets[i],
				Name:   mf.GetName(),
				Type:   strings.ToLower(mf.GetType().String()),
				Series: len(mf.GetMetric()),
				Help:   mf.GetHelp(),
			})
		}
	}
	return rows
}

func sampleRows(targets []string, results [][]*dto.MetricFamily, prefix string) []SampleRow {
	var rows []SampleRow
	for i, families := range results {
		for _, mf := range families {
			if !strings.HasPrefix(mf.GetName(), prefix) {
				continue
			}
			start := len(rows)
			for _, m := range mf.GetMetric() {
				rows = append(rows, SampleRow{
					Target: targets[i],
					Name:   mf.GetName(),
					Labels: labelString(m.GetLabel()),
					Value:  sampleValue(mf.GetType(), m),
				})
			}
			series := rows[start:]
			sort.SliceStable(series, func(a, b int) bool { return series[a].Labels < series[b].Labels })
		}
	}
	return rows
}

func labelString(pairs []*dto.LabelPair) string {
	out := make([]labels.Pair, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, labels.Pair{Name: p.GetName(), Value: p.GetValue()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return labels.Format(out)
}

// sampleValue picks the headline value of m; histograms and summaries report
// their observation count.
func sampleValue(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM, dto.MetricType_GAUGE_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount())
	case dto.MetricType_SUMMARY:
		return float64(m.GetSummary().GetSampleCount())
	default:
		return m.GetUntyped().GetValue()
	}
}
