package metric

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/yndnr/omfamily/pkg/labels"
	"github.com/yndnr/omfamily/pkg/metric"
)

var helpEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)

// series is the samples of one instance, in emission order.
type series struct {
	key     string
	pairs   []labels.Pair
	samples []metric.Sample
}

// Encode writes every registered family in the OpenMetrics text format.
// Families are sorted by name and instances by label set, and the output
// ends with "# EOF".
func (r *Registry) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, e := range r.sorted() {
		encodeFamily(bw, e)
	}
	bw.WriteString("# EOF\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	return nil
}

func encodeFamily(w *bufio.Writer, e *entry) {
	help := e.help
	if !strings.HasSuffix(help, ".") {
		help += "."
	}
	fmt.Fprintf(w, "# HELP %s %s\n", e.name, helpEscaper.Replace(help))
	fmt.Fprintf(w, "# TYPE %s %s\n", e.name, e.c.MetricType())

	for _, s := range collectSeries(e.c) {
		for _, sample := range s.samples {
			pairs := s.pairs
			if sample.Label.Name != "" {
				pairs = append(pairs[:len(pairs):len(pairs)], sample.Label)
			}
			w.WriteString(e.name)
			w.WriteString(sample.Suffix)
			w.WriteString(labels.Format(pairs))
			w.WriteByte(' ')
			w.WriteString(metric.FormatFloat(sample.Value))
			w.WriteByte('\n')
		}
	}
}

// collectSeries runs one collection pass and groups samples per label set,
// sorted by the rendered label set.
func collectSeries(c Collector) []*series {
	var (
		list []*series
		last *series
	)
	c.Collect(func(pairs []labels.Pair, s metric.Sample) {
		key := labels.Format(pairs)
		if last == nil || last.key != key {
			last = &series{key: key, pairs: pairs}
			list = append(list, last)
		}
		last.samples = append(last.samples, s)
	})
	sort.SliceStable(list, func(i, j int) bool { return list[i].key < list[j].key })
	return list
}
