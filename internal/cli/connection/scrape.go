package connection

import (
	"context"
	"fmt"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
)

// textAccept asks for the classic text format, which expfmt.TextParser reads.
const textAccept = "text/plain;version=0.0.4"

// Scrape fetches path and parses it as a Prometheus text exposition. The
// families are returned sorted by name.
func (c *HTTPClient) Scrape(ctx context.Context, path string) ([]*dto.MetricFamily, error) {
	resp, err := c.Get(ctx, path, textAccept)
	if err != nil {
		return nil, fmt.Errorf("scrape %s%s: %w", c.baseURL, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("scrape %s%s: %w", c.baseURL, path, statusError(resp))
	}

	parser := expfmt.NewTextParser(model.UTF8Validation)
	byName, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s%s: %w", c.baseURL, path, err)
	}

	families := make([]*dto.MetricFamily, 0, len(byName))
	for _, mf := range byName {
		families = append(families, mf)
	}
	sort.Slice(families, func(i, j int) bool {
		return families[i].GetName() < families[j].GetName()
	})
	return families, nil
}
