package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/omfamily/internal/telemetry/metric"
	"github.com/yndnr/omfamily/pkg/family"
	"github.com/yndnr/omfamily/pkg/labels"
)

// DemoCommand runs the GET/PUT counter walkthrough on a local registry.
func DemoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Populate a local counter family and print its OpenMetrics text",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "get", Value: 1, Usage: "increments of the method=GET counter"},
			&cli.BoolFlag{Name: "strict", Usage: "construct each label set exactly once"},
		},
		Action: demo,
	}
}

func demo(c *cli.Context) error {
	reg := metric.NewRegistry(metric.WithoutRuntimeCollectors())

	var opts []family.Option[labels.Set]
	if c.Bool("strict") {
		opts = append(opts, family.WithStrictInsert[labels.Set]())
	}
	requests, err := metric.NewCounterFamily(reg, "requests", "Requests by method", opts...)
	if err != nil {
		return err
	}

	get := labels.MustNew("method", "GET")
	for i := 0; i < c.Int("get"); i++ {
		requests.GetOrCreate(get).Inc()
	}
	if v := requests.GetOrCreate(get).Get(); v != uint64(c.Int("get")) {
		return fmt.Errorf("demo: method=GET reads %d, want %d", v, c.Int("get"))
	}
	if v := requests.GetOrCreate(labels.MustNew("method", "PUT")).Get(); v != 0 {
		return fmt.Errorf("demo: method=PUT reads %d, want 0", v)
	}

	return reg.Encode(c.App.Writer)
}
