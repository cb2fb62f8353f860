package command

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/omfamily/internal/cli/connection"
	"github.com/yndnr/omfamily/internal/cli/output"
	"github.com/yndnr/omfamily/internal/telemetry/metric"
)

// FamiliesCommand lists the families of a running exporter.
func FamiliesCommand() *cli.Command {
	return &cli.Command{
		Name:   "families",
		Usage:  "List the metric families registered in an exporter",
		Action: listFamilies,
	}
}

func listFamilies(c *cli.Context) error {
	cl, flags, err := client(c)
	if err != nil {
		return err
	}

	resp, err := cl.Get(c.Context, "/families", "application/json")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var result struct {
		Families []metric.FamilyInfo `json:"families"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	return render(c, flags, result.Families)
}

// OpenMetricsCommand prints an exporter's native OpenMetrics exposition.
func OpenMetricsCommand() *cli.Command {
	return &cli.Command{
		Name:    "openmetrics",
		Aliases: []string{"om"},
		Usage:   "Print the OpenMetrics text of an exporter",
		Action: func(c *cli.Context) error {
			cl, _, err := client(c)
			if err != nil {
				return err
			}
			resp, err := cl.Get(c.Context, "/openmetrics", "application/openmetrics-text")
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			text, err := connection.ReadText(resp)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(c.App.Writer, text)
			return err
		},
	}
}

// HelloCommand calls the exporter's demo endpoint, creating request series.
func HelloCommand() *cli.Command {
	return &cli.Command{
		Name:  "hello",
		Usage: "Call the exporter's /hello endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "who to greet"},
			&cli.BoolFlag{Name: "put", Usage: "use PUT instead of GET"},
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 1, Usage: "number of calls"},
		},
		Action: hello,
	}
}

func hello(c *cli.Context) error {
	cl, flags, err := client(c)
	if err != nil {
		return err
	}

	path := "/hello"
	if name := c.String("name"); name != "" {
		path += "?name=" + url.QueryEscape(name)
	}

	var result struct {
		Greeting string `json:"greeting" yaml:"greeting"`
	}
	for i := 0; i < c.Int("count"); i++ {
		var resp *http.Response
		if c.Bool("put") {
			resp, err = cl.Put(c.Context, path)
		} else {
			resp, err = cl.Get(c.Context, path, "application/json")
		}
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		if err := connection.ParseResponse(resp, &result); err != nil {
			return err
		}
	}

	if flags.Output == output.FormatTable {
		_, err := fmt.Fprintln(c.App.Writer, result.Greeting)
		return err
	}
	return render(c, flags, result)
}
