// 诊断入口：只做清洗、归并、排名与坐标连接，打印排名表与连接报告；不渲染，不需要地图令牌
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	"votemap/internal/config"
	"votemap/internal/logger"
	"votemap/internal/pipeline"
)

func main() {
	logger.Setup()
	l := logger.WithRun(uuid.NewString())
	config.LoadEnvFiles()
	in, err := config.LoadInputs()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	res, err := pipeline.Analyze(context.Background(), *in, nil)
	if err != nil {
		l.Error("check_error", "err", err)
		os.Exit(1)
	}
	if err := report(os.Stdout, res); err != nil {
		l.Error("report_error", "err", err)
		os.Exit(1)
	}
}

func report(out io.Writer, res *pipeline.Result) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LOCATION\tRANK 1\tRANK 2\tRANK 3\tRANK 4\tRANK 5\tSTACKED")
	for _, r := range res.Ranked {
		cells := []string{r.Location}
		var stacked []string
		for _, e := range r.Ranks {
			cells = append(cells, fmt.Sprintf("%s %d", e.Party, e.Votes))
			stacked = append(stacked, fmt.Sprint(e.Value))
		}
		cells = append(cells, strings.Join(stacked, "/"))
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "reduced parties: %s\n", orNone(res.Reduction.Reduced))
	fmt.Fprintf(out, "dropped columns: %s\n", orNone(res.Reduction.Dropped))
	for _, m := range res.Mismatches {
		fmt.Fprintf(out, "total mismatch: %s candidates=%d total=%d\n", m.Location, m.Candidates, m.Total)
	}
	rep := res.Report
	fmt.Fprintf(out, "matched %d of %d locations\n", rep.Matched, len(res.Ranked))
	fmt.Fprintf(out, "overridden: %s\n", orNone(rep.Overridden))
	fmt.Fprintf(out, "unmatched: %s\n", orNone(rep.Unmatched))
	if c := res.Clearance; c != nil && !c.Clear() {
		fmt.Fprintf(out, "warning: override point is %.0f m from %s (inside site bounds: %t)\n", c.DistanceMeters, c.Nearest, c.InsideBound)
	}
	return nil
}

func orNone(v []string) string {
	if len(v) == 0 {
		return "none"
	}
	return strings.Join(v, ", ")
}
