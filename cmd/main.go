// 程序入口：读取配置、执行分析流水线并按显示方式输出气泡地图
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"votemap/internal/config"
	"votemap/internal/logger"
	"votemap/internal/pipeline"
	"votemap/internal/render"
)

func main() {
	logger.Setup()
	l := logger.WithRun(uuid.NewString())
	l.Debug("log_init_ok")

	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	l.Debug("config_inputs", "results", cfg.ResultsPath, "locations", cfg.LocationsPath, "mapping", cfg.PartyMapping)
	l.Debug("config_map", "display", cfg.Map.Display, "addr", cfg.Map.Addr, "output", cfg.Map.Output, "geocode", cfg.Map.Geocode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		l.Error("run_error", "err", err)
		os.Exit(1)
	}
	l.Info("run_ok", "locations", len(res.Ranked), "plotted", len(res.Ranked)-len(res.Report.Unmatched), "unmatched", len(res.Report.Unmatched))

	if err := render.Display(ctx, res.Figure, cfg.Map, render.Browser); err != nil {
		l.Error("display_error", "err", err)
		os.Exit(1)
	}
}
