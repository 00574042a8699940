// 包 pipeline：按阶段串联 结果加载 → 候选人归并 → 排名 → 设施加载 → 坐标连接 → 渲染，错误带阶段标签
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/paulmach/orb"

	"votemap/internal/config"
	"votemap/internal/geo"
	"votemap/internal/logger"
	"votemap/internal/mapbox"
	"votemap/internal/metrics"
	"votemap/internal/party"
	"votemap/internal/rank"
	"votemap/internal/render"
	"votemap/internal/results"
)

// 阶段名
const (
	StageLoadResults   = "load_results"
	StageReduce        = "reduce"
	StageRank          = "rank"
	StageLoadLocations = "load_locations"
	StageJoin          = "join"
	StageRender        = "render"
)

// StageError：带阶段名的错误
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Result：一次运行的全部中间结果
type Result struct {
	Parties    *party.Table
	Table      *results.Table
	Reduction  *results.Reduction
	Mismatches []results.Mismatch
	Ranked     []rank.RankedRow
	Facilities *geo.Facilities
	Sites      []geo.Site
	Report     *geo.Report
	Clearance  *geo.Clearance
	// Figure：仅 Run 生成
	Figure *render.Figure
}

// Analyze：执行到坐标连接为止，不需要地图令牌
// 参数 gc 为空时不做地理编码兜底
func Analyze(ctx context.Context, in config.Inputs, gc geo.Geocoder) (*Result, error) {
	res := &Result{}
	var err error

	res.Table, err = stage(StageLoadResults, func() (*results.Table, error) {
		return results.Load(in.ResultsPath, in.ResultsSheet, results.Normalizer{CityHall: in.CityHallLabel})
	})
	if err != nil {
		return nil, err
	}
	res.Mismatches = results.Check(res.Table)

	res.Reduction, err = stage(StageReduce, func() (*results.Reduction, error) {
		p, err := loadParties(in.PartyMapping)
		if err != nil {
			return nil, err
		}
		res.Parties = p
		return results.Reduce(res.Table, p)
	})
	if err != nil {
		return nil, err
	}

	res.Ranked, err = stage(StageRank, func() ([]rank.RankedRow, error) {
		return rank.All(res.Reduction.Records, res.Parties)
	})
	if err != nil {
		return nil, err
	}

	res.Facilities, err = stage(StageLoadLocations, func() (*geo.Facilities, error) {
		return geo.LoadFacilities(in.LocationsPath, "")
	})
	if err != nil {
		return nil, err
	}

	override := geo.Override{Name: in.MailLocation, Point: orb.Point{in.MailLon, in.MailLat}}
	res.Sites, err = stage(StageJoin, func() ([]geo.Site, error) {
		sites, rep, err := geo.Join(ctx, res.Ranked, res.Facilities, geo.JoinOptions{
			Override: override,
			Strict:   in.StrictJoin,
			Geocoder: gc,
		})
		res.Report = rep
		return sites, err
	})
	if err != nil {
		return nil, err
	}
	if len(res.Report.Overridden) > 0 {
		c := geo.CheckOverride(res.Sites, res.Facilities, override.Point)
		res.Clearance = &c
	}
	return res, nil
}

// Run：完整流程，生成图形并按配置导出 PNG / GeoJSON；页面输出与展示由调用方决定
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	var gc geo.Geocoder
	if cfg.Map.Geocode {
		gc = mapbox.New(cfg.Map.Token, nil)
	}
	res, err := Analyze(ctx, cfg.Inputs, gc)
	if err != nil {
		return nil, err
	}
	res.Figure, err = stage(StageRender, func() (*render.Figure, error) {
		fig, err := render.Build(res.Sites, render.Options{
			Token:        cfg.Map.Token,
			Title:        cfg.Map.Title,
			Style:        cfg.Map.Style,
			Zoom:         cfg.Map.Zoom,
			SizeDivisor:  cfg.Map.SizeDivisor,
			MailLocation: cfg.MailLocation,
			Reduced:      res.Reduction.Reduced,
		})
		if err != nil {
			return nil, err
		}
		if cfg.Map.StaticPNG != "" {
			if err := render.WritePNG(cfg.Map.StaticPNG, fig); err != nil {
				return nil, err
			}
			logger.L().Info("png_written", "path", cfg.Map.StaticPNG)
		}
		if cfg.Map.GeoJSON != "" {
			if err := geo.WriteGeoJSON(cfg.Map.GeoJSON, res.Sites); err != nil {
				return nil, err
			}
			logger.L().Info("geojson_written", "path", cfg.Map.GeoJSON)
		}
		return fig, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func loadParties(path string) (*party.Table, error) {
	if path == "" {
		return party.Default(), nil
	}
	p, err := party.LoadTable(path)
	if err != nil {
		return nil, fmt.Errorf("party mapping %s: %w", path, err)
	}
	logger.L().Info("party_mapping_loaded", "path", path, "strict", p.Strict)
	return p, nil
}

func stage[T any](name string, fn func() (T, error)) (T, error) {
	t0 := time.Now()
	v, err := fn()
	dur := time.Since(t0).Milliseconds()
	metrics.StageDurationMs.WithLabelValues(name).Observe(float64(dur))
	if err != nil {
		logger.L().Error("stage_error", "stage", name, "duration_ms", dur, "err", err)
		return v, &StageError{Stage: name, Err: err}
	}
	logger.L().Debug("stage_ok", "stage", name, "duration_ms", dur)
	return v, nil
}
