package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"votemap/internal/logger"
	"votemap/internal/metrics"
	"votemap/internal/rank"
	"votemap/internal/tabular"
)

var ErrUnmatchedLocation = errors.New("geo: unmatched location")

// Geocoder：未匹配地点的坐标兜底来源
// 约束：found=false 表示无结果而非错误；near 用于偏置检索结果
type Geocoder interface {
	Geocode(ctx context.Context, query string, near orb.Point) (orb.Point, bool, error)
}

// JoinOptions：连接参数
type JoinOptions struct {
	Override Override
	// Strict：存在未匹配地点时返回 ErrUnmatchedLocation
	Strict bool
	// Geocoder：为空时不做兜底
	Geocoder Geocoder
}

// Report：连接统计
type Report struct {
	Matched    int
	Unmatched  []string
	Geocoded   []string
	Overridden []string
}

// Join：排名地点按名称左连接设施坐标
// 约束：输出行数恒等于输入行数且顺序不变；覆盖地点无论连接或兜底结果如何都使用固定坐标；
// 兜底查询失败只记日志，不中断
func Join(ctx context.Context, rows []rank.RankedRow, fac *Facilities, opt JoinOptions) ([]Site, *Report, error) {
	sites := make([]Site, len(rows))
	rep := &Report{}
	overrideName := tabular.Text(opt.Override.Name)
	var pending []int
	for i, r := range rows {
		s := Site{RankedRow: r}
		if lg, ok := fac.Lookup(r.Location); ok {
			s.Point, s.Located, s.Matched = lg.Point, true, true
			rep.Matched++
		}
		if overrideName != "" && tabular.Text(r.Location) == overrideName {
			s.Point, s.Located, s.Overridden = opt.Override.Point, true, true
			rep.Overridden = append(rep.Overridden, r.Location)
			metrics.OverriddenLocationsTotal.Inc()
		}
		if !s.Located {
			pending = append(pending, i)
		}
		sites[i] = s
	}
	if opt.Geocoder != nil && len(pending) > 0 {
		near, _ := Center(sites)
		var still []int
		for _, i := range pending {
			pt, found, err := opt.Geocoder.Geocode(ctx, rows[i].Location, near)
			if err != nil {
				if ctx.Err() != nil {
					return nil, nil, ctx.Err()
				}
				logger.L().Warn("geocode_error", "location", rows[i].Location, "err", err)
			}
			if err != nil || !found {
				still = append(still, i)
				continue
			}
			sites[i].Point, sites[i].Located, sites[i].Geocoded = pt, true, true
			rep.Geocoded = append(rep.Geocoded, rows[i].Location)
			logger.L().Info("location_geocoded", "location", rows[i].Location, "lat", pt.Lat(), "lon", pt.Lon())
		}
		pending = still
	}
	for _, i := range pending {
		rep.Unmatched = append(rep.Unmatched, rows[i].Location)
		metrics.UnmatchedLocationsTotal.Inc()
		logger.L().Warn("location_unmatched", "location", rows[i].Location)
	}
	if opt.Strict && len(rep.Unmatched) > 0 {
		return nil, rep, fmt.Errorf("%w: %s", ErrUnmatchedLocation, strings.Join(rep.Unmatched, "; "))
	}
	logger.L().Info("locations_joined", "rows", len(sites), "matched", rep.Matched, "geocoded", len(rep.Geocoded), "overridden", len(rep.Overridden), "unmatched", len(rep.Unmatched))
	return sites, rep, nil
}
