package geo

import (
	"sort"

	"github.com/paulmach/orb"

	"votemap/internal/logger"
)

// MinClearanceMeters：覆盖坐标与最近真实设施的最小距离，低于此值视为会重叠
const MinClearanceMeters = 200.0

// Center：所有已定位地点纬度中位数与经度中位数（含覆盖地点）
func Center(sites []Site) (orb.Point, bool) {
	var lats, lons []float64
	for _, s := range sites {
		if !s.Located {
			continue
		}
		lats = append(lats, s.Lat())
		lons = append(lons, s.Lon())
	}
	if len(lats) == 0 {
		return orb.Point{}, false
	}
	return orb.Point{median(lons), median(lats)}, true
}

func median(v []float64) float64 {
	sort.Float64s(v)
	n := len(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}

// Bound：真实地点（非覆盖）的外包矩形
func Bound(sites []Site) (orb.Bound, bool) {
	var b orb.Bound
	ok := false
	for _, s := range sites {
		if !s.Located || s.Overridden {
			continue
		}
		if !ok {
			b = s.Point.Bound()
			ok = true
			continue
		}
		b = b.Extend(s.Point)
	}
	return b, ok
}

// Clearance：覆盖坐标相对真实设施的位置
type Clearance struct {
	InsideBound    bool
	Nearest        string
	DistanceMeters float64
}

// Clear：覆盖坐标是否在真实地点范围之外且与最近设施保持足够距离
func (c Clearance) Clear() bool {
	return !c.InsideBound && c.DistanceMeters >= MinClearanceMeters
}

// CheckOverride：检查覆盖坐标是否会与真实地点重叠，重叠时告警
func CheckOverride(sites []Site, fac *Facilities, pt orb.Point) Clearance {
	var c Clearance
	if b, ok := Bound(sites); ok {
		c.InsideBound = b.Contains(pt)
	}
	if lg, d, ok := fac.Nearest(pt); ok {
		c.Nearest, c.DistanceMeters = lg.Name, d
	} else {
		c.DistanceMeters = MinClearanceMeters
	}
	if !c.Clear() {
		logger.L().Warn("override_overlaps_sites", "inside_bound", c.InsideBound, "nearest", c.Nearest, "distance_m", int(c.DistanceMeters))
	}
	return c
}
