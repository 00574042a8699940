package geo

import (
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
)

// FeatureCollection：把已定位地点导出为 GeoJSON 点要素
// 约束：属性含各名次政党、原始票数与堆叠值；未定位地点不导出
func FeatureCollection(sites []Site) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range sites {
		if !s.Located {
			continue
		}
		f := geojson.NewFeature(s.Point)
		f.Properties["location"] = s.Location
		f.Properties["total"] = s.Total()
		f.Properties["matched"] = s.Matched
		f.Properties["geocoded"] = s.Geocoded
		f.Properties["overridden"] = s.Overridden
		for n, e := range s.Ranks {
			f.Properties[fmt.Sprintf("rank_%d_party", n+1)] = e.Party
			f.Properties[fmt.Sprintf("rank_%d_votes", n+1)] = e.Votes
			f.Properties[fmt.Sprintf("rank_%d_value", n+1)] = e.Value
		}
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON：写出 GeoJSON 文件
func WriteGeoJSON(path string, sites []Site) error {
	b, err := FeatureCollection(sites).MarshalJSON()
	if err != nil {
		return fmt.Errorf("geo: marshal geojson: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("geo: write geojson: %w", err)
	}
	return nil
}
