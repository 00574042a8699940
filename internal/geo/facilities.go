// 包 geo：投票设施坐标表的加载、去重，与排名地点按名称左连接并附加坐标
package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"votemap/internal/logger"
	"votemap/internal/tabular"
)

const (
	NameColumn = "Facility Name"
	GeomColumn = "Geom"
)

var (
	ErrMissingColumn = errors.New("geo: facility table is missing a column")
	ErrBadGeom       = errors.New("geo: malformed Geom")
)

// Facilities：按设施名去重后的坐标表
type Facilities struct {
	byName map[string]LocationGeo
	list   []LocationGeo
	tree   *kdNode
}

// LoadFacilities：读取设施表（CSV/XLSX）
func LoadFacilities(path, sheet string) (*Facilities, error) {
	rows, err := tabular.Read(path, sheet)
	if err != nil {
		return nil, err
	}
	return ParseFacilities(rows)
}

// ParseFacilities：从表格行构建设施表
// 约束：首行为表头，必须包含 Facility Name 与 Geom；同名设施只保留第一条，坐标冲突时告警；
// Geom 格式错误立即返回错误；设施名为空的行跳过
func ParseFacilities(rows [][]string) (*Facilities, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrMissingColumn)
	}
	nameIdx, geomIdx := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case NameColumn:
			nameIdx = i
		case GeomColumn:
			geomIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, NameColumn)
	}
	if geomIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, GeomColumn)
	}
	f := &Facilities{byName: make(map[string]LocationGeo)}
	dupes := 0
	for i, r := range rows[1:] {
		line := i + 2
		if nameIdx >= len(r) || geomIdx >= len(r) {
			return nil, fmt.Errorf("geo: line %d has %d cells", line, len(r))
		}
		name := tabular.Text(r[nameIdx])
		if name == "" {
			logger.L().Warn("facility_unnamed", "line", line)
			continue
		}
		pt, err := ParseGeom(r[geomIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", line, name, err)
		}
		if prev, ok := f.byName[name]; ok {
			dupes++
			if !prev.Point.Equal(pt) {
				logger.L().Warn("facility_duplicate_conflict", "name", name, "kept", prev.Point, "ignored", pt)
			}
			continue
		}
		lg := LocationGeo{Name: name, Point: pt}
		f.byName[name] = lg
		f.list = append(f.list, lg)
	}
	f.tree = buildKD(append([]LocationGeo(nil), f.list...), 0)
	logger.L().Info("facilities_loaded", "facilities", len(f.list), "duplicates", dupes)
	return f, nil
}

// ParseGeom：解析 "<lat>, <long>" 为点
func ParseGeom(s string) (orb.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("%w: %q", ErrBadGeom, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("%w: %q: %v", ErrBadGeom, s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("%w: %q: %v", ErrBadGeom, s, err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return orb.Point{}, fmt.Errorf("%w: %q out of range", ErrBadGeom, s)
	}
	return orb.Point{lon, lat}, nil
}

// Lookup：按规范化后的名称查找设施
func (f *Facilities) Lookup(name string) (LocationGeo, bool) {
	lg, ok := f.byName[tabular.Text(name)]
	return lg, ok
}

// Len：去重后的设施数
func (f *Facilities) Len() int { return len(f.list) }

// All：去重后的设施，按首次出现顺序
func (f *Facilities) All() []LocationGeo { return f.list }

// Nearest：距离给定点最近的设施与距离（米）
func (f *Facilities) Nearest(pt orb.Point) (LocationGeo, float64, bool) {
	if f.tree == nil {
		return LocationGeo{}, 0, false
	}
	lg, d := nearest(f.tree, pt)
	return lg, d, true
}
