package geo

import (
	"github.com/paulmach/orb"

	"votemap/internal/rank"
)

// 文档注释：投票设施坐标表项
// 约束：Point 按 orb 约定为 [经度, 纬度]（WGS84）；Name 已做文本规范化，作为连接键
type LocationGeo struct {
	Name  string
	Point orb.Point
}

// Site：带坐标的排名地点
// 约束：Located 为 false 时 Point 无意义，渲染与中心计算均跳过该地点
type Site struct {
	rank.RankedRow
	Point      orb.Point
	Located    bool
	Matched    bool
	Geocoded   bool
	Overridden bool
}

// Lat / Lon：便于渲染层读取
func (s Site) Lat() float64 { return s.Point.Lat() }
func (s Site) Lon() float64 { return s.Point.Lon() }

// Override：固定坐标覆盖（邮寄投票等无实体地址的伪地点）
type Override struct {
	Name  string
	Point orb.Point
}
