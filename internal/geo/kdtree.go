package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// 文档注释：KD-Tree 最近邻（二维经纬）
// 背景：用于检查固定覆盖坐标是否离真实投票设施过近，避免气泡重叠。
// 约束：按经度/纬度交替分割；仅支持最近一个点查询；距离为球面距离（米）。
type kdNode struct {
	g  LocationGeo
	ax int // 0:lon,1:lat
	l  *kdNode
	r  *kdNode
}

func buildKD(gs []LocationGeo, depth int) *kdNode {
	if len(gs) == 0 {
		return nil
	}
	ax := depth % 2
	mid := len(gs) / 2
	selectNth(gs, mid, ax)
	node := &kdNode{g: gs[mid], ax: ax}
	node.l = buildKD(gs[:mid], depth+1)
	node.r = buildKD(gs[mid+1:], depth+1)
	return node
}

// 原地 nth 元素选择
func selectNth(a []LocationGeo, n int, ax int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi, (lo+hi)/2, ax)
		if p == n {
			return
		}
		if n < p {
			hi = p - 1
		} else {
			lo = p + 1
		}
	}
}

func partition(a []LocationGeo, lo, hi, pivot, ax int) int {
	pv := a[pivot]
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if a[j].Point[ax] < pv.Point[ax] {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

func nearest(node *kdNode, pt orb.Point) (LocationGeo, float64) {
	best := LocationGeo{}
	bestD := math.MaxFloat64
	cosLat := math.Cos(deg2rad(pt.Lat()))
	var dfs func(n *kdNode)
	dfs = func(n *kdNode) {
		if n == nil {
			return
		}
		if d := geo.Distance(pt, n.g.Point); d < bestD {
			bestD = d
			best = n.g
		}
		key, q := pt[n.ax], n.g.Point[n.ax]
		first, second := n.l, n.r
		if key > q {
			first, second = n.r, n.l
		}
		dfs(first)
		if planeDistance(n.ax, math.Abs(key-q), cosLat) < bestD {
			dfs(second)
		}
	}
	dfs(node)
	return best, bestD
}

// planeDistance：查询点到分割线（经线或纬线）的最短球面距离下界（米）
func planeDistance(ax int, delta, cosLat float64) float64 {
	if ax == 1 {
		return orb.EarthRadius * deg2rad(delta) * 0.999
	}
	if delta >= 90 {
		return orb.EarthRadius * math.Asin(cosLat) * 0.999
	}
	return orb.EarthRadius * math.Asin(math.Min(1, math.Sin(deg2rad(delta))*cosLat)) * 0.999
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
