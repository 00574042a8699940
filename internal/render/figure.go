// 包 render：把已定位的排名地点组装为分层气泡地图（plotly scattermapbox 图形），并负责页面、静态图与预览服务
package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"votemap/internal/geo"
	"votemap/internal/party"
)

var ErrNoSites = errors.New("render: no located sites to plot")

// Options：渲染参数，令牌由配置显式传入
type Options struct {
	Token       string
	Title       string
	Style       string
	Zoom        float64
	SizeDivisor float64
	// MailLocation：注释中说明其位置被放在水面上
	MailLocation string
	// Reduced：取候选人最大值的政党，按表头顺序
	Reduced []string
}

// Figure：plotly 图形（data + layout），直接序列化为 JSON 交给 plotly.js
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace：单个名次的图层
type Trace struct {
	Type      string    `json:"type"`
	Mode      string    `json:"mode"`
	Name      string    `json:"name"`
	Lat       []float64 `json:"lat"`
	Lon       []float64 `json:"lon"`
	Text      []string  `json:"text"`
	HoverInfo string    `json:"hoverinfo"`
	Marker    Marker    `json:"marker"`
	// Rank：1 为票数最少的名次，不输出到 JSON
	Rank int `json:"-"`
}

type Marker struct {
	Size    []float64 `json:"size"`
	Color   []string  `json:"color"`
	Opacity float64   `json:"opacity"`
}

type Layout struct {
	Title       Title        `json:"title"`
	HoverMode   string       `json:"hovermode"`
	Mapbox      Mapbox       `json:"mapbox"`
	Annotations []Annotation `json:"annotations"`
	ShowLegend  bool         `json:"showlegend"`
}

type Title struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
}

type Mapbox struct {
	AccessToken string  `json:"accesstoken"`
	Style       string  `json:"style"`
	Bearing     float64 `json:"bearing"`
	Pitch       float64 `json:"pitch"`
	Zoom        float64 `json:"zoom"`
	Center      LatLon  `json:"center"`
}

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Font struct {
	Size int `json:"size"`
}

type Annotation struct {
	Text        string  `json:"text"`
	ShowArrow   bool    `json:"showarrow"`
	Font        Font    `json:"font"`
	Align       string  `json:"align"`
	XRef        string  `json:"xref"`
	YRef        string  `json:"yref"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	XAnchor     string  `json:"xanchor"`
	YAnchor     string  `json:"yanchor"`
	BorderColor string  `json:"bordercolor"`
	BorderWidth int     `json:"borderwidth"`
	BorderPad   int     `json:"borderpad"`
	BgColor     string  `json:"bgcolor"`
	Opacity     float64 `json:"opacity"`
}

// Build：组装图形
// 约束：图层顺序为名次 5 到名次 1，后绘制者在上层；未定位地点不绘制；
// 图层图例名取该图层第一个绘制点在此名次上的政党（即图例色块所显示的颜色）；
// 同一图层内各地点在该名次上的政党不同，图例只对应第一个点，不是"每层一个政党"的图例，
// 悬停文本带名次以便区分；
// 中心为全部已定位地点（含覆盖地点）纬度、经度的中位数
func Build(sites []geo.Site, opt Options) (*Figure, error) {
	if opt.SizeDivisor <= 0 {
		return nil, fmt.Errorf("render: size divisor must be positive, got %v", opt.SizeDivisor)
	}
	center, ok := geo.Center(sites)
	if !ok {
		return nil, ErrNoSites
	}
	fig := &Figure{}
	for rank := party.Count; rank >= 1; rank-- {
		tr := Trace{Type: "scattermapbox", Mode: "markers", HoverInfo: "text", Rank: rank, Marker: Marker{Opacity: 0.9}}
		for _, s := range sites {
			if !s.Located {
				continue
			}
			e := s.Ranks[rank-1]
			tr.Lat = append(tr.Lat, s.Lat())
			tr.Lon = append(tr.Lon, s.Lon())
			tr.Text = append(tr.Text, s.Location+"<br>"+e.Party+": "+strconv.FormatInt(e.Votes, 10)+" (rank "+strconv.Itoa(rank)+")")
			tr.Marker.Size = append(tr.Marker.Size, float64(e.Value)/opt.SizeDivisor)
			tr.Marker.Color = append(tr.Marker.Color, e.Color)
			if tr.Name == "" {
				tr.Name = e.Party
			}
		}
		fig.Data = append(fig.Data, tr)
	}
	fig.Layout = Layout{
		Title:     Title{Text: opt.Title, X: 0.5},
		HoverMode: "closest",
		Mapbox: Mapbox{
			AccessToken: opt.Token,
			Style:       opt.Style,
			Zoom:        opt.Zoom,
			Center:      LatLon{Lat: center.Lat(), Lon: center.Lon()},
		},
		Annotations: []Annotation{notesAnnotation(opt)},
		ShowLegend:  true,
	}
	return fig, nil
}

// Notes：地图右下角的说明文字，每条以 <br> 结尾
func Notes(opt Options) string {
	mail := opt.MailLocation
	if mail == "" {
		mail = "Mail-in"
	}
	lines := []string{
		"1. Non-party candidates omitted.",
		"2. " + mail + " location is out in the water.",
	}
	switch len(opt.Reduced) {
	case 0:
	case 1:
		lines = append(lines, "3. Values for "+opt.Reduced[0]+" are the maximum value between its candidates.")
	default:
		names := strings.Join(opt.Reduced[:len(opt.Reduced)-1], ", ") + " and " + opt.Reduced[len(opt.Reduced)-1]
		lines = append(lines, "3. Values for "+names+" are the maximum value between their candidates.")
	}
	return strings.Join(lines, " <br>\n") + " <br>"
}

func notesAnnotation(opt Options) Annotation {
	return Annotation{
		Text:        Notes(opt),
		Font:        Font{Size: 12},
		Align:       "left",
		XRef:        "paper",
		YRef:        "paper",
		X:           1,
		Y:           0,
		XAnchor:     "right",
		YAnchor:     "bottom",
		BorderColor: "black",
		BorderWidth: 1,
		BorderPad:   4,
		BgColor:     "white",
		Opacity:     0.8,
	}
}
