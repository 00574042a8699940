package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// WritePNG：用 gonum/plot 在经纬度平面上绘制与地图相同的五个图层（无底图瓦片）
// 约束：图层顺序与 Figure.Data 相同；点半径为 marker size 的一半（plotly 的 size 为直径）
func WritePNG(path string, fig *Figure) error {
	p := plot.New()
	p.Title.Text = fig.Layout.Title.Text
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.Legend.Top = true
	for _, tr := range fig.Data {
		if len(tr.Lat) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(tr.Lat))
		colors := make([]color.Color, len(tr.Lat))
		for i := range tr.Lat {
			xys[i].X, xys[i].Y = tr.Lon[i], tr.Lat[i]
			c, err := ParseColor(tr.Marker.Color[i])
			if err != nil {
				return err
			}
			colors[i] = withAlpha(c, tr.Marker.Opacity)
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("render: scatter: %w", err)
		}
		sizes := tr.Marker.Size
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{Color: colors[i], Radius: vg.Points(sizes[i] / 2), Shape: draw.CircleGlyph{}}
		}
		sc.GlyphStyle = draw.GlyphStyle{Color: colors[0], Radius: vg.Points(4), Shape: draw.CircleGlyph{}}
		p.Add(sc)
		p.Legend.Add(tr.Name, sc)
	}
	if err := p.Save(10*vg.Inch, 10*vg.Inch, path); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}
	return nil
}

// ParseColor：解析 CSS 颜色名或 #RRGGBB / #RGB
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return nil, fmt.Errorf("render: unknown color %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, fmt.Errorf("render: bad color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("render: bad color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func withAlpha(c color.Color, opacity float64) color.Color {
	r, g, b, _ := c.RGBA()
	a := opacity * 0xffff
	return color.NRGBA64{R: uint16(r), G: uint16(g), B: uint16(b), A: uint16(a)}
}
