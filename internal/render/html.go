package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
)

// PlotlyJS：页面加载的 plotly.js 版本
const PlotlyJS = "https://cdn.plot.ly/plotly-2.35.2.min.js"

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.Script}}" charset="utf-8"></script>
<style>html,body{margin:0;height:100%}#map{width:100%;height:100%}</style>
</head>
<body>
<div id="map"></div>
<script>
var fig = {{.Figure}};
Plotly.newPlot("map", fig.data, fig.layout, {responsive: true});
</script>
</body>
</html>
`))

// WriteHTML：输出内嵌图形 JSON 的独立页面
func WriteHTML(w io.Writer, fig *Figure) error {
	return page.Execute(w, struct {
		Title  string
		Script string
		Figure *Figure
	}{fig.Layout.Title.Text, PlotlyJS, fig})
}

// WriteFile：页面写入文件
func WriteFile(path string, fig *Figure) error {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, fig); err != nil {
		return fmt.Errorf("render: page: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("render: write %s: %w", path, err)
	}
	return nil
}
