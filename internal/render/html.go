package render

import (
	"html/template"
	"io"
)

// chartTmpl is the standalone Gantt page. The root element carries
// data-ready="true" once rendered, which the PNG capture waits on.
const chartTmpl = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{margin:0;background:#ffffff;font-family:Arial,Helvetica,sans-serif;color:#000000}
#gantt{width:{{.Width}}px;margin:0 auto;padding:16px 24px}
.gt-footer{font-size:13px;color:#202020;margin-bottom:4px}
.gt-title{text-align:center;font-size:28px;font-weight:700;margin:4px 0 16px}
.gt-body{position:relative;border-left:1px solid #d0d0d0}
.gt-row{display:flex;align-items:stretch;height:{{.RowHeight}}px}
.gt-label{width:180px;flex-shrink:0;font-size:13px;font-weight:600;display:flex;align-items:center;justify-content:flex-end;padding-right:10px;box-sizing:border-box}
.gt-track{position:relative;flex:1;border-bottom:1px solid #f0f0f0}
.gt-bar{position:absolute;top:2px;bottom:2px;border-radius:2px;overflow:hidden;display:flex;align-items:center;justify-content:center}
.gt-bar span{font-size:10px;color:#ffffff;white-space:pre-line;text-align:center;line-height:1.1}
.gt-axis{position:relative;height:22px;margin-left:180px}
.gt-tick{position:absolute;top:2px;transform:translateX(-50%);font-size:11px;color:#606060}
</style>
</head>
<body>
<div id="gantt" data-ready="true">
  {{if .Footer}}<div class="gt-footer">{{.Footer}}</div>{{end}}
  <div class="gt-title">{{.Title}}</div>
  <div class="gt-body">
    {{range .Rows}}<div class="gt-row">
      <div class="gt-label">{{.GroupLabel}}</div>
      <div class="gt-track">
        {{range .Bars}}<div class="gt-bar" style="left:{{printf "%.3f" .LeftPct}}%;width:{{printf "%.3f" .WidthPct}}%;background:{{.Color}}" title="{{.Start.Format "2006-01-02"}} to {{.End.Format "2006-01-02"}}"><span>{{.Label}}</span></div>{{end}}
      </div>
    </div>{{end}}
  </div>
  <div class="gt-axis">
    {{range .Ticks}}<div class="gt-tick" style="left:{{printf "%.3f" .LeftPct}}%">{{.Year}}</div>{{end}}
  </div>
</div>
</body>
</html>
`

var chartTemplate = template.Must(template.New("chart").Parse(chartTmpl))

type htmlData struct {
	Title     string
	Footer    string
	Width     int
	RowHeight int
	Rows      []rowView
	Ticks     []tickView
}

const maxAxisTicks = 16

// WriteHTML renders the chart page to w.
func WriteHTML(w io.Writer, c Chart) error {
	rows := c.rows()

	rowHeight := 36
	if len(rows) > 0 && c.Height > 0 {
		// Leave room for the title block and axis.
		if h := (c.Height - 120) / len(rows); h > 0 {
			rowHeight = h
		}
		if rowHeight < 14 {
			rowHeight = 14
		}
	}

	data := htmlData{
		Title:     c.Title,
		Footer:    c.Footer,
		Width:     c.Width - 48,
		RowHeight: rowHeight,
		Rows:      rows,
		Ticks:     c.yearTicks(maxAxisTicks),
	}
	return chartTemplate.Execute(w, data)
}
