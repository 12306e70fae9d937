package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"chronology/internal/model"
)

// RenderHTML writes a standalone HTML page with a line chart of series.
// Series share a date axis; dates a series has no sample for are gaps
// bridged by the line. Several samples of one series on the same date
// each get their own slot on the axis.
func RenderHTML(w io.Writer, p *model.Project, sel Selection, series []Series) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s - Chronology", p.Name)
	page.AddCharts(lineChart(p, sel, series))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func lineChart(p *model.Project, sel Selection, series []Series) *charts.Line {
	line := charts.NewLine()

	subtitle := "Metrics over time"
	if sel.Mode == ModelWise {
		subtitle = fmt.Sprintf("%s by model", p.MetricLabel(sel.Comparison))
	} else if len(series) > 0 && len(sel.Models) > 0 {
		subtitle = fmt.Sprintf("Metrics for %s", sel.Models[0])
	}

	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    p.Name,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Right:  "0",
			Orient: "vertical",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Time",
			Type: "category",
			AxisLabel: &opts.AxisLabel{
				Rotate: 45,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Metric Value",
			Type: "value",
		}),
		charts.WithGridOpts(opts.Grid{
			Left:   "8%",
			Right:  "15%",
			Bottom: "20%",
			Top:    "80",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "100%",
			Height: "500px",
		}),
	)

	categories, columns := align(series)
	line.SetXAxis(categories)

	for i, s := range series {
		data := make([]opts.LineData, len(categories))
		for j, v := range columns[i] {
			if v == nil {
				data[j] = opts.LineData{Value: "-"}
			} else {
				data[j] = opts.LineData{Value: *v}
			}
		}
		line.AddSeries(s.ID, data,
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol:   opts.Bool(true),
				ConnectNulls: opts.Bool(true),
			}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color, Width: 2}),
		)
	}
	return line
}

// align lays series out on a shared category axis. Each date gets as many
// slots as the largest number of samples any series has on it; repeats
// are labelled "date (2)", "date (3)". columns[i][j] is series i's value
// in slot j, or nil.
func align(series []Series) (categories []string, columns [][]*float64) {
	perSeries := make([]map[string][]float64, len(series))
	slots := make(map[string]int)
	for i, s := range series {
		byDate := make(map[string][]float64)
		for _, pt := range s.Data {
			byDate[pt.X] = append(byDate[pt.X], pt.Y)
			slots[pt.X] = max(slots[pt.X], len(byDate[pt.X]))
		}
		perSeries[i] = byDate
	}

	type slot struct {
		date string
		n    int
	}
	var order []slot
	for _, d := range Dates(series) {
		for n := range slots[d] {
			label := d
			if n > 0 {
				label = fmt.Sprintf("%s (%d)", d, n+1)
			}
			categories = append(categories, label)
			order = append(order, slot{date: d, n: n})
		}
	}

	columns = make([][]*float64, len(series))
	for i := range series {
		col := make([]*float64, len(order))
		for j, sl := range order {
			if vals := perSeries[i][sl.date]; sl.n < len(vals) {
				col[j] = &vals[sl.n]
			}
		}
		columns[i] = col
	}
	return categories, columns
}
