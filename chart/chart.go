// Package chart renders observation tables as line charts.
package chart

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/browser"

	"easydata"
	"easydata/timeseries"
)

const (
	defaultTitle     = "Time-Series Graph"
	defaultXAxisName = "Date"
	defaultYAxisName = "Observation Value"

	chartWidth  = "1000px"
	chartHeight = "600px"

	dateLayout = "2006-01-02"
)

// config holds the renderable chart settings
type config struct {
	title     string
	xAxisName string
	yAxisName string
	smooth    bool
}

// Option adjusts how a chart is drawn
type Option func(*config)

// WithTitle overrides the chart title
func WithTitle(title string) Option {
	return func(c *config) { c.title = title }
}

// WithXAxisName overrides the X axis label
func WithXAxisName(name string) Option {
	return func(c *config) { c.xAxisName = name }
}

// WithYAxisName overrides the Y axis label
func WithYAxisName(name string) Option {
	return func(c *config) { c.yAxisName = name }
}

// WithSmooth draws curved lines instead of straight segments
func WithSmooth(smooth bool) Option {
	return func(c *config) { c.smooth = smooth }
}

// Chart is a line chart of an observation table, ready to render
type Chart struct {
	line *charts.Line
}

// New builds a line chart from table: one series per value column, dates
// on the X axis. It fails with an easydata.ErrorTypeEmptyTable error when
// the table has zero rows; a single-row table renders fine.
func New(table *timeseries.Table, options ...Option) (*Chart, error) {
	if table == nil || table.Len() == 0 {
		return nil, easydata.NewEmptyTableError()
	}

	cfg := &config{
		title:     defaultTitle,
		xAxisName: defaultXAxisName,
		yAxisName: defaultYAxisName,
	}
	for _, opt := range options {
		opt(cfg)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: cfg.title,
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: cfg.title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: cfg.xAxisName}),
		charts.WithYAxisOpts(opts.YAxis{Name: cfg.yAxisName}),
	)

	dates := make([]string, table.Len())
	for i, row := range table.Rows {
		dates[i] = row.Date.Format(dateLayout)
	}
	line.SetXAxis(dates)

	for col, name := range table.Columns {
		data := make([]opts.LineData, table.Len())
		for i, row := range table.Rows {
			data[i] = opts.LineData{Value: row.Values[col]}
		}
		line.AddSeries(name, data)
	}

	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{
		Smooth: opts.Bool(cfg.smooth),
	}))

	return &Chart{line: line}, nil
}

// Render writes the chart as a self-contained HTML document
func (c *Chart) Render(w io.Writer) error {
	return c.line.Render(w)
}

// WriteHTML renders the chart into a file at path
func (c *Chart) WriteHTML(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}

	if err := c.line.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Show renders the chart into a temporary file and opens it in the
// default browser
func (c *Chart) Show() error {
	f, err := os.CreateTemp("", "easydata-*.html")
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	path := f.Name()

	if err := c.line.Render(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return browser.OpenFile(path)
}

// Plot draws table as a line chart and displays it. It is the
// convenience form of New followed by Show.
func Plot(table *timeseries.Table, options ...Option) error {
	c, err := New(table, options...)
	if err != nil {
		return err
	}
	return c.Show()
}
