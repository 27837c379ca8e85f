package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"retail-sales-lab/internal/analysis"
	"retail-sales-lab/internal/data"
	apperrors "retail-sales-lab/internal/errors"
)

const (
	dashboardSheet = "Dashboard"
	ordersSheet    = "Orders"
	insightsSheet  = "Insights"

	maxSheetNameRunes = 31

	// grid placement of charts on the dashboard
	gridColumns   = 3
	gridColStride = 9
	gridRowStride = 16
)

// Workbook renders the dashboard charts into an XLSX file.
type Workbook struct {
	IncludeOrders bool
}

// Write builds the workbook and saves it to path, creating parent directories.
func (w Workbook) Write(path string, ds data.Dataset, charts []analysis.Chart, ins analysis.Insights) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.NewRenderError("create workbook directory", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), dashboardSheet); err != nil {
		return apperrors.NewRenderError("rename dashboard sheet", err)
	}

	for i, c := range charts {
		if err := addChart(f, i, c); err != nil {
			return apperrors.NewRenderError("add chart", err).WithContext("chart", c.ID)
		}
	}
	if err := writeInsights(f, ins); err != nil {
		return apperrors.NewRenderError("write insights sheet", err)
	}
	if w.IncludeOrders {
		if err := writeOrders(f, ds); err != nil {
			return apperrors.NewRenderError("write orders sheet", err)
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return apperrors.NewRenderError("save workbook", err).WithContext("path", path)
	}
	return nil
}

// ChartSheetName returns the data sheet backing chart i.
func ChartSheetName(i int, c analysis.Chart) string {
	return sheetSafe(fmt.Sprintf("%d_%s", i+1, c.ID))
}

func addChart(f *excelize.File, i int, c analysis.Chart) error {
	if len(c.Series) == 0 || len(c.Series[0].Points) == 0 {
		return fmt.Errorf("chart %s has no points", c.ID)
	}
	sheet := ChartSheetName(i, c)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	series := c.Series[0]
	// Excel's X axis is the category axis, which runs vertically on a bar chart.
	catTitle, valTitle := c.XAxis, c.YAxis
	if c.Type == analysis.ChartBarHorizontal {
		catTitle, valTitle = c.YAxis, c.XAxis
	}
	xHeader := catTitle
	if xHeader == "" {
		xHeader = "Label"
	}
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{xHeader, series.Name}); err != nil {
		return err
	}
	for j, p := range series.Points {
		cell, err := excelize.CoordinatesToCellName(1, j+2)
		if err != nil {
			return err
		}
		var x interface{} = p.Label
		if c.Type == analysis.ChartScatter {
			x = p.X
		}
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{x, p.Y}); err != nil {
			return err
		}
	}

	last := len(series.Points) + 1
	chart := &excelize.Chart{
		Type: chartType(c.Type),
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheet),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, last),
		}},
		Title:  []excelize.RichTextRun{{Text: c.Title}},
		Legend: excelize.ChartLegend{Position: "none"},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: catTitle}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: valTitle}}},
	}
	switch c.Type {
	case analysis.ChartPie:
		chart.Legend = excelize.ChartLegend{Position: "right"}
		chart.PlotArea = excelize.ChartPlotArea{ShowPercent: true}
		chart.XAxis = excelize.ChartAxis{}
		chart.YAxis = excelize.ChartAxis{}
	case analysis.ChartScatter:
		chart.Series[0].Marker = excelize.ChartMarker{Symbol: "circle", Size: 4}
		chart.Series[0].Line = excelize.ChartLine{Type: excelize.ChartLineNone}
	case analysis.ChartLine:
		chart.Series[0].Marker = excelize.ChartMarker{Symbol: "circle", Size: 5}
	}

	anchor, err := excelize.CoordinatesToCellName((i%gridColumns)*gridColStride+1, (i/gridColumns)*gridRowStride+1)
	if err != nil {
		return err
	}
	return f.AddChart(dashboardSheet, anchor, chart)
}

func chartType(t analysis.ChartType) excelize.ChartType {
	switch t {
	case analysis.ChartLine:
		return excelize.Line
	case analysis.ChartBarHorizontal:
		return excelize.Bar
	case analysis.ChartPie:
		return excelize.Pie
	case analysis.ChartScatter:
		return excelize.Scatter
	default:
		return excelize.Col
	}
}

func writeInsights(f *excelize.File, ins analysis.Insights) error {
	if _, err := f.NewSheet(insightsSheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Metric", "Value", "Amount"},
		{"Orders", ins.Orders, nil},
		{"Total net sales", nil, data.RoundTo2(ins.TotalNet)},
		{"Best category", ins.BestCategory.Label, data.RoundTo2(ins.BestCategory.Value)},
		{"Best segment", ins.BestSegment.Label, data.RoundTo2(ins.BestSegment.Value)},
		{"Best city", ins.BestCity.Label, data.RoundTo2(ins.BestCity.Value)},
		{"Average order value", nil, data.RoundTo2(ins.AverageOrderValue)},
		{"Most popular channel", ins.PopularChannel, nil},
		{"Best month", ins.BestMonth.Label, data.RoundTo2(ins.BestMonth.Value)},
		{"Worst month", ins.WorstMonth.Label, data.RoundTo2(ins.WorstMonth.Value)},
		{"Net amount outliers", ins.Outliers, nil},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(insightsSheet, cell, &r); err != nil {
			return err
		}
	}
	return nil
}

func writeOrders(f *excelize.File, ds data.Dataset) error {
	if _, err := f.NewSheet(ordersSheet); err != nil {
		return err
	}
	header := ds.Columns()
	if err := f.SetSheetRow(ordersSheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range ds.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.OrderID, r.Date.Format(data.DateLayout), r.Category, r.UnitPrice, r.Quantity,
			r.GrossAmount, r.DiscountRate, r.DiscountAmount, r.NetAmount,
			r.Segment, r.City, r.Channel, r.Year, r.Month, r.MonthName, r.Weekday,
		}
		if err := f.SetSheetRow(ordersSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// sheetSafe applies Excel's sheet naming rules.
func sheetSafe(name string) string {
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	safe := strings.TrimSpace(replacer.Replace(name))
	if runes := []rune(safe); len(runes) > maxSheetNameRunes {
		safe = strings.TrimSpace(string(runes[:maxSheetNameRunes]))
	}
	if safe == "" {
		return "Sheet"
	}
	return safe
}
