package report

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"retail-sales-lab/internal/analysis"
	"retail-sales-lab/internal/data"
	apperrors "retail-sales-lab/internal/errors"
)

var reportNow = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

func dataset(t *testing.T, n int) data.Dataset {
	t.Helper()
	orders, err := data.Generate(n, data.NewRand(data.DefaultSeed), reportNow)
	require.NoError(t, err)
	return data.Assemble(orders)
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "0.00"},
		{in: 12.5, want: "12.50"},
		{in: 999.999, want: "1,000.00"},
		{in: 1234567.891, want: "1,234,567.89"},
		{in: -4321.1, want: "-4,321.10"},
		{in: -0.001, want: "0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in), "in=%v", tt.in)
	}
	assert.Equal(t, "1,500.00 TL", FormatAmount(1500))
	assert.Equal(t, "25.0%", FormatPercent(0.25))
}

func TestPrinter_Tables(t *testing.T) {
	ds := dataset(t, 300)
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Section(1, "Data exploration")
	require.NoError(t, p.DatasetInfo(ds, analysis.MissingValues(ds.Rows)))
	require.NoError(t, p.Head(ds, ds.Head(5)))

	summaries, err := analysis.Describe(ds.Rows)
	require.NoError(t, err)
	require.NoError(t, p.Describe(summaries))

	groups, err := analysis.SumBy(ds.Rows, analysis.DimCategory)
	require.NoError(t, err)
	require.NoError(t, p.Groups("Category", "Net Sales", groups))

	counts, err := analysis.ValueCounts(ds.Rows, analysis.DimChannel)
	require.NoError(t, err)
	require.NoError(t, p.ValueCounts("Channel", counts))

	out := buf.String()
	assert.Contains(t, out, "1. DATA EXPLORATION")
	assert.Contains(t, out, "Records:    300")
	assert.Contains(t, out, "Columns:    16")
	assert.Contains(t, out, "Missing values: none")
	assert.Contains(t, out, "ORD-01000")
	assert.Contains(t, out, "ORD-01004")
	assert.NotContains(t, out, "ORD-01005")
	assert.Contains(t, out, "Electronics")
	assert.Contains(t, out, "Online")
	assert.Contains(t, out, "300.00")
}

func TestPrinter_MissingValues(t *testing.T) {
	ds := data.Assemble([]data.Order{{OrderID: "ORD-01000", Date: reportNow}})
	var buf bytes.Buffer

	require.NoError(t, NewPrinter(&buf).DatasetInfo(ds, analysis.MissingValues(ds.Rows)))
	assert.Contains(t, buf.String(), "customer_segment")
	assert.NotContains(t, buf.String(), "Missing values: none")

	err := NewPrinter(&buf).DatasetInfo(data.Dataset{}, nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestPrinter_Narrative(t *testing.T) {
	ds := dataset(t, 500)
	ins, err := analysis.BuildInsights(ds)
	require.NoError(t, err)
	outliers, err := analysis.DetectOutliers(ds.Rows, data.ColumnNetAmount)
	require.NoError(t, err)
	charts, err := analysis.BuildCharts(ds)
	require.NoError(t, err)

	var buf bytes.Buffer
	p := NewPrinter(&buf)
	require.NoError(t, p.Outliers(outliers))
	require.NoError(t, p.Charts(charts))
	p.Insights(ins)
	p.Recommendations()

	out := buf.String()
	assert.Contains(t, out, "Outliers in net_amount:")
	assert.Contains(t, out, "Best-selling category:     "+ins.BestCategory.Label)
	assert.Contains(t, out, "Most popular channel:      "+ins.PopularChannel)
	assert.Contains(t, out, "Best month:  "+ins.BestMonth.Label)
	assert.Contains(t, out, "Monthly Sales Trend")
	assert.Contains(t, out, "Unit Price vs Quantity")
	assert.Contains(t, out, "Plan weekend promotions")
}

func TestWorkbook_Write(t *testing.T) {
	ds := dataset(t, 400)
	charts, err := analysis.BuildCharts(ds)
	require.NoError(t, err)
	ins, err := analysis.BuildInsights(ds)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "dashboard.xlsx")
	require.NoError(t, Workbook{IncludeOrders: true}.Write(path, ds, charts, ins))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Equal(t, dashboardSheet, sheets[0])
	assert.Contains(t, sheets, insightsSheet)
	assert.Contains(t, sheets, ordersSheet)
	for i, c := range charts {
		assert.Contains(t, sheets, ChartSheetName(i, c))
	}

	v, err := f.GetCellValue(ordersSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "ORD-01000", v)
	v, err = f.GetCellValue(ordersSheet, "A401")
	require.NoError(t, err)
	assert.Equal(t, "ORD-01399", v)

	v, err = f.GetCellValue(insightsSheet, "B8")
	require.NoError(t, err)
	assert.Equal(t, ins.PopularChannel, v)

	weekday := ChartSheetName(6, charts[6])
	v, err = f.GetCellValue(weekday, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Mon", v)
}

func TestWorkbook_WithoutOrders(t *testing.T) {
	ds := dataset(t, 50)
	charts, err := analysis.BuildCharts(ds)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dashboard.xlsx")
	require.NoError(t, Workbook{}.Write(path, ds, charts, analysis.Insights{}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.NotContains(t, f.GetSheetList(), ordersSheet)
}

func TestWorkbook_EmptyChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.xlsx")
	err := Workbook{}.Write(path, data.Dataset{}, []analysis.Chart{{ID: "empty", Type: analysis.ChartBar}}, analysis.Insights{})
	assert.True(t, errors.Is(err, apperrors.ErrRender))
}

func TestChartSheetName(t *testing.T) {
	assert.Equal(t, "1_monthly_trend", ChartSheetName(0, analysis.Chart{ID: "monthly_trend"}))
	long := ChartSheetName(8, analysis.Chart{ID: "a_really_long_chart_identifier_name"})
	assert.Len(t, long, 31)
	assert.Equal(t, "3_a_b", ChartSheetName(2, analysis.Chart{ID: "a/b"}))
	assert.Equal(t, "Sheet", sheetSafe("  "))

	turkish := sheetSafe("9_" + strings.Repeat("ş", 40))
	assert.True(t, utf8.ValidString(turkish))
	assert.Equal(t, 31, utf8.RuneCountInString(turkish))
	assert.Equal(t, "9_"+strings.Repeat("ş", 29), turkish)
}

func TestSummary_RoundTrip(t *testing.T) {
	ds := dataset(t, 200)
	ins, err := analysis.BuildInsights(ds)
	require.NoError(t, err)
	cats, err := analysis.SumBy(ds.Rows, analysis.DimCategory)
	require.NoError(t, err)
	trend, err := analysis.MonthlyTrend(ds.Rows)
	require.NoError(t, err)

	in := Summary{
		RunID:        "run-123",
		GeneratedAt:  reportNow,
		Seed:         42,
		Orders:       ds.Len(),
		Insights:     ins,
		Categories:   cats,
		MonthlyTrend: trend,
	}
	path := filepath.Join(t.TempDir(), "out", "summary.yaml")
	require.NoError(t, WriteSummary(path, in))

	got, err := ReadSummary(path)
	require.NoError(t, err)
	assert.Equal(t, "run-123", got.RunID)
	assert.Equal(t, 200, got.Orders)
	assert.Equal(t, ins.BestCategory.Key, got.Insights.BestCategory.Key)
	assert.Equal(t, ins.PopularChannel, got.Insights.PopularChannel)
	assert.Len(t, got.Categories, len(cats))
	require.Len(t, got.MonthlyTrend, len(trend))
	assert.True(t, trend[0].Date.Equal(got.MonthlyTrend[0].Date))
	assert.True(t, reportNow.Equal(got.GeneratedAt))
}
