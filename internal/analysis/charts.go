package analysis

import (
	"time"

	"retail-sales-lab/internal/data"
)

// ============================================================================
// CHART SPECS: Render-ready series for the report layer
// ============================================================================

// ChartType selects how a renderer draws a chart.
type ChartType string

const (
	ChartLine          ChartType = "line"
	ChartBar           ChartType = "bar"
	ChartBarHorizontal ChartType = "barh"
	ChartPie           ChartType = "pie"
	ChartScatter       ChartType = "scatter"
)

// Chart is one fixed dashboard chart.
type Chart struct {
	ID     string
	Type   ChartType
	Title  string
	XAxis  string
	YAxis  string
	Series []Series
}

// Series is a named list of points.
type Series struct {
	Name   string
	Points []Point
}

// Point is a labelled value. X is only meaningful for scatter charts.
type Point struct {
	Label string
	X     float64
	Y     float64
}

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// BuildCharts computes the nine dashboard charts in display order.
func BuildCharts(ds data.Dataset) ([]Chart, error) {
	rows := ds.Rows
	if len(rows) == 0 {
		return nil, emptyDataset("charts")
	}

	builders := []func([]data.Row) (Chart, error){
		monthlyTrendChart,
		categoryChart,
		segmentShareChart,
		cityChart,
		channelChart,
		segmentAOVChart,
		weekdayChart,
		discountChart,
		priceQuantityChart,
	}

	charts := make([]Chart, 0, len(builders))
	for _, build := range builders {
		c, err := build(rows)
		if err != nil {
			return nil, err
		}
		charts = append(charts, c)
	}
	return charts, nil
}

func monthlyTrendChart(rows []data.Row) (Chart, error) {
	trend, err := MonthlyTrend(rows)
	if err != nil {
		return Chart{}, err
	}
	points := make([]Point, len(trend))
	for i, p := range trend {
		points[i] = Point{Label: p.Label(), Y: data.RoundTo2(p.Value)}
	}
	return Chart{
		ID:     "monthly_trend",
		Type:   ChartLine,
		Title:  "Monthly Sales Trend",
		XAxis:  "Month",
		YAxis:  "Net Sales",
		Series: []Series{{Name: "Net Sales", Points: points}},
	}, nil
}

func categoryChart(rows []data.Row) (Chart, error) {
	return groupChart(rows, DimCategory, SumBy, "value_asc", Chart{
		ID:    "category_sales",
		Type:  ChartBarHorizontal,
		Title: "Total Sales by Category",
		XAxis: "Net Sales",
		YAxis: "Category",
	})
}

func segmentShareChart(rows []data.Row) (Chart, error) {
	return groupChart(rows, DimSegment, SumBy, "", Chart{
		ID:    "segment_share",
		Type:  ChartPie,
		Title: "Customer Segment Share",
	})
}

func cityChart(rows []data.Row) (Chart, error) {
	return groupChart(rows, DimCity, SumBy, "value_desc", Chart{
		ID:    "city_sales",
		Type:  ChartBar,
		Title: "Sales by City",
		XAxis: "City",
		YAxis: "Net Sales",
	})
}

func channelChart(rows []data.Row) (Chart, error) {
	return groupChart(rows, DimChannel, SumBy, "", Chart{
		ID:    "channel_sales",
		Type:  ChartBar,
		Title: "Sales Channel Performance",
		XAxis: "Channel",
		YAxis: "Net Sales",
	})
}

func segmentAOVChart(rows []data.Row) (Chart, error) {
	return groupChart(rows, DimSegment, MeanBy, "value_desc", Chart{
		ID:    "segment_aov",
		Type:  ChartBar,
		Title: "Average Order Value by Segment",
		XAxis: "Segment",
		YAxis: "Average Order",
	})
}

func discountChart(rows []data.Row) (Chart, error) {
	return groupChart(rows, DimDiscountRate, CountBy, "", Chart{
		ID:    "discount_distribution",
		Type:  ChartBar,
		Title: "Discount Rate Distribution",
		XAxis: "Discount Rate",
		YAxis: "Orders",
	})
}

func groupChart(
	rows []data.Row,
	dim Dimension,
	reduce func([]data.Row, Dimension) ([]Group, error),
	sortBy string,
	chart Chart,
) (Chart, error) {
	groups, err := reduce(rows, dim)
	if err != nil {
		return Chart{}, err
	}
	SortGroups(groups, sortBy)

	points := make([]Point, len(groups))
	for i, g := range groups {
		points[i] = Point{Label: g.Label, Y: data.RoundTo2(g.Value)}
	}
	name := chart.YAxis
	if chart.Type == ChartBarHorizontal {
		name = chart.XAxis
	}
	if name == "" {
		name = "Net Sales"
	}
	chart.Series = []Series{{Name: name, Points: points}}
	return chart, nil
}

// weekdayChart always lists Monday..Sunday; days without orders plot as zero.
func weekdayChart(rows []data.Row) (Chart, error) {
	groups, err := SumBy(rows, DimWeekday)
	if err != nil {
		return Chart{}, err
	}
	byName := make(map[string]float64, len(groups))
	for _, g := range groups {
		byName[g.Label] = g.Value
	}

	points := make([]Point, len(weekdayOrder))
	for i, d := range weekdayOrder {
		points[i] = Point{Label: d.String()[:3], Y: data.RoundTo2(byName[d.String()])}
	}
	return Chart{
		ID:     "weekday_sales",
		Type:   ChartLine,
		Title:  "Sales by Day of Week",
		XAxis:  "Day",
		YAxis:  "Net Sales",
		Series: []Series{{Name: "Net Sales", Points: points}},
	}, nil
}

func priceQuantityChart(rows []data.Row) (Chart, error) {
	points := make([]Point, len(rows))
	for i, r := range rows {
		points[i] = Point{Label: r.OrderID, X: r.UnitPrice, Y: float64(r.Quantity)}
	}
	return Chart{
		ID:     "price_vs_quantity",
		Type:   ChartScatter,
		Title:  "Unit Price vs Quantity",
		XAxis:  "Unit Price",
		YAxis:  "Quantity",
		Series: []Series{{Name: "Orders", Points: points}},
	}, nil
}
