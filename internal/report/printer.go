package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"retail-sales-lab/internal/analysis"
	"retail-sales-lab/internal/data"
)

// Recommendations are the fixed closing remarks of every report.
var Recommendations = map[string][]string{
	"Strengths": {
		"Regular customers are the largest revenue source",
		"The online channel performs strongly",
		"Some categories sell consistently well",
	},
	"Areas to improve": {
		"Marketing in low-performing cities can be increased",
		"The phone sales channel should be strengthened",
		"Stock management should be tuned for seasonal swings",
	},
	"Strategic actions": {
		"Run dedicated campaigns to grow the VIP segment",
		"Widen the product range in low-selling categories",
		"Plan weekend promotions",
	},
}

var recommendationOrder = []string{"Strengths", "Areas to improve", "Strategic actions"}

// Printer writes the console report.
type Printer struct {
	w io.Writer
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Section prints a numbered heading.
func (p *Printer) Section(n int, title string) {
	heading := fmt.Sprintf("%d. %s", n, strings.ToUpper(title))
	fmt.Fprintf(p.w, "\n%s\n%s\n", heading, strings.Repeat("-", len(heading)))
}

// Line prints one line of free text.
func (p *Printer) Line(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) table(headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(p.w)
	cells := make([]any, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	table.Header(cells...)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("fill table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

// DatasetInfo prints record count, column count, date range and missing cells.
func (p *Printer) DatasetInfo(ds data.Dataset, missing map[string]int) error {
	first, last, err := ds.DateRange()
	if err != nil {
		return err
	}
	p.Line("Records:    %d", ds.Len())
	p.Line("Columns:    %d", len(ds.Columns()))
	p.Line("Date range: %s - %s", first.Format(data.DateLayout), last.Format(data.DateLayout))

	cols := make([]string, 0, len(missing))
	for col, n := range missing {
		if n > 0 {
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		p.Line("Missing values: none")
		return nil
	}
	sort.Strings(cols)
	rows := make([][]string, len(cols))
	for i, col := range cols {
		rows[i] = []string{col, fmt.Sprintf("%d", missing[col])}
	}
	return p.table([]string{"Column", "Missing"}, rows)
}

// Head prints rows with every source and derived column.
func (p *Printer) Head(ds data.Dataset, rows []data.Row) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.Record()
	}
	return p.table(ds.Columns(), records)
}

// Describe prints the describe-style summary, one column per metric row.
func (p *Printer) Describe(summaries []analysis.ColumnSummary) error {
	headers := []string{"Stat"}
	for _, s := range summaries {
		headers = append(headers, s.Column)
	}
	metrics := []struct {
		name string
		get  func(analysis.ColumnSummary) float64
	}{
		{"count", func(s analysis.ColumnSummary) float64 { return float64(s.Count) }},
		{"mean", func(s analysis.ColumnSummary) float64 { return s.Mean }},
		{"std", func(s analysis.ColumnSummary) float64 { return s.Std }},
		{"min", func(s analysis.ColumnSummary) float64 { return s.Min }},
		{"25%", func(s analysis.ColumnSummary) float64 { return s.Q25 }},
		{"50%", func(s analysis.ColumnSummary) float64 { return s.Median }},
		{"75%", func(s analysis.ColumnSummary) float64 { return s.Q75 }},
		{"max", func(s analysis.ColumnSummary) float64 { return s.Max }},
	}

	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		row := []string{m.name}
		for _, s := range summaries {
			v := m.get(s)
			if math.IsNaN(v) {
				row = append(row, "NaN")
				continue
			}
			row = append(row, fmt.Sprintf("%.2f", v))
		}
		rows = append(rows, row)
	}
	return p.table(headers, rows)
}

// Groups prints a grouped aggregate with each group's share of the column total.
func (p *Printer) Groups(label string, valueHeader string, groups []analysis.Group) error {
	var total float64
	for _, g := range groups {
		total += g.Value
	}
	rows := make([][]string, len(groups))
	for i, g := range groups {
		share := 0.0
		if total != 0 {
			share = g.Value / total
		}
		rows[i] = []string{g.Label, FormatNumber(g.Value), fmt.Sprintf("%d", g.Count), FormatPercent(share)}
	}
	return p.table([]string{label, valueHeader, "Orders", "Share"}, rows)
}

// ValueCounts prints order counts per group.
func (p *Printer) ValueCounts(label string, groups []analysis.Group) error {
	rows := make([][]string, len(groups))
	for i, g := range groups {
		rows[i] = []string{g.Label, fmt.Sprintf("%d", g.Count)}
	}
	return p.table([]string{label, "Orders"}, rows)
}

// Outliers prints the fence and how many rows fell outside it.
func (p *Printer) Outliers(report analysis.OutlierReport) error {
	p.Line("Outliers in %s: %d", report.Column, report.Count())
	f := report.Fence
	return p.table(
		[]string{"Q1", "Q3", "IQR", "Lower", "Upper"},
		[][]string{{
			FormatNumber(f.Q1), FormatNumber(f.Q3), FormatNumber(f.IQR),
			FormatNumber(f.Lower), FormatNumber(f.Upper),
		}},
	)
}

// Charts lists the charts handed to the renderer.
func (p *Printer) Charts(charts []analysis.Chart) error {
	rows := make([][]string, len(charts))
	for i, c := range charts {
		points := 0
		for _, s := range c.Series {
			points += len(s.Points)
		}
		rows[i] = []string{fmt.Sprintf("%d", i+1), c.Title, string(c.Type), fmt.Sprintf("%d", points)}
	}
	return p.table([]string{"#", "Chart", "Type", "Points"}, rows)
}

// Insights prints the narrative summary lines.
func (p *Printer) Insights(ins analysis.Insights) {
	p.Line("Best-selling category:     %s (%s)", ins.BestCategory.Label, FormatAmount(ins.BestCategory.Value))
	p.Line("Most profitable segment:   %s", ins.BestSegment.Label)
	p.Line("Best performing city:      %s", ins.BestCity.Label)
	p.Line("Average order value:       %s", FormatAmount(ins.AverageOrderValue))
	p.Line("Most popular channel:      %s", ins.PopularChannel)
	p.Line("")
	p.Line("Seasonality:")
	p.Line("  Best month:  %s (%s)", ins.BestMonth.Label, FormatAmount(ins.BestMonth.Value))
	p.Line("  Worst month: %s (%s)", ins.WorstMonth.Label, FormatAmount(ins.WorstMonth.Value))
}

// Recommendations prints the fixed closing remarks.
func (p *Printer) Recommendations() {
	for _, heading := range recommendationOrder {
		p.Line("%s:", heading)
		for _, item := range Recommendations[heading] {
			p.Line("  * %s", item)
		}
	}
}
