package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"retail-sales-lab/internal/data"
)

// DefaultDescribeColumns are the columns summarised when none are named.
var DefaultDescribeColumns = []string{
	data.ColumnUnitPrice,
	data.ColumnQuantity,
	data.ColumnGrossAmount,
	data.ColumnNetAmount,
}

// ColumnSummary is the count, moments and five-number summary of one column.
// Std is the sample standard deviation and is NaN for a single value.
type ColumnSummary struct {
	Column string  `yaml:"column"`
	Count  int     `yaml:"count"`
	Mean   float64 `yaml:"mean"`
	Std    float64 `yaml:"std"`
	Min    float64 `yaml:"min"`
	Q25    float64 `yaml:"q25"`
	Median float64 `yaml:"median"`
	Q75    float64 `yaml:"q75"`
	Max    float64 `yaml:"max"`
}

// Describe summarises numeric columns of rows.
func Describe(rows []data.Row, columns ...string) ([]ColumnSummary, error) {
	if len(rows) == 0 {
		return nil, emptyDataset("describe")
	}
	if len(columns) == 0 {
		columns = DefaultDescribeColumns
	}

	out := make([]ColumnSummary, 0, len(columns))
	for _, col := range columns {
		values, err := data.Values(rows, col)
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(col, values))
	}
	return out, nil
}

func summarize(column string, values []float64) ColumnSummary {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		std = math.NaN()
	}

	return ColumnSummary{
		Column: column,
		Count:  len(sorted),
		Mean:   mean,
		Std:    std,
		Min:    sorted[0],
		Q25:    Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q75:    Quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

// MissingValues counts empty cells per non-numeric column. Numeric columns
// cannot be missing in a generated dataset and are not listed.
func MissingValues(rows []data.Row) map[string]int {
	missing := map[string]int{
		"order_id":         0,
		"date":             0,
		"category":         0,
		"customer_segment": 0,
		"city":             0,
		"channel":          0,
	}
	for _, r := range rows {
		if r.OrderID == "" {
			missing["order_id"]++
		}
		if r.Date.IsZero() {
			missing["date"]++
		}
		if r.Category == "" {
			missing["category"]++
		}
		if r.Segment == "" {
			missing["customer_segment"]++
		}
		if r.City == "" {
			missing["city"]++
		}
		if r.Channel == "" {
			missing["channel"]++
		}
	}
	return missing
}

// ValueCounts returns order counts per group, most frequent first.
func ValueCounts(rows []data.Row, dim Dimension) ([]Group, error) {
	groups, err := CountBy(rows, dim)
	if err != nil {
		return nil, err
	}
	SortGroups(groups, "value_desc")
	return groups, nil
}
