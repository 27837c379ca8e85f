package db

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"retail-sales-lab/internal/analysis"
	"retail-sales-lab/internal/data"
)

// amountTolerance absorbs float summation order differences between the
// database and the in-memory aggregator.
const amountTolerance = 0.01

// Scenario is a SQL aggregation that must agree with the in-memory aggregator.
type Scenario struct {
	Type        string
	Name        string
	Description string
	Query       string
	// Dimension is empty for the grand-total scenario.
	Dimension analysis.Dimension
}

// ScenarioResult captures timing, explain output and the comparison outcome.
type ScenarioResult struct {
	Type        string
	Name        string
	Description string
	Duration    time.Duration
	RowCount    int64
	Matched     bool
	MaxDiff     float64
	Explain     []string
	Err         error
}

type groupRow struct {
	GroupKey string
	Total    float64
	Orders   int64
}

// Scenarios lists the built-in cross-checks.
func Scenarios() []Scenario {
	table := data.Order{}.TableName()
	grouped := func(column string, dim analysis.Dimension, label string) Scenario {
		return Scenario{
			Type:        "group totals",
			Name:        label,
			Description: fmt.Sprintf("SUM(net_amount) grouped by %s matches the in-memory aggregator.", column),
			Query: fmt.Sprintf(
				"SELECT %s AS group_key, SUM(net_amount) AS total, COUNT(*) AS orders FROM %s GROUP BY %s ORDER BY %s",
				column, table, column, column),
			Dimension: dim,
		}
	}
	return []Scenario{
		grouped("category", analysis.DimCategory, "category totals"),
		grouped("segment", analysis.DimSegment, "segment totals"),
		grouped("city", analysis.DimCity, "city totals"),
		grouped("channel", analysis.DimChannel, "channel totals"),
		{
			Type:        "grand total",
			Name:        "dataset total",
			Description: "SUM(net_amount) over every stored order equals the dataset total.",
			Query:       fmt.Sprintf("SELECT 'all' AS group_key, SUM(net_amount) AS total, COUNT(*) AS orders FROM %s", table),
		},
	}
}

// RunScenarios executes every scenario against gdb and compares the result
// with the same aggregation over ds. explain toggles query plan collection.
func RunScenarios(ctx context.Context, gdb *gorm.DB, ds data.Dataset, explain bool) []ScenarioResult {
	scenarios := Scenarios()
	results := make([]ScenarioResult, 0, len(scenarios))
	for _, sc := range scenarios {
		res := ScenarioResult{Type: sc.Type, Name: sc.Name, Description: sc.Description}

		start := time.Now()
		var rows []groupRow
		if err := gdb.WithContext(ctx).Raw(sc.Query).Scan(&rows).Error; err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		res.Duration = time.Since(start)
		res.RowCount = int64(len(rows))

		want, err := expectedGroups(ds, sc.Dimension)
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		res.Matched, res.MaxDiff = compareGroups(want, rows)

		if explain {
			lines, err := explainQuery(ctx, gdb, sc.Query)
			if err == nil {
				res.Explain = lines
			} else {
				res.Explain = []string{fmt.Sprintf("failed to collect EXPLAIN: %v", err)}
			}
		}

		results = append(results, res)
	}
	return results
}

func expectedGroups(ds data.Dataset, dim analysis.Dimension) ([]analysis.Group, error) {
	if dim == "" {
		total, err := analysis.Total(ds.Rows)
		if err != nil {
			return nil, err
		}
		return []analysis.Group{{Key: "all", Value: total, Count: ds.Len()}}, nil
	}
	return analysis.SumBy(ds.Rows, dim)
}

func compareGroups(want []analysis.Group, got []groupRow) (bool, float64) {
	if len(want) != len(got) {
		return false, math.Inf(1)
	}
	sorted := make([]groupRow, len(got))
	copy(sorted, got)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].GroupKey < sorted[j].GroupKey })

	matched := true
	var maxDiff float64
	for i, g := range want {
		row := sorted[i]
		if row.GroupKey != g.Key || row.Orders != int64(g.Count) {
			return false, math.Inf(1)
		}
		diff := math.Abs(row.Total - g.Value)
		if diff > maxDiff {
			maxDiff = diff
		}
		if diff > amountTolerance {
			matched = false
		}
	}
	return matched, maxDiff
}

func explainQuery(ctx context.Context, gdb *gorm.DB, query string) ([]string, error) {
	if gdb.Dialector.Name() == DriverSQLite {
		return fetchExplain(ctx, gdb, "EXPLAIN QUERY PLAN "+query)
	}
	lines, err := fetchExplain(ctx, gdb, "EXPLAIN ANALYZE "+query)
	if err == nil {
		return lines, nil
	}
	return fetchExplain(ctx, gdb, "EXPLAIN "+query)
}

func fetchExplain(ctx context.Context, gdb *gorm.DB, sql string) ([]string, error) {
	var rows []map[string]interface{}
	if err := gdb.WithContext(ctx).Raw(sql).Scan(&rows).Error; err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lineParts := make([]string, 0, len(row))
		for _, k := range keys {
			lineParts = append(lineParts, fmt.Sprintf("%s=%v", k, row[k]))
		}
		lines = append(lines, strings.Join(lineParts, " "))
	}
	return lines, nil
}
