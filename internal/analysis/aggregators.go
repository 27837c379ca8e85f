package analysis

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"retail-sales-lab/internal/data"
	apperrors "retail-sales-lab/internal/errors"
)

// ============================================================================
// GROUPING: Sum, mean and count of net amount by a categorical dimension
// ============================================================================
// Groups always come back in ascending Key order. Best and Worst scan that
// order and keep the first extreme they meet, so exact ties resolve to the
// smallest key.
// ============================================================================

// Dimension names a categorical column to group by.
type Dimension string

const (
	DimCategory     Dimension = "category"
	DimSegment      Dimension = "segment"
	DimCity         Dimension = "city"
	DimChannel      Dimension = "channel"
	DimMonth        Dimension = "month"
	DimWeekday      Dimension = "weekday"
	DimYear         Dimension = "year"
	DimDiscountRate Dimension = "discount_rate"
)

// Group is one aggregated bucket. Key orders the buckets; Label is for display.
type Group struct {
	Key   string  `yaml:"key"`
	Label string  `yaml:"label"`
	Value float64 `yaml:"value"`
	Count int     `yaml:"count"`
}

type keyFunc func(r data.Row) (key, label string)

var dimensionKeys = map[Dimension]keyFunc{
	DimCategory: func(r data.Row) (string, string) { return r.Category, r.Category },
	DimSegment:  func(r data.Row) (string, string) { return r.Segment, r.Segment },
	DimCity:     func(r data.Row) (string, string) { return r.City, r.City },
	DimChannel:  func(r data.Row) (string, string) { return r.Channel, r.Channel },
	DimMonth: func(r data.Row) (string, string) {
		return fmt.Sprintf("%02d", r.Month), time.Month(r.Month).String()
	},
	DimWeekday: func(r data.Row) (string, string) {
		return fmt.Sprintf("%d", isoWeekday(r.Date.Weekday())), r.Weekday
	},
	DimYear: func(r data.Row) (string, string) {
		y := fmt.Sprintf("%04d", r.Year)
		return y, y
	},
	DimDiscountRate: func(r data.Row) (string, string) {
		k := fmt.Sprintf("%.2f", r.DiscountRate)
		return k, k
	},
}

// ParseDimension validates a dimension name.
func ParseDimension(name string) (Dimension, error) {
	d := Dimension(name)
	if _, ok := dimensionKeys[d]; !ok {
		return "", unknownDimension(d)
	}
	return d, nil
}

func unknownDimension(d Dimension) error {
	return apperrors.NewValidationError(fmt.Sprintf("unknown grouping key %q", string(d))).
		WithContext("dimension", string(d))
}

func emptyDataset(op string) error {
	return apperrors.NewValidationError(op + " requires a non-empty dataset").WithContext("operation", op)
}

// isoWeekday numbers Monday as 1 and Sunday as 7.
func isoWeekday(w time.Weekday) int {
	if w == time.Sunday {
		return 7
	}
	return int(w)
}

// groupNet buckets net amounts by dimension and returns Value as the sum.
func groupNet(rows []data.Row, dim Dimension, op string) ([]Group, error) {
	keyOf, ok := dimensionKeys[dim]
	if !ok {
		return nil, unknownDimension(dim)
	}
	if len(rows) == 0 {
		return nil, emptyDataset(op)
	}

	index := make(map[string]int)
	var groups []Group
	for _, r := range rows {
		key, label := keyOf(r)
		i, exists := index[key]
		if !exists {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key, Label: label})
		}
		groups[i].Value += r.NetAmount
		groups[i].Count++
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups, nil
}

// SumBy totals net amount per group.
func SumBy(rows []data.Row, dim Dimension) ([]Group, error) {
	return groupNet(rows, dim, "sum by "+string(dim))
}

// MeanBy averages net amount per group.
func MeanBy(rows []data.Row, dim Dimension) ([]Group, error) {
	groups, err := groupNet(rows, dim, "mean by "+string(dim))
	if err != nil {
		return nil, err
	}
	for i := range groups {
		groups[i].Value /= float64(groups[i].Count)
	}
	return groups, nil
}

// CountBy counts orders per group.
func CountBy(rows []data.Row, dim Dimension) ([]Group, error) {
	groups, err := groupNet(rows, dim, "count by "+string(dim))
	if err != nil {
		return nil, err
	}
	for i := range groups {
		groups[i].Value = float64(groups[i].Count)
	}
	return groups, nil
}

// Best returns the group with the largest Value.
func Best(groups []Group) (Group, error) {
	return pick(groups, func(candidate, current float64) bool { return candidate > current })
}

// Worst returns the group with the smallest Value.
func Worst(groups []Group) (Group, error) {
	return pick(groups, func(candidate, current float64) bool { return candidate < current })
}

func pick(groups []Group, better func(candidate, current float64) bool) (Group, error) {
	if len(groups) == 0 {
		return Group{}, apperrors.NewValidationError("no groups to choose from")
	}
	ordered := make([]Group, len(groups))
	copy(ordered, groups)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Key < ordered[j].Key })

	best := ordered[0]
	for _, g := range ordered[1:] {
		if better(g.Value, best.Value) {
			best = g
		}
	}
	return best, nil
}

// SortGroups reorders groups in place. Unknown modes keep key order.
// Sorting is stable, so equal values stay in key order.
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case "value_desc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
	case "value_asc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value < groups[j].Value })
	case "label_asc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Label < groups[j].Label })
	default:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	}
}

// ============================================================================
// MODE
// ============================================================================

// Mode returns the most frequent value. Ties go to the value seen first.
func Mode(values []string) (string, error) {
	if len(values) == 0 {
		return "", apperrors.NewValidationError("mode of an empty sequence")
	}
	return modeOf(values, nil), nil
}

// ModeChannel returns the most used sales channel. Ties follow catalog order
// (Online, Store, Phone); channels outside the catalog rank after it.
func ModeChannel(rows []data.Row) (string, error) {
	if len(rows) == 0 {
		return "", emptyDataset("channel mode")
	}
	values := make([]string, len(rows))
	for i, r := range rows {
		values[i] = r.Channel
	}
	return modeOf(values, data.Channels), nil
}

// modeOf ranks candidates in enumeration order first, then the remaining
// values in the order they appear, and keeps the first highest count.
func modeOf(values []string, enumeration []string) string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, v := range values {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	ranked := make([]string, 0, len(enumeration)+len(order))
	listed := make(map[string]bool)
	for _, v := range enumeration {
		if counts[v] > 0 && !listed[v] {
			ranked = append(ranked, v)
			listed[v] = true
		}
	}
	for _, v := range order {
		if !listed[v] {
			ranked = append(ranked, v)
			listed[v] = true
		}
	}

	best := ranked[0]
	for _, v := range ranked[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}

// ============================================================================
// TREND AND TOTALS
// ============================================================================

// TrendPoint is the net amount of one calendar month.
type TrendPoint struct {
	Year  int       `yaml:"year"`
	Month int       `yaml:"month"`
	Date  time.Time `yaml:"date"`
	Value float64   `yaml:"value"`
	Count int       `yaml:"count"`
}

// Label formats the bucket as YYYY-MM.
func (p TrendPoint) Label() string {
	return p.Date.Format("2006-01")
}

// MonthlyTrend sums net amount by (year, month) in chronological order.
// Each point carries the first day of its month.
func MonthlyTrend(rows []data.Row) ([]TrendPoint, error) {
	if len(rows) == 0 {
		return nil, emptyDataset("monthly trend")
	}

	index := make(map[int]int)
	var points []TrendPoint
	for _, r := range rows {
		bucket := r.Year*100 + r.Month
		i, exists := index[bucket]
		if !exists {
			i = len(points)
			index[bucket] = i
			points = append(points, TrendPoint{
				Year:  r.Year,
				Month: r.Month,
				Date:  time.Date(r.Year, time.Month(r.Month), 1, 0, 0, 0, 0, r.Date.Location()),
			})
		}
		points[i].Value += r.NetAmount
		points[i].Count++
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Year*100+points[i].Month < points[j].Year*100+points[j].Month
	})
	return points, nil
}

// Total sums net amount across rows.
func Total(rows []data.Row) (float64, error) {
	if len(rows) == 0 {
		return 0, emptyDataset("total")
	}
	return floats.Sum(netAmounts(rows)), nil
}

func netAmounts(rows []data.Row) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.NetAmount
	}
	return out
}

// AverageOrderValue is the mean net amount per order.
func AverageOrderValue(rows []data.Row) (float64, error) {
	if len(rows) == 0 {
		return 0, emptyDataset("average order value")
	}
	return stat.Mean(netAmounts(rows), nil), nil
}
