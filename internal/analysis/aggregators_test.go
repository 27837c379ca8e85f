package analysis

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-sales-lab/internal/data"
	apperrors "retail-sales-lab/internal/errors"
)

func TestSumBy_PartitionsTotal(t *testing.T) {
	ds := generatedDataset(t, 5000)

	total, err := Total(ds.Rows)
	require.NoError(t, err)

	for _, dim := range []Dimension{DimCategory, DimSegment, DimCity, DimChannel, DimMonth, DimWeekday, DimYear, DimDiscountRate} {
		t.Run(string(dim), func(t *testing.T) {
			groups, err := SumBy(ds.Rows, dim)
			require.NoError(t, err)

			var sum float64
			var count int
			for _, g := range groups {
				sum += g.Value
				count += g.Count
			}
			assert.InDelta(t, total, sum, 1e-6)
			assert.Equal(t, ds.Len(), count)
		})
	}
}

func TestSumBy_CategoryEndToEnd(t *testing.T) {
	ds := generatedDataset(t, 5000)

	groups, err := SumBy(ds.Rows, DimCategory)
	require.NoError(t, err)
	require.Len(t, groups, 6)

	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Key
	}
	assert.ElementsMatch(t, data.CategoryNames(), names)
	assert.IsIncreasing(t, names)
}

func TestSumBy_Groups(t *testing.T) {
	rows := makeRows(t,
		rowSpec{category: "Books", segment: "VIP", channel: "Online", net: 10, date: "2024-03-04"},
		rowSpec{category: "Apparel", segment: "New", channel: "Store", net: 5, date: "2024-03-05"},
		rowSpec{category: "Books", segment: "New", channel: "Online", net: 2.5, date: "2024-11-10"},
	)

	groups, err := SumBy(rows, DimCategory)
	require.NoError(t, err)
	assert.Equal(t, []Group{
		{Key: "Apparel", Label: "Apparel", Value: 5, Count: 1},
		{Key: "Books", Label: "Books", Value: 12.5, Count: 2},
	}, groups)

	months, err := SumBy(rows, DimMonth)
	require.NoError(t, err)
	assert.Equal(t, []Group{
		{Key: "03", Label: "March", Value: 15, Count: 2},
		{Key: "11", Label: "November", Value: 2.5, Count: 1},
	}, months)

	days, err := SumBy(rows, DimWeekday)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, "Monday", days[0].Label)
	assert.Equal(t, "Tuesday", days[1].Label)
	assert.Equal(t, "Sunday", days[2].Label)
	assert.Equal(t, "7", days[2].Key)
}

func TestMeanAndCountBy(t *testing.T) {
	rows := makeRows(t,
		rowSpec{segment: "VIP", net: 100},
		rowSpec{segment: "VIP", net: 50},
		rowSpec{segment: "New", net: 30},
	)

	means, err := MeanBy(rows, DimSegment)
	require.NoError(t, err)
	assert.Equal(t, []Group{
		{Key: "New", Label: "New", Value: 30, Count: 1},
		{Key: "VIP", Label: "VIP", Value: 75, Count: 2},
	}, means)

	counts, err := CountBy(rows, DimSegment)
	require.NoError(t, err)
	assert.Equal(t, 1.0, counts[0].Value)
	assert.Equal(t, 2.0, counts[1].Value)

	vc, err := ValueCounts(rows, DimSegment)
	require.NoError(t, err)
	assert.Equal(t, "VIP", vc[0].Key)
}

func TestGrouping_Errors(t *testing.T) {
	rows := rowsWithNet(1)

	_, err := SumBy(rows, Dimension("colour"))
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = ParseDimension("colour")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	dim, err := ParseDimension("city")
	require.NoError(t, err)
	assert.Equal(t, DimCity, dim)

	for name, fn := range map[string]func([]data.Row, Dimension) ([]Group, error){
		"sum": SumBy, "mean": MeanBy, "count": CountBy,
	} {
		_, err := fn(nil, DimCategory)
		assert.True(t, errors.Is(err, apperrors.ErrValidation), name)
	}

	_, err = Total(nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	_, err = AverageOrderValue(nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	_, err = MonthlyTrend(nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	_, err = ModeChannel(nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestBestWorst_TieBreak(t *testing.T) {
	groups := []Group{
		{Key: "Konya", Value: 40},
		{Key: "Adana", Value: 40},
		{Key: "Bursa", Value: 10},
		{Key: "Izmir", Value: 10},
	}

	best, err := Best(groups)
	require.NoError(t, err)
	assert.Equal(t, "Adana", best.Key)

	worst, err := Worst(groups)
	require.NoError(t, err)
	assert.Equal(t, "Bursa", worst.Key)

	// caller order untouched
	assert.Equal(t, "Konya", groups[0].Key)

	_, err = Best(nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestSortGroups(t *testing.T) {
	groups := []Group{
		{Key: "b", Label: "B", Value: 2},
		{Key: "a", Label: "Z", Value: 2},
		{Key: "c", Label: "C", Value: 1},
	}

	SortGroups(groups, "value_asc")
	assert.Equal(t, "c", groups[0].Key)

	SortGroups(groups, "")
	assert.Equal(t, []string{"a", "b", "c"}, []string{groups[0].Key, groups[1].Key, groups[2].Key})

	SortGroups(groups, "value_desc")
	assert.Equal(t, []string{"a", "b", "c"}, []string{groups[0].Key, groups[1].Key, groups[2].Key})

	SortGroups(groups, "label_asc")
	assert.Equal(t, []string{"b", "c", "a"}, []string{groups[0].Key, groups[1].Key, groups[2].Key})
}

func TestMode(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{name: "clear winner", values: []string{"Online", "Online", "Store"}, want: "Online"},
		{name: "tie goes to first seen", values: []string{"Store", "Online", "Online", "Store"}, want: "Store"},
		{name: "single", values: []string{"Phone"}, want: "Phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Mode(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Mode(nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestModeChannel(t *testing.T) {
	rows := makeRows(t,
		rowSpec{channel: "Online"},
		rowSpec{channel: "Online"},
		rowSpec{channel: "Store"},
	)
	got, err := ModeChannel(rows)
	require.NoError(t, err)
	assert.Equal(t, "Online", got)

	// Store appears first but Online wins the tie by catalog order.
	tied := makeRows(t,
		rowSpec{channel: "Store"},
		rowSpec{channel: "Phone"},
		rowSpec{channel: "Online"},
		rowSpec{channel: "Phone"},
		rowSpec{channel: "Online"},
	)
	got, err = ModeChannel(tied)
	require.NoError(t, err)
	assert.Equal(t, "Online", got)

	generated := generatedDataset(t, 5000)
	got, err = ModeChannel(generated.Rows)
	require.NoError(t, err)
	assert.Equal(t, "Online", got)
}

func TestMonthlyTrend(t *testing.T) {
	rows := makeRows(t,
		rowSpec{net: 10, date: "2024-02-14"},
		rowSpec{net: 5, date: "2023-12-01"},
		rowSpec{net: 7, date: "2024-02-01"},
		rowSpec{net: 1, date: "2023-02-20"},
	)

	trend, err := MonthlyTrend(rows)
	require.NoError(t, err)
	require.Len(t, trend, 3)

	assert.Equal(t, time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC), trend[0].Date)
	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), trend[1].Date)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), trend[2].Date)
	assert.Equal(t, 17.0, trend[2].Value)
	assert.Equal(t, 2, trend[2].Count)
	assert.Equal(t, "2024-02", trend[2].Label())
}

func TestMonthlyTrend_Generated(t *testing.T) {
	ds := generatedDataset(t, 5000)

	trend, err := MonthlyTrend(ds.Rows)
	require.NoError(t, err)

	// a 730-day window touches 24 or 25 calendar months
	assert.GreaterOrEqual(t, len(trend), 24)
	assert.LessOrEqual(t, len(trend), 25)

	total, err := Total(ds.Rows)
	require.NoError(t, err)
	var sum float64
	for i, p := range trend {
		sum += p.Value
		assert.Equal(t, 1, p.Date.Day())
		if i > 0 {
			assert.True(t, trend[i-1].Date.Before(p.Date))
		}
	}
	assert.InDelta(t, total, sum, 1e-6)
}

func TestTotalsAndAOV(t *testing.T) {
	rows := rowsWithNet(10, 20, 30.5)

	total, err := Total(rows)
	require.NoError(t, err)
	assert.InDelta(t, 60.5, total, 1e-9)

	aov, err := AverageOrderValue(rows)
	require.NoError(t, err)
	assert.InDelta(t, 60.5/3, aov, 1e-9)
}
