package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"retail-sales-lab/internal/data"
)

var testNow = time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)

type rowSpec struct {
	category string
	segment  string
	city     string
	channel  string
	net      float64
	date     string
}

func makeRows(t *testing.T, specs ...rowSpec) []data.Row {
	t.Helper()
	orders := make([]data.Order, len(specs))
	for i, s := range specs {
		date := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		if s.date != "" {
			var err error
			date, err = time.Parse(data.DateLayout, s.date)
			require.NoError(t, err)
		}
		orders[i] = data.Order{
			OrderID:     "ORD-" + string(rune('A'+i)),
			Date:        date,
			Category:    s.category,
			Segment:     s.segment,
			City:        s.city,
			Channel:     s.channel,
			UnitPrice:   s.net,
			Quantity:    1,
			GrossAmount: s.net,
			NetAmount:   s.net,
		}
	}
	return data.Assemble(orders).Rows
}

func generatedDataset(t *testing.T, n int) data.Dataset {
	t.Helper()
	orders, err := data.Generate(n, data.NewRand(data.DefaultSeed), testNow)
	require.NoError(t, err)
	return data.Assemble(orders)
}

func rowsWithNet(values ...float64) []data.Row {
	rows := make([]data.Row, len(values))
	for i, v := range values {
		rows[i] = data.Row{Order: data.Order{NetAmount: v}}
	}
	return rows
}
