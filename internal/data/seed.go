package data

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	apperrors "retail-sales-lab/internal/errors"
)

const (
	// DefaultSeed keeps reports reproducible between runs.
	DefaultSeed = 42
	// DefaultOrders is the record count used when none is given.
	DefaultOrders = 5000
	// DateWindowDays is the width of the sampled date window, ending today.
	DateWindowDays = 730

	firstOrderNumber = 1000
)

// NewRand returns the generator every sampling call must go through.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Generate produces n synthetic orders dated within the DateWindowDays days
// before now. The output depends only on n, the state of rnd and the calendar
// day of now.
func Generate(n int, rnd *rand.Rand, now time.Time) ([]Order, error) {
	if n < 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("record count must not be negative, got %d", n)).
			WithContext("orders", n)
	}
	if rnd == nil {
		return nil, apperrors.NewValidationError("random source is required")
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -DateWindowDays)

	orders := make([]Order, 0, n)
	for i := 0; i < n; i++ {
		orders = append(orders, buildSyntheticOrder(i, rnd, start))
	}
	return orders, nil
}

func buildSyntheticOrder(idx int, rnd *rand.Rand, start time.Time) Order {
	date := start.AddDate(0, 0, rnd.Intn(DateWindowDays))

	category := Categories[rnd.Intn(len(Categories))]
	rawPrice := category.Price.Low + rnd.Float64()*(category.Price.High-category.Price.Low)

	quantity := quantityTable.Pick(rnd) + 1
	discountRate := DiscountRates[discountTable.Pick(rnd)]
	segment := Segments[segmentTable.Pick(rnd)]
	city := Cities[rnd.Intn(len(Cities))]
	channel := Channels[channelTable.Pick(rnd)]

	// Amounts derive from the rounded unit price so the stored columns
	// satisfy net = round2(unit * qty * (1 - rate)) and gross = net + discount.
	unitPrice := RoundTo2(rawPrice)
	gross := RoundTo2(unitPrice * float64(quantity))
	net := RoundTo2(unitPrice * float64(quantity) * (1 - discountRate))
	discount := RoundTo2(gross - net)

	return Order{
		OrderID:        orderID(idx),
		Date:           date,
		Category:       category.Name,
		UnitPrice:      unitPrice,
		Quantity:       quantity,
		GrossAmount:    gross,
		DiscountRate:   discountRate,
		DiscountAmount: discount,
		NetAmount:      net,
		Segment:        segment,
		City:           city,
		Channel:        channel,
	}
}

func orderID(idx int) string {
	return fmt.Sprintf("ORD-%05d", firstOrderNumber+idx)
}

// RoundTo2 rounds half away from zero to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
