package data

import (
	"fmt"
	"math/rand"
)

// PriceRange is a half-open unit price interval [Low, High).
type PriceRange struct {
	Low  float64
	High float64
}

// Category binds a product category to its unit price range.
type Category struct {
	Name  string
	Price PriceRange
}

// Catalog values. Slice order is the stable enumeration order used for
// sampling and for tie-breaks that depend on catalog order.
var (
	Categories = []Category{
		{Name: "Electronics", Price: PriceRange{Low: 50, High: 2000}},
		{Name: "Apparel", Price: PriceRange{Low: 20, High: 300}},
		{Name: "Home&Living", Price: PriceRange{Low: 15, High: 500}},
		{Name: "Books", Price: PriceRange{Low: 10, High: 100}},
		{Name: "Sports", Price: PriceRange{Low: 25, High: 800}},
		{Name: "Cosmetics", Price: PriceRange{Low: 30, High: 200}},
	}
	Segments      = []string{"New", "Regular", "VIP", "Corporate"}
	Cities        = []string{"Istanbul", "Ankara", "Izmir", "Bursa", "Antalya", "Adana", "Konya"}
	Channels      = []string{"Online", "Store", "Phone"}
	DiscountRates = []float64{0, 0.05, 0.10, 0.15, 0.20}
)

var (
	quantityTable = MustWeighted([]float64{0.40, 0.20, 0.15, 0.10, 0.05, 0.03, 0.03, 0.02, 0.01, 0.01})
	discountTable = MustWeighted([]float64{0.60, 0.15, 0.15, 0.07, 0.03})
	segmentTable  = MustWeighted([]float64{0.30, 0.40, 0.20, 0.10})
	channelTable  = MustWeighted([]float64{0.50, 0.40, 0.10})
)

// CategoryNames returns the category names in catalog order.
func CategoryNames() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = c.Name
	}
	return names
}

// Weighted is a cumulative distribution table over indexes 0..n-1.
// Pick consumes exactly one uniform draw.
type Weighted struct {
	cdf []float64
}

// NewWeighted builds a table from non-negative weights. Weights are
// normalised by their sum, so they need not add up to exactly 1.
func NewWeighted(weights []float64) (Weighted, error) {
	if len(weights) == 0 {
		return Weighted{}, fmt.Errorf("weighted table needs at least one weight")
	}
	var total float64
	for i, w := range weights {
		if w < 0 {
			return Weighted{}, fmt.Errorf("weight %d is negative: %v", i, w)
		}
		total += w
	}
	if total <= 0 {
		return Weighted{}, fmt.Errorf("weights sum to zero")
	}

	cdf := make([]float64, len(weights))
	var running float64
	for i, w := range weights {
		running += w
		cdf[i] = running / total
	}
	cdf[len(cdf)-1] = 1
	return Weighted{cdf: cdf}, nil
}

// MustWeighted is NewWeighted for package-level tables.
func MustWeighted(weights []float64) Weighted {
	w, err := NewWeighted(weights)
	if err != nil {
		panic(err)
	}
	return w
}

// Index maps a uniform value u in [0,1) to the first index whose cumulative
// probability exceeds u.
func (w Weighted) Index(u float64) int {
	for i, c := range w.cdf {
		if u < c {
			return i
		}
	}
	return len(w.cdf) - 1
}

// Pick draws one index from rnd.
func (w Weighted) Pick(rnd *rand.Rand) int {
	return w.Index(rnd.Float64())
}

// Len returns the number of outcomes.
func (w Weighted) Len() int {
	return len(w.cdf)
}
