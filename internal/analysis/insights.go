package analysis

import (
	"retail-sales-lab/internal/data"
)

// Insights are the headline findings printed at the end of a report.
type Insights struct {
	Orders            int     `yaml:"orders"`
	TotalNet          float64 `yaml:"total_net"`
	BestCategory      Group   `yaml:"best_category"`
	BestSegment       Group   `yaml:"best_segment"`
	BestCity          Group   `yaml:"best_city"`
	AverageOrderValue float64 `yaml:"average_order_value"`
	PopularChannel    string  `yaml:"popular_channel"`
	BestMonth         Group   `yaml:"best_month"`
	WorstMonth        Group   `yaml:"worst_month"`
	Outliers          int     `yaml:"outliers"`
	OutlierFence      Fence   `yaml:"outlier_fence"`
}

// BuildInsights derives the headline findings. Best and worst month compare
// calendar months (1-12) pooled across years.
func BuildInsights(ds data.Dataset) (Insights, error) {
	rows := ds.Rows

	total, err := Total(rows)
	if err != nil {
		return Insights{}, err
	}
	aov, err := AverageOrderValue(rows)
	if err != nil {
		return Insights{}, err
	}

	best := make(map[Dimension]Group, 3)
	for _, dim := range []Dimension{DimCategory, DimSegment, DimCity} {
		groups, err := SumBy(rows, dim)
		if err != nil {
			return Insights{}, err
		}
		if best[dim], err = Best(groups); err != nil {
			return Insights{}, err
		}
	}

	months, err := SumBy(rows, DimMonth)
	if err != nil {
		return Insights{}, err
	}
	bestMonth, err := Best(months)
	if err != nil {
		return Insights{}, err
	}
	worstMonth, err := Worst(months)
	if err != nil {
		return Insights{}, err
	}

	channel, err := ModeChannel(rows)
	if err != nil {
		return Insights{}, err
	}

	outliers, err := DetectOutliers(rows, data.ColumnNetAmount)
	if err != nil {
		return Insights{}, err
	}

	return Insights{
		Orders:            len(rows),
		TotalNet:          total,
		BestCategory:      best[DimCategory],
		BestSegment:       best[DimSegment],
		BestCity:          best[DimCity],
		AverageOrderValue: aov,
		PopularChannel:    channel,
		BestMonth:         bestMonth,
		WorstMonth:        worstMonth,
		Outliers:          outliers.Count(),
		OutlierFence:      outliers.Fence,
	}, nil
}
