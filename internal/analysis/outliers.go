package analysis

import (
	"math"
	"sort"

	"retail-sales-lab/internal/data"
	apperrors "retail-sales-lab/internal/errors"
)

// fenceMultiplier scales the interquartile range into the outlier fence.
const fenceMultiplier = 1.5

// Fence is the Tukey fence [Lower, Upper] around the interquartile range.
type Fence struct {
	Q1    float64 `yaml:"q1"`
	Q3    float64 `yaml:"q3"`
	IQR   float64 `yaml:"iqr"`
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// Outside reports whether v lies strictly outside the fence.
func (f Fence) Outside(v float64) bool {
	return v < f.Lower || v > f.Upper
}

// OutlierReport lists the rows whose column value fell outside the fence.
type OutlierReport struct {
	Column string
	Fence  Fence
	Rows   []data.Row
}

// Count returns the number of flagged rows.
func (r OutlierReport) Count() int {
	return len(r.Rows)
}

// Quantile returns the p-quantile of sorted using linear interpolation
// between closest ranks, h = (n-1)p. sorted must be ascending and non-empty.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// IQRFence computes the fence for values. The input is not modified.
func IQRFence(values []float64) (Fence, error) {
	if len(values) == 0 {
		return Fence{}, apperrors.NewValidationError("outlier detection needs at least one value")
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1
	return Fence{
		Q1:    q1,
		Q3:    q3,
		IQR:   iqr,
		Lower: q1 - fenceMultiplier*iqr,
		Upper: q3 + fenceMultiplier*iqr,
	}, nil
}

// OutlierValues returns the values strictly outside the IQR fence, in input order.
func OutlierValues(values []float64) ([]float64, Fence, error) {
	fence, err := IQRFence(values)
	if err != nil {
		return nil, Fence{}, err
	}
	var out []float64
	for _, v := range values {
		if fence.Outside(v) {
			out = append(out, v)
		}
	}
	return out, fence, nil
}

// DetectOutliers flags the rows whose value in column is strictly outside
// the IQR fence of that column. Rows keep their input order.
func DetectOutliers(rows []data.Row, column string) (OutlierReport, error) {
	values, err := data.Values(rows, column)
	if err != nil {
		return OutlierReport{}, err
	}
	fence, err := IQRFence(values)
	if err != nil {
		return OutlierReport{}, err
	}

	report := OutlierReport{Column: column, Fence: fence}
	for i, v := range values {
		if fence.Outside(v) {
			report.Rows = append(report.Rows, rows[i])
		}
	}
	return report, nil
}
