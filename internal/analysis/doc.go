// Package analysis holds the pure reductions over a sales dataset: IQR outlier
// detection, grouped sums and means, value counts, mode, the monthly trend,
// describe-style column summaries, headline insights and the chart series
// handed to the report layer.
//
// Nothing here performs I/O. Every function either returns a value derived
// from its arguments or a validation error from internal/errors.
package analysis
