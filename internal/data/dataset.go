package data

import (
	"fmt"
	"time"

	apperrors "retail-sales-lab/internal/errors"
)

// Dataset is the read-only tabular view over generated orders.
type Dataset struct {
	Rows []Row
}

// Assemble derives the calendar columns for every order. Orders are copied,
// never filtered or reordered.
func Assemble(orders []Order) Dataset {
	rows := make([]Row, len(orders))
	for i, o := range orders {
		rows[i] = deriveRow(o)
	}
	return Dataset{Rows: rows}
}

func deriveRow(o Order) Row {
	return Row{
		Order:     o,
		Year:      o.Date.Year(),
		Month:     int(o.Date.Month()),
		MonthName: o.Date.Month().String(),
		Weekday:   o.Date.Weekday().String(),
	}
}

// Len returns the number of rows.
func (d Dataset) Len() int {
	return len(d.Rows)
}

// Columns returns the source and derived column names in table order.
func (d Dataset) Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Head returns at most k leading rows.
func (d Dataset) Head(k int) []Row {
	if k < 0 {
		k = 0
	}
	if k > len(d.Rows) {
		k = len(d.Rows)
	}
	return d.Rows[:k]
}

// Orders returns the source orders without the derived fields.
func (d Dataset) Orders() []Order {
	out := make([]Order, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Order
	}
	return out
}

// DateRange returns the earliest and latest order dates.
func (d Dataset) DateRange() (time.Time, time.Time, error) {
	if len(d.Rows) == 0 {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("date range of an empty dataset")
	}
	first, last := d.Rows[0].Date, d.Rows[0].Date
	for _, r := range d.Rows[1:] {
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last, nil
}

// Value returns the named numeric column.
func (r Row) Value(column string) (float64, error) {
	switch column {
	case ColumnUnitPrice:
		return r.UnitPrice, nil
	case ColumnQuantity:
		return float64(r.Quantity), nil
	case ColumnGrossAmount:
		return r.GrossAmount, nil
	case ColumnDiscountRate:
		return r.DiscountRate, nil
	case ColumnDiscountAmount:
		return r.DiscountAmount, nil
	case ColumnNetAmount:
		return r.NetAmount, nil
	default:
		return 0, apperrors.NewValidationError(fmt.Sprintf("unknown numeric column %q", column)).
			WithContext("column", column)
	}
}

// Values extracts a numeric column from rows.
func Values(rows []Row, column string) ([]float64, error) {
	if !IsNumericColumn(column) {
		_, err := Row{}.Value(column)
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i], _ = r.Value(column)
	}
	return out, nil
}

// IsNumericColumn reports whether column is accepted by Row.Value.
func IsNumericColumn(column string) bool {
	for _, c := range NumericColumns {
		if c == column {
			return true
		}
	}
	return false
}

// Record renders a row as strings in Columns order.
func (r Row) Record() []string {
	return []string{
		r.OrderID,
		r.Date.Format(DateLayout),
		r.Category,
		fmt.Sprintf("%.2f", r.UnitPrice),
		fmt.Sprintf("%d", r.Quantity),
		fmt.Sprintf("%.2f", r.GrossAmount),
		fmt.Sprintf("%.2f", r.DiscountRate),
		fmt.Sprintf("%.2f", r.DiscountAmount),
		fmt.Sprintf("%.2f", r.NetAmount),
		r.Segment,
		r.City,
		r.Channel,
		fmt.Sprintf("%d", r.Year),
		fmt.Sprintf("%d", r.Month),
		r.MonthName,
		r.Weekday,
	}
}

// DateLayout is the calendar date format used in tables and exports.
const DateLayout = "2006-01-02"
