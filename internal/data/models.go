package data

import "time"

// Order is one synthetic sale. It is never modified after Generate returns it.
type Order struct {
	OrderID        string    `gorm:"primaryKey;size:16" json:"order_id" yaml:"order_id"`
	Date           time.Time `gorm:"index" json:"date" yaml:"date"`
	Category       string    `gorm:"size:32;index" json:"category" yaml:"category"`
	UnitPrice      float64   `json:"unit_price" yaml:"unit_price"`
	Quantity       int       `json:"quantity" yaml:"quantity"`
	GrossAmount    float64   `json:"gross_amount" yaml:"gross_amount"`
	DiscountRate   float64   `json:"discount_rate" yaml:"discount_rate"`
	DiscountAmount float64   `json:"discount_amount" yaml:"discount_amount"`
	NetAmount      float64   `json:"net_amount" yaml:"net_amount"`
	Segment        string    `gorm:"size:32;index" json:"customer_segment" yaml:"customer_segment"`
	City           string    `gorm:"size:32;index" json:"city" yaml:"city"`
	Channel        string    `gorm:"size:32;index" json:"channel" yaml:"channel"`
}

// TableName pins the table used when orders are persisted.
func (Order) TableName() string {
	return "sales_orders"
}

// Row is an Order plus the calendar fields derived from its date.
type Row struct {
	Order
	Year      int
	Month     int
	MonthName string
	Weekday   string
}

// Numeric column names accepted by Row.Value.
const (
	ColumnUnitPrice      = "unit_price"
	ColumnQuantity       = "quantity"
	ColumnGrossAmount    = "gross_amount"
	ColumnDiscountRate   = "discount_rate"
	ColumnDiscountAmount = "discount_amount"
	ColumnNetAmount      = "net_amount"
)

// NumericColumns lists the numeric columns in table order.
var NumericColumns = []string{
	ColumnUnitPrice,
	ColumnQuantity,
	ColumnGrossAmount,
	ColumnDiscountRate,
	ColumnDiscountAmount,
	ColumnNetAmount,
}

// columns is the tabular layout: source fields first, derived fields last.
var columns = []string{
	"order_id",
	"date",
	"category",
	ColumnUnitPrice,
	ColumnQuantity,
	ColumnGrossAmount,
	ColumnDiscountRate,
	ColumnDiscountAmount,
	ColumnNetAmount,
	"customer_segment",
	"city",
	"channel",
	"year",
	"month",
	"month_name",
	"weekday_name",
}
