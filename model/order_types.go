package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusOrderPlaced    = "order placed"
	DefaultPaymentMethod = "cash"
)

type Product struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Description string          `db:"description" json:"description"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// Order は orders テーブルのヘッダ行です。Items と Total は読み出し時に詰めます。
type Order struct {
	ID            int64     `db:"id" json:"id"`
	Reference     string    `db:"reference" json:"reference"`
	UserID        int64     `db:"user_id" json:"userId"`
	Status        string    `db:"status" json:"status"`
	PaymentMethod string    `db:"payment_method" json:"paymentMethod"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`

	Items []OrderProduct `db:"-" json:"items"`
	// Total は Items から計算し、保存はしません。
	Total decimal.Decimal `db:"-" json:"totalPrice"`
}

// OrderProduct は注文の明細行です。UnitPrice は注文時点の商品価格のスナップショット。
type OrderProduct struct {
	ID          int64           `db:"id" json:"id"`
	OrderID     int64           `db:"order_id" json:"orderId"`
	ProductID   int64           `db:"product_id" json:"productId"`
	ProductName string          `db:"product_name" json:"productName"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unitPrice"`
}

func (op OrderProduct) Subtotal() decimal.Decimal {
	return op.UnitPrice.Mul(decimal.NewFromInt(int64(op.Quantity)))
}

// ComputeTotal は全明細の 数量 x 単価 を合計します。
func ComputeTotal(items []OrderProduct) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// WithTotal は現在の明細から Total を計算して詰めます。
func (o *Order) WithTotal() *Order {
	o.Total = ComputeTotal(o.Items)
	return o
}

// 価格の上限 (NUMERIC(12,2) に収まる範囲)
var maxPriceExclusive = decimal.New(1, 10)

// ParsePrice は価格文字列を検証して decimal に変換します。
// 空・非数値・負数・小数3桁以上・上限以上は ValidationError。
func ParsePrice(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, NewValidationError("price", "is required")
	}
	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, NewValidationError("price", "%q is not a number", s)
	}
	if price.IsNegative() {
		return decimal.Zero, NewValidationError("price", "must not be negative")
	}
	if !price.Equal(price.Truncate(2)) {
		return decimal.Zero, NewValidationError("price", "%q has more than 2 decimal places", s)
	}
	if price.GreaterThanOrEqual(maxPriceExclusive) {
		return decimal.Zero, NewValidationError("price", "must be less than %s", maxPriceExclusive)
	}
	return price, nil
}
