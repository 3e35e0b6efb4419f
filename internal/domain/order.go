package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a recorded sale. Checkout writes
// orders as completed; the history is append-only.
type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "completed"
)

// OrderItem is a frozen snapshot of a cart line at the moment of sale.
type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Order is a completed sale. Number is the human-facing identifier
// (ORD-xxxxxx-XXX); ID is the storage key.
//
// Invariants: Subtotal is the sum of line totals, TaxAmount is
// Subtotal*TaxRate/100, GrandTotal is Subtotal+TaxAmount-Discount.
type Order struct {
	ID             uuid.UUID       `json:"id"`
	Number         string          `json:"number"`
	Customer       Customer        `json:"customer"`
	Items          []OrderItem     `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Discount       decimal.Decimal `json:"discount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	Payment        PaymentMethod   `json:"payment_method"`
	Status         OrderStatus     `json:"status"`
	IdempotencyKey string          `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
}

// UnitsSold returns the total units across the order's items.
func (o *Order) UnitsSold() int64 {
	var n int64
	for _, item := range o.Items {
		n += int64(item.Quantity)
	}
	return n
}

// OrderFilter narrows order listings. Limit 0 means no pagination.
type OrderFilter struct {
	Limit  int32
	Offset int32
}

// OrderStore is the sales-history persistence boundary.
type OrderStore interface {
	// CreateOrder persists the order and its items in one transaction.
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)
	// GetOrderByIdempotencyKey returns the order recorded for a checkout
	// retry key, or ENOTFOUND.
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)
	ListOrdersSince(ctx context.Context, since time.Time) ([]Order, error)
}
