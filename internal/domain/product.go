package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item. Price and Cost are monetary values; Quantity is
// the authoritative on-hand stock count.
type Product struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	SKU               string          `json:"sku"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	Quantity          int32           `json:"quantity"`
	LowStockThreshold int32           `json:"low_stock_threshold"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Stock status values derived from quantity vs. threshold.
const (
	StockOut = "out_of_stock"
	StockLow = "low_stock"
	StockOK  = "in_stock"
)

// StockStatus classifies the product's current stock level.
func (p *Product) StockStatus() string {
	switch {
	case p.Quantity <= 0:
		return StockOut
	case p.Quantity <= p.LowStockThreshold:
		return StockLow
	default:
		return StockOK
	}
}

// ProductFilter narrows catalog listings. Zero values mean "no constraint";
// Limit 0 means no pagination.
type ProductFilter struct {
	Category string
	Search   string
	Limit    int32
	Offset   int32
}

// CreateProductParams carries the fields for a new catalog entry.
type CreateProductParams struct {
	Name              string
	Category          string
	SKU               string
	Price             decimal.Decimal
	Cost              decimal.Decimal
	Quantity          int32
	LowStockThreshold int32
}

// UpdateProductParams updates a catalog entry; nil fields are left unchanged.
type UpdateProductParams struct {
	Name              *string
	Category          *string
	SKU               *string
	Price             *decimal.Decimal
	Cost              *decimal.Decimal
	Quantity          *int32
	LowStockThreshold *int32
}

// StockDecrement is one entry in a checkout's batch stock update.
// CurrentQuantity is the caller's last-seen stock level; it is advisory only
// and the store re-reads the authoritative row before applying.
type StockDecrement struct {
	ProductID       uuid.UUID `json:"product_id" validate:"required"`
	QuantitySold    int32     `json:"quantity_sold" validate:"required,gt=0"`
	CurrentQuantity int32     `json:"current_quantity" validate:"gte=0"`
}

// StockAdjustment reports one applied decrement.
type StockAdjustment struct {
	ProductID         uuid.UUID `json:"product_id"`
	ProductName       string    `json:"product_name"`
	OldQuantity       int32     `json:"old_quantity"`
	NewQuantity       int32     `json:"new_quantity"`
	LowStockThreshold int32     `json:"low_stock_threshold"`
}

// LowStock reports whether the adjustment left the product at or below its
// reorder threshold.
func (a StockAdjustment) LowStock() bool {
	return a.NewQuantity <= a.LowStockThreshold
}

// ProductStore is the catalog persistence boundary.
type ProductStore interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*Product, error)
	CreateProduct(ctx context.Context, params CreateProductParams) (*Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	// DecrementStockBatch applies every decrement or none. Validation stops at
	// the first missing product or insufficient stock and nothing is written.
	DecrementStockBatch(ctx context.Context, decrements []StockDecrement) ([]StockAdjustment, error)

	ListLowStockProducts(ctx context.Context) ([]Product, error)
}
