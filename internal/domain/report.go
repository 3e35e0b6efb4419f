package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesReport is the derived analytics summary. When no order history exists
// the figures are estimates projected from catalog stock levels and Estimated
// is true.
type SalesReport struct {
	TotalRevenue decimal.Decimal  `json:"total_revenue"`
	TotalCOGS    decimal.Decimal  `json:"total_cogs"`
	TotalProfit  decimal.Decimal  `json:"total_profit"`
	ProfitMargin decimal.Decimal  `json:"profit_margin"`
	UnitsSold    int64            `json:"units_sold"`
	OrderCount   int64            `json:"order_count"`
	Estimated    bool             `json:"estimated"`
	Categories   []CategoryMetric `json:"categories"`
	Monthly      []MonthlyMetric  `json:"monthly"`
	TopProducts  []ProductMetric  `json:"top_products"`
}

// CategoryMetric is revenue and units grouped by product category.
type CategoryMetric struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
	Units    int64           `json:"units"`
}

// MonthlyMetric is revenue and order count for one calendar month
// (YYYY-MM).
type MonthlyMetric struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

// ProductMetric ranks a product by units moved.
type ProductMetric struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Units     int64           `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Dashboard is the at-a-glance store summary.
type Dashboard struct {
	ProductCount    int64           `json:"product_count"`
	TotalStockUnits int64           `json:"total_stock_units"`
	InventoryValue  decimal.Decimal `json:"inventory_value"`
	LowStockCount   int64           `json:"low_stock_count"`
	OutOfStockCount int64           `json:"out_of_stock_count"`
	OrdersToday     int64           `json:"orders_today"`
	RevenueToday    decimal.Decimal `json:"revenue_today"`
	RecentOrders    []Order         `json:"recent_orders"`
}
