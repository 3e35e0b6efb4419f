package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventorypro/internal/domain"
)

func TestBuildSalesReport_EstimatedFallback(t *testing.T) {
	// quantity 10, threshold 10, price 5, cost 2:
	// estimated units = max(0, 10*5 - 10) = 40
	// revenue = 200, COGS = 80, profit = 120
	products := &fakeProductStore{products: []domain.Product{{
		ID:                uuid.New(),
		Name:              "Widget",
		SKU:               "WID-1",
		Category:          "gadgets",
		Price:             decimal.NewFromInt(5),
		Cost:              decimal.NewFromInt(2),
		Quantity:          10,
		LowStockThreshold: 10,
	}}}
	svc := NewReportService(products, &fakeOrderStore{})

	report, err := svc.BuildSalesReport(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Estimated)
	assert.Equal(t, int64(40), report.UnitsSold)
	assert.Equal(t, "200", report.TotalRevenue.String())
	assert.Equal(t, "80", report.TotalCOGS.String())
	assert.Equal(t, "120", report.TotalProfit.String())
	assert.Equal(t, "60", report.ProfitMargin.String())

	require.Len(t, report.Categories, 1)
	assert.Equal(t, "gadgets", report.Categories[0].Category)
	assert.Equal(t, int64(40), report.Categories[0].Units)

	require.Len(t, report.TopProducts, 1)
	assert.Equal(t, "Widget", report.TopProducts[0].Name)
}

func TestBuildSalesReport_ZeroRevenueZeroMargin(t *testing.T) {
	// A fully stocked product estimates zero units sold.
	products := &fakeProductStore{products: []domain.Product{{
		ID:                uuid.New(),
		Name:              "Widget",
		Price:             decimal.NewFromInt(5),
		Quantity:          50,
		LowStockThreshold: 10,
	}}}
	svc := NewReportService(products, &fakeOrderStore{})

	report, err := svc.BuildSalesReport(context.Background())
	require.NoError(t, err)

	assert.True(t, report.TotalRevenue.IsZero())
	assert.True(t, report.ProfitMargin.IsZero(), "margin must be zero, not a division error")
}

func TestBuildSalesReport_FromOrderHistory(t *testing.T) {
	productID := uuid.New()
	products := &fakeProductStore{products: []domain.Product{{
		ID:       productID,
		Name:     "Widget",
		SKU:      "WID-1",
		Category: "gadgets",
		Price:    decimal.NewFromInt(10),
		Cost:     decimal.NewFromInt(4),
	}}}
	orders := &fakeOrderStore{orders: []domain.Order{
		{
			GrandTotal: decimal.NewFromInt(30),
			CreatedAt:  time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC),
			Items: []domain.OrderItem{{
				ProductID: productID, Name: "Widget", SKU: "WID-1",
				Quantity: 3, UnitPrice: decimal.NewFromInt(10), LineTotal: decimal.NewFromInt(30),
			}},
		},
		{
			GrandTotal: decimal.NewFromInt(20),
			CreatedAt:  time.Date(2026, 8, 2, 11, 0, 0, 0, time.UTC),
			Items: []domain.OrderItem{{
				ProductID: productID, Name: "Widget", SKU: "WID-1",
				Quantity: 2, UnitPrice: decimal.NewFromInt(10), LineTotal: decimal.NewFromInt(20),
			}},
		},
	}}
	svc := NewReportService(products, orders)

	report, err := svc.BuildSalesReport(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Estimated)
	assert.Equal(t, int64(2), report.OrderCount)
	assert.Equal(t, int64(5), report.UnitsSold)
	assert.Equal(t, "50", report.TotalRevenue.String())
	assert.Equal(t, "20", report.TotalCOGS.String())
	assert.Equal(t, "30", report.TotalProfit.String())

	require.Len(t, report.Monthly, 2)
	assert.Equal(t, "2026-07", report.Monthly[0].Month)
	assert.Equal(t, "2026-08", report.Monthly[1].Month)
	assert.Equal(t, int64(1), report.Monthly[0].Orders)

	require.Len(t, report.TopProducts, 1)
	assert.Equal(t, int64(5), report.TopProducts[0].Units)
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)
	products := &fakeProductStore{products: []domain.Product{
		{ID: uuid.New(), Name: "A", Price: decimal.NewFromInt(10), Quantity: 5, LowStockThreshold: 10},
		{ID: uuid.New(), Name: "B", Price: decimal.NewFromInt(3), Quantity: 0, LowStockThreshold: 10},
		{ID: uuid.New(), Name: "C", Price: decimal.NewFromInt(2), Quantity: 100, LowStockThreshold: 10},
	}}
	orders := &fakeOrderStore{orders: []domain.Order{
		{GrandTotal: decimal.NewFromInt(40), CreatedAt: now.Add(-2 * time.Hour)},
		{GrandTotal: decimal.NewFromInt(10), CreatedAt: now.Add(-48 * time.Hour)},
	}}

	svc := NewReportService(products, orders)
	svc.now = func() time.Time { return now }

	dash, err := svc.BuildDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), dash.ProductCount)
	assert.Equal(t, int64(105), dash.TotalStockUnits)
	assert.Equal(t, "250", dash.InventoryValue.String())
	assert.Equal(t, int64(1), dash.LowStockCount)
	assert.Equal(t, int64(1), dash.OutOfStockCount)
	assert.Equal(t, int64(1), dash.OrdersToday)
	assert.Equal(t, "40", dash.RevenueToday.String())
	assert.Len(t, dash.RecentOrders, 2)
}
