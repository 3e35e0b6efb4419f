package service

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventorypro/internal/domain"
)

func testOrder() *domain.Order {
	return &domain.Order{
		ID:     uuid.New(),
		Number: "ORD-012345-AB3",
		Customer: domain.Customer{
			Phone: "5551234",
			Name:  "Ada Lovelace",
		},
		Items: []domain.OrderItem{{
			ProductID: uuid.New(),
			Name:      "Widget",
			SKU:       "WID-1",
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("25.99"),
			LineTotal: decimal.RequireFromString("51.98"),
		}},
		Subtotal:   decimal.RequireFromString("51.98"),
		TaxRate:    decimal.NewFromInt(10),
		TaxAmount:  decimal.RequireFromString("5.198"),
		GrandTotal: decimal.RequireFromString("57.178"),
		Payment:    domain.PaymentCard,
		Status:     domain.OrderStatusCompleted,
		CreatedAt:  time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC),
	}
}

func TestInvoiceRender(t *testing.T) {
	renderer, err := NewInvoiceRenderer("Corner Shop", "1 Main St", "5550000")
	require.NoError(t, err)

	html, err := renderer.Render(testOrder())
	require.NoError(t, err)

	for _, want := range []string{
		"Corner Shop",
		"ORD-012345-AB3",
		"Ada Lovelace",
		"5551234",
		"Widget",
		"WID-1",
		"25.99",
		"51.98",
		"Tax (10%)",
		"5.20",  // tax rounded at render time
		"57.18", // grand total rounded at render time
		"CARD",
		"Thank you for your business!",
	} {
		assert.Contains(t, html, want)
	}
}

func TestInvoiceRender_HidesZeroTaxAndDiscount(t *testing.T) {
	renderer, err := NewInvoiceRenderer("Corner Shop", "", "")
	require.NoError(t, err)

	order := testOrder()
	order.TaxRate = decimal.Zero
	order.TaxAmount = decimal.Zero
	order.Discount = decimal.Zero
	order.GrandTotal = order.Subtotal

	html, err := renderer.Render(order)
	require.NoError(t, err)

	assert.NotContains(t, html, "Tax (")
	assert.NotContains(t, html, "Discount")
}

func TestInvoiceRender_ShowsDiscount(t *testing.T) {
	renderer, err := NewInvoiceRenderer("Corner Shop", "", "")
	require.NoError(t, err)

	order := testOrder()
	order.Discount = decimal.NewFromInt(5)
	order.GrandTotal = order.Subtotal.Add(order.TaxAmount).Sub(order.Discount)

	html, err := renderer.Render(order)
	require.NoError(t, err)

	assert.Contains(t, html, "Discount")
	assert.Contains(t, html, "-5.00")
}

func TestInvoiceRender_EscapesHTML(t *testing.T) {
	renderer, err := NewInvoiceRenderer("Corner Shop", "", "")
	require.NoError(t, err)

	order := testOrder()
	order.Items[0].Name = `<script>alert("x")</script>`

	html, err := renderer.Render(order)
	require.NoError(t, err)

	assert.False(t, strings.Contains(html, "<script>alert"), "item names must be escaped")
}
