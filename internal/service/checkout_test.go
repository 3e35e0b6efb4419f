package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventorypro/internal/domain"
	"inventorypro/internal/events"
)

type fakeProductStore struct {
	domain.ProductStore

	products       []domain.Product
	decrementFn    func(decrements []domain.StockDecrement) ([]domain.StockAdjustment, error)
	decrementCalls int
}

func (f *fakeProductStore) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return f.products, nil
}

func (f *fakeProductStore) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.NotFound("catalog.get", "product", id.String())
}

func (f *fakeProductStore) DecrementStockBatch(ctx context.Context, decrements []domain.StockDecrement) ([]domain.StockAdjustment, error) {
	f.decrementCalls++
	if f.decrementFn != nil {
		return f.decrementFn(decrements)
	}

	adjustments := make([]domain.StockAdjustment, 0, len(decrements))
	for _, d := range decrements {
		adjustments = append(adjustments, domain.StockAdjustment{
			ProductID:   d.ProductID,
			OldQuantity: d.CurrentQuantity,
			NewQuantity: d.CurrentQuantity - d.QuantitySold,
		})
	}
	return adjustments, nil
}

type fakeOrderStore struct {
	domain.OrderStore

	orders    []domain.Order
	created   []*domain.Order
	createErr error
	byIdemKey map[string]*domain.Order
}

func (f *fakeOrderStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, order)
	return nil
}

func (f *fakeOrderStore) GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	if o, ok := f.byIdemKey[key]; ok {
		return o, nil
	}
	return nil, domain.NotFound("orders.get_by_idempotency_key", "order", key)
}

func (f *fakeOrderStore) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.Limit > 0 && int(filter.Limit) < len(f.orders) {
		return f.orders[:filter.Limit], nil
	}
	return f.orders, nil
}

func (f *fakeOrderStore) ListOrdersSince(ctx context.Context, since time.Time) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if !o.CreatedAt.Before(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

func newTestCheckout(t *testing.T, products *fakeProductStore, orders *fakeOrderStore) *checkoutService {
	t.Helper()

	renderer, err := NewInvoiceRenderer("Test Store", "", "")
	require.NoError(t, err)

	publisher, err := events.NewPublisher("", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	return &checkoutService{
		products: products,
		orders:   orders,
		invoices: renderer,
		events:   publisher,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      func() time.Time { return time.UnixMilli(1718000012345) },
		suffix:   func() (string, error) { return "AB3", nil },
	}
}

func cartWithItems(t *testing.T) *domain.Cart {
	t.Helper()

	cart := domain.NewCart()
	p := domain.Product{
		ID:       uuid.New(),
		Name:     "Widget",
		SKU:      "WID-1",
		Price:    decimal.RequireFromString("25.99"),
		Quantity: 10,
	}
	require.NoError(t, cart.AddProduct(p))
	require.NoError(t, cart.SetItemQuantity(p.ID, 2))
	cart.Customer = domain.Customer{Phone: "5551234"}
	cart.TaxRate = decimal.NewFromInt(10)
	return cart
}

func TestGenerateBill_EmptyCart(t *testing.T) {
	products := &fakeProductStore{}
	svc := newTestCheckout(t, products, &fakeOrderStore{})

	cart := domain.NewCart()
	cart.Customer.Phone = "5551234"

	_, err := svc.GenerateBill(context.Background(), cart, "")
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Zero(t, products.decrementCalls, "no store call before validation passes")
}

func TestGenerateBill_MissingPhone(t *testing.T) {
	products := &fakeProductStore{}
	svc := newTestCheckout(t, products, &fakeOrderStore{})

	cart := cartWithItems(t)
	cart.Customer.Phone = ""

	_, err := svc.GenerateBill(context.Background(), cart, "")
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Zero(t, products.decrementCalls)
	assert.False(t, cart.IsEmpty(), "cart must be preserved")
}

func TestGenerateBill_StockFailureAbortsEverything(t *testing.T) {
	products := &fakeProductStore{
		decrementFn: func([]domain.StockDecrement) ([]domain.StockAdjustment, error) {
			return nil, domain.Errorf(domain.ECONFLICT, "catalog.decrement_stock",
				"insufficient stock for Widget, available 3, requested 5")
		},
	}
	orders := &fakeOrderStore{}
	svc := newTestCheckout(t, products, orders)

	cart := cartWithItems(t)
	_, err := svc.GenerateBill(context.Background(), cart, "")

	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	assert.Contains(t, domain.ErrorMessage(err), "stock update failed, bill not generated")
	assert.Contains(t, domain.ErrorMessage(err), "insufficient stock for Widget, available 3, requested 5")
	assert.Empty(t, orders.created, "no order may be written when the stock update fails")
	assert.False(t, cart.IsEmpty(), "cart must be preserved for correction")
}

func TestGenerateBill_Success(t *testing.T) {
	products := &fakeProductStore{}
	orders := &fakeOrderStore{}
	svc := newTestCheckout(t, products, orders)

	cart := cartWithItems(t)
	result, err := svc.GenerateBill(context.Background(), cart, "")
	require.NoError(t, err)

	require.Len(t, orders.created, 1)
	order := orders.created[0]
	assert.Equal(t, "ORD-012345-AB3", order.Number)
	assert.Equal(t, domain.OrderStatusCompleted, order.Status)
	assert.Equal(t, "51.98", order.Subtotal.String())
	assert.Equal(t, "5.198", order.TaxAmount.String())
	assert.Equal(t, "57.178", order.GrandTotal.String())

	assert.Empty(t, result.Warnings)
	assert.Contains(t, result.InvoiceHTML, "ORD-012345-AB3")
	assert.Len(t, result.Adjustments, 1)

	assert.True(t, cart.IsEmpty(), "cart must reset after checkout")
	assert.Equal(t, "", cart.Customer.Phone)
	assert.True(t, cart.TaxRate.IsZero())
	assert.Equal(t, domain.PaymentCash, cart.Payment)
}

func TestGenerateBill_OrderSaveFailureStillInvoices(t *testing.T) {
	products := &fakeProductStore{}
	orders := &fakeOrderStore{
		createErr: domain.Internal(nil, "orders.create", "failed to save order"),
	}
	svc := newTestCheckout(t, products, orders)

	cart := cartWithItems(t)
	result, err := svc.GenerateBill(context.Background(), cart, "")

	// Stock was already decremented, so this is a warning, not a failure.
	require.NoError(t, err)
	require.Contains(t, result.Warnings, domain.WarnOrderNotSaved)
	assert.NotEmpty(t, result.InvoiceHTML, "invoice renders even when the order did not save")
	assert.Len(t, result.Adjustments, 1)
	assert.True(t, cart.IsEmpty(), "cart resets even when the order did not save")
}

func TestGenerateBill_IdempotentRetry(t *testing.T) {
	existing := &domain.Order{
		ID:         uuid.New(),
		Number:     "ORD-999999-XY7",
		Customer:   domain.Customer{Phone: "5551234"},
		Status:     domain.OrderStatusCompleted,
		GrandTotal: decimal.RequireFromString("57.178"),
		CreatedAt:  time.UnixMilli(1718000012345),
	}
	products := &fakeProductStore{}
	orders := &fakeOrderStore{byIdemKey: map[string]*domain.Order{"retry-key": existing}}
	svc := newTestCheckout(t, products, orders)

	cart := cartWithItems(t)
	result, err := svc.GenerateBill(context.Background(), cart, "retry-key")
	require.NoError(t, err)

	assert.Equal(t, existing.Number, result.Order.Number)
	assert.Zero(t, products.decrementCalls, "a retried checkout must not decrement stock again")
	assert.Empty(t, orders.created)
	assert.True(t, cart.IsEmpty())
}

func TestOrderNumber(t *testing.T) {
	got := OrderNumber(time.UnixMilli(1718000012345), "AB3")
	if got != "ORD-012345-AB3" {
		t.Errorf("OrderNumber() = %q, want %q", got, "ORD-012345-AB3")
	}
}

func TestRandomOrderSuffix(t *testing.T) {
	suffix, err := randomOrderSuffix()
	require.NoError(t, err)
	require.Len(t, suffix, 3)
	for _, c := range suffix {
		assert.Contains(t, base36Alphabet, string(c))
	}
}
