package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"inventorypro/internal/domain"
	"inventorypro/internal/events"
)

// checkoutService turns a cart into a recorded sale. The steps run in a
// fixed order with asymmetric failure handling:
//
//  1. Decrement stock (atomic batch). Any failure aborts the checkout with
//     no order written and the cart untouched.
//  2. Persist the order. Failure does NOT abort: the stock write already
//     happened and is not rolled back, so the operator gets a warning and
//     the flow continues. Inventory and sales history disagree until the
//     order is re-entered by hand.
//  3. Render the invoice. Failure is reported; the writes stand.
//  4. Reset the cart and refresh its catalog cache.
//
// Nothing retries automatically; every failure is surfaced to the operator.
type checkoutService struct {
	products domain.ProductStore
	orders   domain.OrderStore
	invoices *InvoiceRenderer
	events   events.Publisher
	logger   *slog.Logger

	now    func() time.Time
	suffix func() (string, error)
}

// NewCheckoutService wires the checkout flow.
func NewCheckoutService(products domain.ProductStore, orders domain.OrderStore, invoices *InvoiceRenderer, publisher events.Publisher, logger *slog.Logger) domain.CheckoutService {
	return &checkoutService{
		products: products,
		orders:   orders,
		invoices: invoices,
		events:   publisher,
		logger:   logger,
		now:      time.Now,
		suffix:   randomOrderSuffix,
	}
}

// GenerateBill implements domain.CheckoutService.
func (s *checkoutService) GenerateBill(ctx context.Context, cart *domain.Cart, idempotencyKey string) (*domain.CheckoutResult, error) {
	const op = "checkout.generate_bill"

	if cart.IsEmpty() {
		return nil, domain.Invalid(op, "cart is empty")
	}
	if cart.Customer.Phone == "" {
		return nil, domain.Invalid(op, "customer phone is required")
	}

	// A retried checkout must not decrement stock twice.
	if idempotencyKey != "" {
		existing, err := s.orders.GetOrderByIdempotencyKey(ctx, idempotencyKey)
		if err == nil {
			return s.replay(ctx, cart, existing)
		}
		if !domain.IsCode(err, domain.ENOTFOUND) {
			return nil, err
		}
	}

	// Step 1: stock reconciliation. All or nothing.
	decrements := make([]domain.StockDecrement, 0, len(cart.Items))
	for _, item := range cart.Items {
		decrements = append(decrements, domain.StockDecrement{
			ProductID:       item.ProductID,
			QuantitySold:    item.Quantity,
			CurrentQuantity: cart.CachedQuantity(item.ProductID),
		})
	}

	adjustments, err := s.products.DecrementStockBatch(ctx, decrements)
	if err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op,
			fmt.Sprintf("stock update failed, bill not generated: %s", domain.ErrorMessage(err)))
	}

	result := &domain.CheckoutResult{Adjustments: adjustments}

	// Step 2: persist the order. A failure here is deliberately non-fatal.
	order, err := s.buildOrder(cart, idempotencyKey)
	if err != nil {
		return nil, err
	}
	result.Order = order

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		s.logger.Error("order record failed to save after stock decrement",
			slog.String("op", op),
			slog.String("order_number", order.Number),
			slog.String("error", err.Error()))
		result.Warnings = append(result.Warnings, domain.WarnOrderNotSaved)
	} else {
		s.events.OrderCreated(order)
		s.events.LowStock(adjustments)
	}

	// Step 3: render the invoice from the in-memory order.
	html, err := s.invoices.Render(order)
	if err != nil {
		s.logger.Error("invoice rendering failed",
			slog.String("op", op),
			slog.String("order_number", order.Number),
			slog.String("error", err.Error()))
		result.Warnings = append(result.Warnings, "invoice could not be rendered")
	} else {
		result.InvoiceHTML = html
	}

	// Step 4: post-sale reset.
	cart.Clear()
	if err := s.refreshCache(ctx, cart); err != nil {
		s.logger.Warn("catalog refresh after checkout failed", slog.String("error", err.Error()))
	}

	return result, nil
}

// replay returns the previously recorded checkout for a retried idempotency
// key without touching stock again.
func (s *checkoutService) replay(ctx context.Context, cart *domain.Cart, order *domain.Order) (*domain.CheckoutResult, error) {
	result := &domain.CheckoutResult{Order: order}

	html, err := s.invoices.Render(order)
	if err == nil {
		result.InvoiceHTML = html
	} else {
		result.Warnings = append(result.Warnings, "invoice could not be rendered")
	}

	cart.Clear()
	if err := s.refreshCache(ctx, cart); err != nil {
		s.logger.Warn("catalog refresh after checkout failed", slog.String("error", err.Error()))
	}
	return result, nil
}

func (s *checkoutService) buildOrder(cart *domain.Cart, idempotencyKey string) (*domain.Order, error) {
	const op = "checkout.build_order"

	suffix, err := s.suffix()
	if err != nil {
		return nil, domain.Internal(err, op, "failed to generate order number")
	}

	now := s.now()
	totals := cart.Totals()

	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}

	return &domain.Order{
		ID:             uuid.New(),
		Number:         OrderNumber(now, suffix),
		Customer:       cart.Customer,
		Items:          items,
		Subtotal:       totals.Subtotal,
		TaxRate:        cart.TaxRate,
		TaxAmount:      totals.TaxAmount,
		Discount:       totals.Discount,
		GrandTotal:     totals.GrandTotal,
		Payment:        cart.Payment,
		Status:         domain.OrderStatusCompleted,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      now,
	}, nil
}

func (s *checkoutService) refreshCache(ctx context.Context, cart *domain.Cart) error {
	products, err := s.products.ListProducts(ctx, domain.ProductFilter{})
	if err != nil {
		return err
	}
	cart.UpdateStock(products)
	return nil
}

// OrderNumber formats the human-facing order identifier: ORD-, the last six
// digits of the epoch milliseconds, and a three-character uppercase base36
// suffix. Example: ORD-012345-AB3.
func OrderNumber(t time.Time, suffix string) string {
	return fmt.Sprintf("ORD-%06d-%s", t.UnixMilli()%1_000_000, suffix)
}

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomOrderSuffix() (string, error) {
	b := make([]byte, 3)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36Alphabet))))
		if err != nil {
			return "", err
		}
		b[i] = base36Alphabet[n.Int64()]
	}
	return string(b), nil
}
