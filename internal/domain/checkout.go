package domain

import "context"

// Checkout warning texts. These surface verbatim in the checkout response;
// they describe writes that already happened and cannot be undone.
const (
	WarnOrderNotSaved = "stock was updated but the order record failed to save"
)

// CheckoutResult is the outcome of a successful bill generation. Warnings
// carry non-fatal failures from the later steps (order persistence, invoice
// rendering); when present, the writes named by earlier steps still stand.
type CheckoutResult struct {
	Order       *Order            `json:"order"`
	Adjustments []StockAdjustment `json:"stock_adjustments"`
	InvoiceHTML string            `json:"invoice_html"`
	Warnings    []string          `json:"warnings,omitempty"`
}

// CheckoutService turns a cart into a recorded sale: decrement stock, persist
// the order, render the invoice, reset the cart. Step failures after the
// stock write do not roll it back; they are reported as warnings.
type CheckoutService interface {
	// GenerateBill runs the checkout flow for the cart. idempotencyKey, when
	// non-empty, dedupes client retries: a key already recorded returns the
	// original order without touching stock again.
	GenerateBill(ctx context.Context, cart *Cart, idempotencyKey string) (*CheckoutResult, error)
}
