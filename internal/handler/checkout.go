package handler

import (
	"net/http"
	"slices"

	"inventorypro/internal/domain"
	"inventorypro/internal/middleware"
)

// CheckoutHandler serves POST /api/checkout.
type CheckoutHandler struct {
	checkout domain.CheckoutService
	metrics  *middleware.Metrics
}

// NewCheckoutHandler creates a CheckoutHandler.
func NewCheckoutHandler(checkout domain.CheckoutService, metrics *middleware.Metrics) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, metrics: metrics}
}

type checkoutRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
}

type checkoutResponse struct {
	*domain.CheckoutResult
	InvoiceURL string `json:"invoice_url,omitempty"`
}

// GenerateBill runs the checkout flow for the session's cart. The
// idempotency key may come from the body or the X-Idempotency-Key header.
func (h *CheckoutHandler) GenerateBill(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionCart(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if r.ContentLength > 0 {
		if err := DecodeValid(r, &req); err != nil {
			ErrorResponse(w, r, err)
			return
		}
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("X-Idempotency-Key")
	}

	result, err := h.checkout.GenerateBill(r.Context(), session.Cart, req.IdempotencyKey)
	if err != nil {
		h.metrics.CheckoutFailed.WithLabelValues(domain.ErrorCode(err)).Inc()
		ErrorResponse(w, r, err)
		return
	}

	h.metrics.OrdersCreated.Inc()
	h.metrics.OrderValue.Observe(result.Order.GrandTotal.InexactFloat64())

	resp := checkoutResponse{CheckoutResult: result}
	// The re-render endpoint only works for orders that actually saved.
	if !slices.Contains(result.Warnings, domain.WarnOrderNotSaved) {
		resp.InvoiceURL = "/api/orders/" + result.Order.Number + "/invoice"
	}
	RespondJSON(w, http.StatusCreated, resp)
}
