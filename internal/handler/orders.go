package handler

import (
	"net/http"
	"strconv"

	"inventorypro/internal/domain"
	"inventorypro/internal/service"
)

// OrderHandler serves the sales-history endpoints.
type OrderHandler struct {
	orders   domain.OrderStore
	invoices *service.InvoiceRenderer
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(orders domain.OrderStore, invoices *service.InvoiceRenderer) *OrderHandler {
	return &OrderHandler{orders: orders, invoices: invoices}
}

// List handles GET /api/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	orders, err := h.orders.ListOrders(r.Context(), domain.OrderFilter{
		Limit:  int32(perPage),
		Offset: int32((page - 1) * perPage),
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"orders":   orders,
		"page":     page,
		"per_page": perPage,
	})
}

// Get handles GET /api/orders/{number}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrderByNumber(r.Context(), r.PathValue("number"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, order)
}

// Invoice handles GET /api/orders/{number}/invoice: re-renders the printable
// invoice document for a recorded sale.
func (h *OrderHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrderByNumber(r.Context(), r.PathValue("number"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	html, err := h.invoices.Render(order)
	if err != nil {
		ErrorResponse(w, r, domain.Internal(err, "orders.invoice", "failed to render invoice"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}
