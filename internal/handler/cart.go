package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"inventorypro/internal/domain"
	"inventorypro/internal/middleware"
	"inventorypro/internal/service"
)

// CartHandler serves the session cart endpoints.
type CartHandler struct {
	carts *service.CartService
}

// NewCartHandler creates a CartHandler.
func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// cartView is the cart's JSON shape. Totals are rounded here, at the display
// boundary, and nowhere earlier.
type cartView struct {
	Items         []domain.CartItem `json:"items"`
	ItemCount     int32             `json:"item_count"`
	Customer      domain.Customer   `json:"customer"`
	TaxRate       decimal.Decimal   `json:"tax_rate"`
	Discount      decimal.Decimal   `json:"discount"`
	PaymentMethod string            `json:"payment_method"`
	Totals        totalsView        `json:"totals"`
}

type totalsView struct {
	Subtotal   string `json:"subtotal"`
	TaxAmount  string `json:"tax_amount"`
	Discount   string `json:"discount"`
	GrandTotal string `json:"grand_total"`
}

func viewCart(cart *domain.Cart) cartView {
	totals := cart.Totals()
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return cartView{
		Items:         items,
		ItemCount:     cart.ItemCount(),
		Customer:      cart.Customer,
		TaxRate:       cart.TaxRate,
		Discount:      cart.Discount,
		PaymentMethod: string(cart.Payment),
		Totals: totalsView{
			Subtotal:   totals.Subtotal.StringFixed(2),
			TaxAmount:  totals.TaxAmount.StringFixed(2),
			Discount:   totals.Discount.StringFixed(2),
			GrandTotal: totals.GrandTotal.StringFixed(2),
		},
	}
}

func sessionCart(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	session := middleware.GetSession(r.Context())
	if session == nil {
		ErrorResponse(w, r, domain.Internal(nil, "cart.session", "no session on request"))
		return nil, false
	}
	return session, true
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionCart(w, r)
	if !ok {
		return
	}
	RespondJSON(w, http.StatusOK, viewCart(session.Cart))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
}

// AddItem handles POST /api/cart/items. One of product_id or sku selects the
// product; one unit is added.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	const op = "cart.add"

	session, ok := sessionCart(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := DecodeValid(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	switch {
	case req.ProductID != "":
		id, err := uuid.Parse(req.ProductID)
		if err != nil {
			ErrorResponse(w, r, domain.Invalid(op, "invalid product id"))
			return
		}
		if err := h.carts.AddProduct(r.Context(), session.Cart, id); err != nil {
			ErrorResponse(w, r, err)
			return
		}
	case req.SKU != "":
		if err := h.carts.AddProductBySKU(r.Context(), session.Cart, req.SKU); err != nil {
			ErrorResponse(w, r, err)
			return
		}
	default:
		ErrorResponse(w, r, domain.Invalid(op, "product_id or sku is required"))
		return
	}

	RespondJSON(w, http.StatusOK, viewCart(session.Cart))
}

type updateItemRequest struct {
	Quantity int32 `json:"quantity"`
}

// UpdateItem handles PUT /api/cart/items/{id}.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionCart(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, domain.Invalid("cart.set_quantity", "invalid product id"))
		return
	}

	var req updateItemRequest
	if err := DecodeValid(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if err := h.carts.UpdateItemQuantity(session.Cart, id, req.Quantity); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, viewCart(session.Cart))
}

// RemoveItem handles DELETE /api/cart/items/{id}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionCart(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, domain.Invalid("cart.remove", "invalid product id"))
		return
	}

	h.carts.RemoveItem(session.Cart, id)
	RespondJSON(w, http.StatusOK, viewCart(session.Cart))
}

type customerRequest struct {
	Phone string `json:"phone" validate:"required"`
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
}

// SetCustomer handles PUT /api/cart/customer.
func (h *CartHandler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionCart(w, r)
	if !ok {
		return
	}

	var req customerRequest
	if err := DecodeValid(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.carts.SetCustomer(session.Cart, domain.Customer{
		Phone: req.Phone,
		Name:  req.Name,
		Email: req.Email,
	})
	RespondJSON(w, http.StatusOK, viewCart(session.Cart))
}

type settingsRequest struct {
	TaxRate       *decimal.Decimal `json:"tax_rate"`
	Discount      *decimal.Decimal `json:"discount"`
	PaymentMethod *string          `json:"payment_method"`
}

// SetSettings handles PUT /api/cart/settings. Absent fields stay unchanged.
func (h *CartHandler) SetSettings(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionCart(w, r)
	if !ok {
		return
	}

	var req settingsRequest
	if err := DecodeValid(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if req.TaxRate != nil {
		if err := h.carts.SetTaxRate(session.Cart, *req.TaxRate); err != nil {
			ErrorResponse(w, r, err)
			return
		}
	}
	if req.Discount != nil {
		if err := h.carts.SetDiscount(session.Cart, *req.Discount); err != nil {
			ErrorResponse(w, r, err)
			return
		}
	}
	if req.PaymentMethod != nil {
		if err := h.carts.SetPaymentMethod(session.Cart, domain.PaymentMethod(*req.PaymentMethod)); err != nil {
			ErrorResponse(w, r, err)
			return
		}
	}
	RespondJSON(w, http.StatusOK, viewCart(session.Cart))
}

// Clear handles POST /api/cart/clear.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionCart(w, r)
	if !ok {
		return
	}

	session.Cart.Clear()
	RespondJSON(w, http.StatusOK, viewCart(session.Cart))
}

// Refresh handles POST /api/cart/refresh: re-reads the catalog into the
// cart's stock cache.
func (h *CartHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionCart(w, r)
	if !ok {
		return
	}

	if err := h.carts.RefreshCatalog(r.Context(), session.Cart); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, viewCart(session.Cart))
}
