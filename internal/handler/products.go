package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"inventorypro/internal/domain"
)

// ProductHandler serves the catalog endpoints.
type ProductHandler struct {
	products domain.ProductStore
}

// NewProductHandler creates a ProductHandler.
func NewProductHandler(products domain.ProductStore) *ProductHandler {
	return &ProductHandler{products: products}
}

const defaultPageSize = 50

// List handles GET /api/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 || perPage > 200 {
		perPage = defaultPageSize
	}

	products, err := h.products.ListProducts(r.Context(), domain.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Limit:    int32(perPage),
		Offset:   int32((page - 1) * perPage),
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"page":     page,
		"per_page": perPage,
	})
}

// Get handles GET /api/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, domain.Invalid("catalog.get", "invalid product id"))
		return
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, product)
}

// GetBySKU handles GET /api/products/sku/{sku} (barcode scans).
func (h *ProductHandler) GetBySKU(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.GetProductBySKU(r.Context(), r.PathValue("sku"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, product)
}

type createProductRequest struct {
	Name              string          `json:"name" validate:"required"`
	Category          string          `json:"category"`
	SKU               string          `json:"sku" validate:"required"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	Quantity          int32           `json:"quantity" validate:"gte=0"`
	LowStockThreshold int32           `json:"low_stock_threshold" validate:"gte=0"`
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "catalog.create"

	var req createProductRequest
	if err := DecodeValid(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	if req.Price.IsNegative() {
		ErrorResponse(w, r, domain.Invalid(op, "price must not be negative"))
		return
	}
	if req.Cost.IsNegative() {
		ErrorResponse(w, r, domain.Invalid(op, "cost must not be negative"))
		return
	}

	product, err := h.products.CreateProduct(r.Context(), domain.CreateProductParams{
		Name:              req.Name,
		Category:          req.Category,
		SKU:               req.SKU,
		Price:             req.Price,
		Cost:              req.Cost,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, product)
}

type updateProductRequest struct {
	Name              *string          `json:"name"`
	Category          *string          `json:"category"`
	SKU               *string          `json:"sku"`
	Price             *decimal.Decimal `json:"price"`
	Cost              *decimal.Decimal `json:"cost"`
	Quantity          *int32           `json:"quantity"`
	LowStockThreshold *int32           `json:"low_stock_threshold"`
}

// Update handles PUT /api/products/{id}. Absent fields stay unchanged.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "catalog.update"

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, domain.Invalid(op, "invalid product id"))
		return
	}

	var req updateProductRequest
	if err := DecodeValid(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	if req.Price != nil && req.Price.IsNegative() {
		ErrorResponse(w, r, domain.Invalid(op, "price must not be negative"))
		return
	}
	if req.Cost != nil && req.Cost.IsNegative() {
		ErrorResponse(w, r, domain.Invalid(op, "cost must not be negative"))
		return
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		ErrorResponse(w, r, domain.Invalid(op, "quantity must not be negative"))
		return
	}

	product, err := h.products.UpdateProduct(r.Context(), id, domain.UpdateProductParams{
		Name:              req.Name,
		Category:          req.Category,
		SKU:               req.SKU,
		Price:             req.Price,
		Cost:              req.Cost,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, domain.Invalid("catalog.delete", "invalid product id"))
		return
	}

	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DecrementStock handles POST /api/products/decrement-stock. The body is
// either a bare array of decrements or {"items": [...]}.
func (h *ProductHandler) DecrementStock(w http.ResponseWriter, r *http.Request) {
	const op = "catalog.decrement_stock"

	raw, err := UnwrapCollection(r.Body, "items")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var decrements []domain.StockDecrement
	if err := json.Unmarshal(raw, &decrements); err != nil {
		ErrorResponse(w, r, domain.Invalid(op, "invalid stock update entries"))
		return
	}
	for _, d := range decrements {
		if err := validate.Struct(d); err != nil {
			ErrorResponse(w, r, domain.Invalid(op, "each entry needs a product id and a positive quantity"))
			return
		}
	}

	adjustments, err := h.products.DecrementStockBatch(r.Context(), decrements)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"stock_adjustments": adjustments})
}

// LowStock handles GET /api/products/low-stock.
func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListLowStockProducts(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"products": products})
}
