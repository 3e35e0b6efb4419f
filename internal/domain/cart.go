package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale was settled.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
)

// Valid reports whether the payment method is a known value.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI:
		return true
	}
	return false
}

// Customer is the buyer on a sale. Phone is the only required field at
// checkout time.
type Customer struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CartItem is a product selected for sale. Name, SKU and UnitPrice are
// snapshots taken when the product was added; LineTotal is derived.
type CartItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int32           `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartTotals is the derived money summary of a cart. Values are unrounded;
// two-decimal rounding happens only at render time.
type CartTotals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	Discount   decimal.Decimal `json:"discount"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Cart is the in-progress sale for one session. It lives in memory only; a
// session's handlers mutate it one request at a time.
//
// Stock checks at selection time run against quantities cached from the last
// catalog read, not live inventory. The checkout path re-validates against
// the authoritative store.
type Cart struct {
	Items    []CartItem      `json:"items"`
	Customer Customer        `json:"customer"`
	TaxRate  decimal.Decimal `json:"tax_rate"`
	Discount decimal.Decimal `json:"discount"`
	Payment  PaymentMethod   `json:"payment_method"`

	stock map[uuid.UUID]int32
}

// NewCart returns an empty cart with the default payment method.
func NewCart() *Cart {
	return &Cart{
		Payment: PaymentCash,
		stock:   make(map[uuid.UUID]int32),
	}
}

// UpdateStock refreshes the quantity cache from a catalog read.
func (c *Cart) UpdateStock(products []Product) {
	if c.stock == nil {
		c.stock = make(map[uuid.UUID]int32)
	}
	for _, p := range products {
		c.stock[p.ID] = p.Quantity
	}
}

// CachedQuantity returns the last-seen stock level for a product, or zero if
// the product has never been observed.
func (c *Cart) CachedQuantity(productID uuid.UUID) int32 {
	return c.stock[productID]
}

// AddProduct adds one unit of the product. A product with no stock is
// rejected. If the product is already in the cart its quantity increments,
// unless that would exceed the cached stock level, in which case the cart is
// left unchanged. The product passed in is the fresh catalog row, so its
// quantity also refreshes the cache.
func (c *Cart) AddProduct(p Product) error {
	const op = "cart.add"

	if p.Quantity <= 0 {
		return Errorf(EINVALID, op, "%s is out of stock", p.Name)
	}
	if c.stock == nil {
		c.stock = make(map[uuid.UUID]int32)
	}
	c.stock[p.ID] = p.Quantity

	for i := range c.Items {
		if c.Items[i].ProductID != p.ID {
			continue
		}
		if c.Items[i].Quantity+1 > c.stock[p.ID] {
			return Errorf(EINVALID, op, "only %d of %s in stock", c.stock[p.ID], p.Name)
		}
		c.Items[i].Quantity++
		c.Items[i].LineTotal = c.Items[i].UnitPrice.Mul(decimal.NewFromInt(int64(c.Items[i].Quantity)))
		return nil
	}

	c.Items = append(c.Items, CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		UnitPrice: p.Price,
		Quantity:  1,
		LineTotal: p.Price,
	})
	return nil
}

// SetItemQuantity sets the quantity of an existing line item. A quantity
// below one removes the item. A quantity above the cached stock level leaves
// the prior quantity in place and returns an error.
func (c *Cart) SetItemQuantity(productID uuid.UUID, quantity int32) error {
	const op = "cart.set_quantity"

	if quantity < 1 {
		c.RemoveItem(productID)
		return nil
	}

	for i := range c.Items {
		if c.Items[i].ProductID != productID {
			continue
		}
		if quantity > c.stock[productID] {
			return Errorf(EINVALID, op, "only %d of %s in stock", c.stock[productID], c.Items[i].Name)
		}
		c.Items[i].Quantity = quantity
		c.Items[i].LineTotal = c.Items[i].UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		return nil
	}

	return NotFound(op, "cart item", productID.String())
}

// RemoveItem deletes a line item. Removing an absent item is a no-op.
func (c *Cart) RemoveItem(productID uuid.UUID) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Totals computes the money summary:
//
//	subtotal   = sum of line totals
//	taxAmount  = subtotal * taxRate / 100
//	grandTotal = subtotal + taxAmount - discount
//
// The discount is a flat amount and is not clamped to the subtotal.
func (c *Cart) Totals() CartTotals {
	subtotal := decimal.Zero
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	taxAmount := subtotal.Mul(c.TaxRate).Div(decimal.NewFromInt(100))
	return CartTotals{
		Subtotal:   subtotal,
		TaxAmount:  taxAmount,
		Discount:   c.Discount,
		GrandTotal: subtotal.Add(taxAmount).Sub(c.Discount),
	}
}

// ItemCount returns the total units across all line items.
func (c *Cart) ItemCount() int32 {
	var n int32
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clear resets the cart to its post-sale state: no items, blank customer,
// zero tax and discount, cash payment. The stock cache survives so the next
// sale starts from the most recent catalog read.
func (c *Cart) Clear() {
	c.Items = nil
	c.Customer = Customer{}
	c.TaxRate = decimal.Zero
	c.Discount = decimal.Zero
	c.Payment = PaymentCash
}
