package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"inventorypro/internal/domain"
)

// CartService coordinates cart mutations with the catalog. Adds re-read the
// product so the cart's stock cache reflects the latest catalog state;
// quantity edits run against that cache only.
type CartService struct {
	products domain.ProductStore
}

// NewCartService creates a CartService over the catalog store.
func NewCartService(products domain.ProductStore) *CartService {
	return &CartService{products: products}
}

// AddProduct fetches the product and adds one unit to the cart.
func (s *CartService) AddProduct(ctx context.Context, cart *domain.Cart, productID uuid.UUID) error {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	return cart.AddProduct(*product)
}

// AddProductBySKU adds one unit by SKU lookup (barcode scans).
func (s *CartService) AddProductBySKU(ctx context.Context, cart *domain.Cart, sku string) error {
	product, err := s.products.GetProductBySKU(ctx, sku)
	if err != nil {
		return err
	}
	return cart.AddProduct(*product)
}

// UpdateItemQuantity sets a line item's quantity against the cached stock
// level. A quantity below one removes the item.
func (s *CartService) UpdateItemQuantity(cart *domain.Cart, productID uuid.UUID, quantity int32) error {
	return cart.SetItemQuantity(productID, quantity)
}

// RemoveItem deletes a line item.
func (s *CartService) RemoveItem(cart *domain.Cart, productID uuid.UUID) {
	cart.RemoveItem(productID)
}

// SetCustomer records the buyer on the sale.
func (s *CartService) SetCustomer(cart *domain.Cart, customer domain.Customer) {
	cart.Customer = customer
}

// SetTaxRate sets the sale's tax percentage.
func (s *CartService) SetTaxRate(cart *domain.Cart, rate decimal.Decimal) error {
	if rate.IsNegative() {
		return domain.Invalid("cart.set_tax_rate", "tax rate must not be negative")
	}
	cart.TaxRate = rate
	return nil
}

// SetDiscount sets the sale's flat discount amount.
func (s *CartService) SetDiscount(cart *domain.Cart, discount decimal.Decimal) error {
	if discount.IsNegative() {
		return domain.Invalid("cart.set_discount", "discount must not be negative")
	}
	cart.Discount = discount
	return nil
}

// SetPaymentMethod records how the sale will be settled.
func (s *CartService) SetPaymentMethod(cart *domain.Cart, method domain.PaymentMethod) error {
	if !method.Valid() {
		return domain.Invalid("cart.set_payment_method", "payment method must be cash, card or upi")
	}
	cart.Payment = method
	return nil
}

// RefreshCatalog re-reads the catalog and updates the cart's stock cache.
func (s *CartService) RefreshCatalog(ctx context.Context, cart *domain.Cart) error {
	products, err := s.products.ListProducts(ctx, domain.ProductFilter{})
	if err != nil {
		return err
	}
	cart.UpdateStock(products)
	return nil
}
