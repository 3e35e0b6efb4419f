package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

// Totals must satisfy the arithmetic invariant for any combination of line
// items, tax rate and discount.
func TestCartTotals_Invariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	type line struct {
		priceCents int64
		quantity   int32
	}

	lineGen := gopter.CombineGens(
		gen.Int64Range(1, 100000),
		gen.Int32Range(1, 50),
	).Map(func(vals []interface{}) line {
		return line{priceCents: vals[0].(int64), quantity: vals[1].(int32)}
	})

	properties.Property("grand total = subtotal + tax - discount", prop.ForAll(
		func(lines []line, taxRatePct int32, discountCents int64) bool {
			cart := NewCart()
			expectedSubtotal := decimal.Zero

			for _, l := range lines {
				p := Product{
					ID:       uuid.New(),
					Name:     "p",
					Price:    decimal.New(l.priceCents, -2),
					Quantity: l.quantity,
				}
				if err := cart.AddProduct(p); err != nil {
					return false
				}
				if err := cart.SetItemQuantity(p.ID, l.quantity); err != nil {
					return false
				}
				expectedSubtotal = expectedSubtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(l.quantity))))
			}

			cart.TaxRate = decimal.NewFromInt(int64(taxRatePct))
			cart.Discount = decimal.New(discountCents, -2)

			totals := cart.Totals()
			expectedTax := expectedSubtotal.Mul(cart.TaxRate).Div(decimal.NewFromInt(100))

			return totals.Subtotal.Equal(expectedSubtotal) &&
				totals.TaxAmount.Equal(expectedTax) &&
				totals.GrandTotal.Equal(expectedSubtotal.Add(expectedTax).Sub(cart.Discount))
		},
		gen.SliceOfN(5, lineGen),
		gen.Int32Range(0, 30),
		gen.Int64Range(0, 10000),
	))

	properties.TestingRun(t)
}
