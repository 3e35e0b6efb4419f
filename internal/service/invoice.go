package service

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"inventorypro/internal/domain"
)

//go:embed invoice.tmpl
var invoiceTemplate string

// InvoiceRenderer produces the self-contained printable HTML invoice for an
// order. The document carries its own styling so it renders anywhere.
type InvoiceRenderer struct {
	tmpl         *template.Template
	storeName    string
	storeAddress string
	storePhone   string
}

// NewInvoiceRenderer parses the invoice template once at startup.
func NewInvoiceRenderer(storeName, storeAddress, storePhone string) (*InvoiceRenderer, error) {
	tmpl, err := template.New("invoice").Parse(invoiceTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoice template: %w", err)
	}
	return &InvoiceRenderer{
		tmpl:         tmpl,
		storeName:    storeName,
		storeAddress: storeAddress,
		storePhone:   storePhone,
	}, nil
}

type invoiceLine struct {
	Index     int
	Name      string
	SKU       string
	Quantity  int32
	UnitPrice string
	LineTotal string
}

type invoiceData struct {
	StoreName    string
	StoreAddress string
	StorePhone   string

	Number        string
	CreatedAt     string
	PaymentMethod string

	CustomerPhone string
	CustomerName  string
	CustomerEmail string

	Lines []invoiceLine

	Subtotal     string
	TaxRate      string
	TaxAmount    string
	Discount     string
	GrandTotal   string
	ShowTax      bool
	ShowDiscount bool
}

// Render returns the invoice HTML for an order. Monetary values are rounded
// to two decimals here and nowhere earlier.
func (r *InvoiceRenderer) Render(order *domain.Order) (string, error) {
	data := invoiceData{
		StoreName:    r.storeName,
		StoreAddress: r.storeAddress,
		StorePhone:   r.storePhone,

		Number:        order.Number,
		CreatedAt:     order.CreatedAt.Format("02 Jan 2006 15:04"),
		PaymentMethod: strings.ToUpper(string(order.Payment)),

		CustomerPhone: order.Customer.Phone,
		CustomerName:  order.Customer.Name,
		CustomerEmail: order.Customer.Email,

		Subtotal:     order.Subtotal.StringFixed(2),
		TaxRate:      order.TaxRate.String(),
		TaxAmount:    order.TaxAmount.StringFixed(2),
		Discount:     order.Discount.StringFixed(2),
		GrandTotal:   order.GrandTotal.StringFixed(2),
		ShowTax:      order.TaxAmount.IsPositive(),
		ShowDiscount: order.Discount.IsPositive(),
	}

	for i, item := range order.Items {
		data.Lines = append(data.Lines, invoiceLine{
			Index:     i + 1,
			Name:      item.Name,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.LineTotal.StringFixed(2),
		})
	}

	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render invoice %s: %w", order.Number, err)
	}
	return sb.String(), nil
}
