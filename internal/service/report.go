package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"inventorypro/internal/domain"
)

// ReportService derives sales analytics and the dashboard summary from the
// catalog and order history.
type ReportService struct {
	products domain.ProductStore
	orders   domain.OrderStore

	now func() time.Time
}

// NewReportService creates a ReportService over the stores.
func NewReportService(products domain.ProductStore, orders domain.OrderStore) *ReportService {
	return &ReportService{products: products, orders: orders, now: time.Now}
}

const topProductLimit = 5

// BuildSalesReport aggregates the order history. A store with no recorded
// sales yet gets an estimate projected from stock levels instead of an empty
// report, flagged as such.
func (s *ReportService) BuildSalesReport(ctx context.Context) (*domain.SalesReport, error) {
	products, err := s.products.ListProducts(ctx, domain.ProductFilter{})
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.ListOrders(ctx, domain.OrderFilter{})
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return s.estimatedReport(products), nil
	}
	return s.historyReport(products, orders), nil
}

func (s *ReportService) historyReport(products []domain.Product, orders []domain.Order) *domain.SalesReport {
	byID := make(map[uuid.UUID]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	report := &domain.SalesReport{OrderCount: int64(len(orders))}
	categories := make(map[string]*domain.CategoryMetric)
	monthly := make(map[string]*domain.MonthlyMetric)
	topByID := make(map[uuid.UUID]*domain.ProductMetric)

	for _, order := range orders {
		report.TotalRevenue = report.TotalRevenue.Add(order.GrandTotal)

		month := order.CreatedAt.Format("2006-01")
		m, ok := monthly[month]
		if !ok {
			m = &domain.MonthlyMetric{Month: month}
			monthly[month] = m
		}
		m.Revenue = m.Revenue.Add(order.GrandTotal)
		m.Orders++

		for _, item := range order.Items {
			report.UnitsSold += int64(item.Quantity)

			// Cost of goods only counts when the product still exists;
			// deleted products contribute zero.
			category := "uncategorized"
			if p, ok := byID[item.ProductID]; ok {
				report.TotalCOGS = report.TotalCOGS.Add(p.Cost.Mul(decimal.NewFromInt(int64(item.Quantity))))
				if p.Category != "" {
					category = p.Category
				}
			}

			c, ok := categories[category]
			if !ok {
				c = &domain.CategoryMetric{Category: category}
				categories[category] = c
			}
			c.Revenue = c.Revenue.Add(item.LineTotal)
			c.Units += int64(item.Quantity)

			tp, ok := topByID[item.ProductID]
			if !ok {
				tp = &domain.ProductMetric{ProductID: item.ProductID, Name: item.Name, SKU: item.SKU}
				topByID[item.ProductID] = tp
			}
			tp.Units += int64(item.Quantity)
			tp.Revenue = tp.Revenue.Add(item.LineTotal)
		}
	}

	report.TotalProfit = report.TotalRevenue.Sub(report.TotalCOGS)
	report.ProfitMargin = profitMargin(report.TotalProfit, report.TotalRevenue)
	report.Categories = sortedCategories(categories)
	report.Monthly = sortedMonthly(monthly)
	report.TopProducts = sortedTopProducts(topByID)
	return report
}

// estimatedReport projects figures from stock levels when there is no order
// history: a product is assumed to have sold down from five times its
// low-stock threshold to its current quantity.
func (s *ReportService) estimatedReport(products []domain.Product) *domain.SalesReport {
	report := &domain.SalesReport{Estimated: true}
	categories := make(map[string]*domain.CategoryMetric)
	topByID := make(map[uuid.UUID]*domain.ProductMetric)

	for _, p := range products {
		estimatedUnits := int64(p.LowStockThreshold)*5 - int64(p.Quantity)
		if estimatedUnits < 0 {
			estimatedUnits = 0
		}
		if estimatedUnits == 0 {
			continue
		}

		units := decimal.NewFromInt(estimatedUnits)
		revenue := p.Price.Mul(units)

		report.UnitsSold += estimatedUnits
		report.TotalRevenue = report.TotalRevenue.Add(revenue)
		report.TotalCOGS = report.TotalCOGS.Add(p.Cost.Mul(units))

		category := p.Category
		if category == "" {
			category = "uncategorized"
		}
		c, ok := categories[category]
		if !ok {
			c = &domain.CategoryMetric{Category: category}
			categories[category] = c
		}
		c.Revenue = c.Revenue.Add(revenue)
		c.Units += estimatedUnits

		topByID[p.ID] = &domain.ProductMetric{
			ProductID: p.ID,
			Name:      p.Name,
			SKU:       p.SKU,
			Units:     estimatedUnits,
			Revenue:   revenue,
		}
	}

	report.TotalProfit = report.TotalRevenue.Sub(report.TotalCOGS)
	report.ProfitMargin = profitMargin(report.TotalProfit, report.TotalRevenue)
	report.Categories = sortedCategories(categories)
	report.TopProducts = sortedTopProducts(topByID)
	return report
}

func profitMargin(profit, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(decimal.NewFromInt(100))
}

func sortedCategories(m map[string]*domain.CategoryMetric) []domain.CategoryMetric {
	out := make([]domain.CategoryMetric, 0, len(m))
	for _, c := range m {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func sortedMonthly(m map[string]*domain.MonthlyMetric) []domain.MonthlyMetric {
	out := make([]domain.MonthlyMetric, 0, len(m))
	for _, metric := range m {
		out = append(out, *metric)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func sortedTopProducts(m map[uuid.UUID]*domain.ProductMetric) []domain.ProductMetric {
	out := make([]domain.ProductMetric, 0, len(m))
	for _, p := range m {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > topProductLimit {
		out = out[:topProductLimit]
	}
	return out
}

// BuildDashboard assembles the at-a-glance store summary.
func (s *ReportService) BuildDashboard(ctx context.Context) (*domain.Dashboard, error) {
	products, err := s.products.ListProducts(ctx, domain.ProductFilter{})
	if err != nil {
		return nil, err
	}

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todays, err := s.orders.ListOrdersSince(ctx, startOfDay)
	if err != nil {
		return nil, err
	}

	recent, err := s.orders.ListOrders(ctx, domain.OrderFilter{Limit: 5})
	if err != nil {
		return nil, err
	}

	dash := &domain.Dashboard{
		ProductCount: int64(len(products)),
		RecentOrders: recent,
	}
	for _, p := range products {
		dash.TotalStockUnits += int64(p.Quantity)
		dash.InventoryValue = dash.InventoryValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
		switch p.StockStatus() {
		case domain.StockOut:
			dash.OutOfStockCount++
		case domain.StockLow:
			dash.LowStockCount++
		}
	}
	for _, o := range todays {
		dash.OrdersToday++
		dash.RevenueToday = dash.RevenueToday.Add(o.GrandTotal)
	}
	return dash, nil
}
