// Package events publishes domain events to NATS for downstream consumers
// (reorder alerts, sales feeds). Publication is best-effort and never blocks
// or fails the write path that triggered it.
package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"inventorypro/internal/domain"
)

// Subjects published by this service.
const (
	SubjectOrderCreated = "orders.created"
	SubjectLowStock     = "inventory.low_stock"
)

// Publisher emits domain events.
type Publisher interface {
	OrderCreated(order *domain.Order)
	LowStock(adjustments []domain.StockAdjustment)
	Close()
}

// NewPublisher connects to NATS at url. An empty url disables publishing.
func NewPublisher(url string, logger *slog.Logger) (Publisher, error) {
	if url == "" {
		return noopPublisher{}, nil
	}

	conn, err := nats.Connect(url,
		nats.Name("inventorypro"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	return &natsPublisher{conn: conn, logger: logger}, nil
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

type orderCreatedEvent struct {
	Number     string    `json:"number"`
	GrandTotal string    `json:"grand_total"`
	Items      int64     `json:"items"`
	CreatedAt  time.Time `json:"created_at"`
}

type lowStockEvent struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int32  `json:"quantity"`
	Threshold   int32  `json:"threshold"`
}

func (p *natsPublisher) OrderCreated(order *domain.Order) {
	p.publish(SubjectOrderCreated, orderCreatedEvent{
		Number:     order.Number,
		GrandTotal: order.GrandTotal.StringFixed(2),
		Items:      order.UnitsSold(),
		CreatedAt:  order.CreatedAt,
	})
}

func (p *natsPublisher) LowStock(adjustments []domain.StockAdjustment) {
	for _, a := range adjustments {
		if !a.LowStock() {
			continue
		}
		p.publish(SubjectLowStock, lowStockEvent{
			ProductID:   a.ProductID.String(),
			ProductName: a.ProductName,
			Quantity:    a.NewQuantity,
			Threshold:   a.LowStockThreshold,
		})
	}
}

func (p *natsPublisher) publish(subject string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event", slog.String("subject", subject), slog.String("error", err.Error()))
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn("failed to publish event", slog.String("subject", subject), slog.String("error", err.Error()))
	}
}

func (p *natsPublisher) Close() {
	p.conn.Drain()
}

type noopPublisher struct{}

func (noopPublisher) OrderCreated(*domain.Order)        {}
func (noopPublisher) LowStock([]domain.StockAdjustment) {}
func (noopPublisher) Close()                            {}
