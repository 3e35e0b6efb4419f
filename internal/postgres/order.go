package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"inventorypro/internal/domain"
)

const orderColumns = "id, number, customer_phone, customer_name, customer_email, subtotal, tax_rate, tax_amount, discount, grand_total, payment_method, status, COALESCE(idempotency_key, ''), created_at"

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o          domain.Order
		id         pgtype.UUID
		subtotal   pgtype.Numeric
		taxRate    pgtype.Numeric
		taxAmount  pgtype.Numeric
		discount   pgtype.Numeric
		grandTotal pgtype.Numeric
		createdAt  pgtype.Timestamptz
	)
	err := row.Scan(&id, &o.Number, &o.Customer.Phone, &o.Customer.Name, &o.Customer.Email,
		&subtotal, &taxRate, &taxAmount, &discount, &grandTotal,
		&o.Payment, &o.Status, &o.IdempotencyKey, &createdAt)
	if err != nil {
		return nil, err
	}
	o.ID = fromPgUUID(id)
	o.Subtotal = fromPgNumeric(subtotal)
	o.TaxRate = fromPgNumeric(taxRate)
	o.TaxAmount = fromPgNumeric(taxAmount)
	o.Discount = fromPgNumeric(discount)
	o.GrandTotal = fromPgNumeric(grandTotal)
	o.CreatedAt = createdAt.Time
	return &o, nil
}

// CreateOrder persists the order and its line items in one transaction.
// A duplicate order number or idempotency key maps to ECONFLICT.
func (s *Store) CreateOrder(ctx context.Context, order *domain.Order) error {
	const op = "orders.create"

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, op, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	var idemKey *string
	if order.IdempotencyKey != "" {
		idemKey = &order.IdempotencyKey
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, number, customer_phone, customer_name, customer_email,
			subtotal, tax_rate, tax_amount, discount, grand_total,
			payment_method, status, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		pgUUID(order.ID), order.Number,
		order.Customer.Phone, order.Customer.Name, order.Customer.Email,
		pgNumeric(order.Subtotal), pgNumeric(order.TaxRate), pgNumeric(order.TaxAmount),
		pgNumeric(order.Discount), pgNumeric(order.GrandTotal),
		string(order.Payment), string(order.Status), idemKey, order.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Conflict(op, fmt.Sprintf("order %s already recorded", order.Number))
		}
		return domain.Internal(err, op, "failed to save order")
	}

	for _, item := range order.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, name, sku, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			pgUUID(order.ID), pgUUID(item.ProductID), item.Name, item.SKU,
			item.Quantity, pgNumeric(item.UnitPrice), pgNumeric(item.LineTotal))
		if err != nil {
			return domain.Internal(err, op, "failed to save order items")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, op, "failed to commit order")
	}
	return nil
}

func (s *Store) loadOrderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT product_id, name, sku, quantity, unit_price, line_total
		FROM order_items WHERE order_id = $1 ORDER BY id`, pgUUID(orderID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item      domain.OrderItem
			productID pgtype.UUID
			unitPrice pgtype.Numeric
			lineTotal pgtype.Numeric
		)
		if err := rows.Scan(&productID, &item.Name, &item.SKU, &item.Quantity, &unitPrice, &lineTotal); err != nil {
			return nil, err
		}
		item.ProductID = fromPgUUID(productID)
		item.UnitPrice = fromPgNumeric(unitPrice)
		item.LineTotal = fromPgNumeric(lineTotal)
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetOrderByNumber fetches one order with its items.
func (s *Store) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	const op = "orders.get"

	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE number = $1`, number)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "order", number)
		}
		return nil, domain.Internal(err, op, "failed to get order")
	}
	if o.Items, err = s.loadOrderItems(ctx, o.ID); err != nil {
		return nil, domain.Internal(err, op, "failed to load order items")
	}
	return o, nil
}

// GetOrderByIdempotencyKey fetches the order recorded for a checkout retry
// key, or ENOTFOUND.
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	const op = "orders.get_by_idempotency_key"

	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, key)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "order", key)
		}
		return nil, domain.Internal(err, op, "failed to get order")
	}
	if o.Items, err = s.loadOrderItems(ctx, o.ID); err != nil {
		return nil, domain.Internal(err, op, "failed to load order items")
	}
	return o, nil
}

// ListOrders returns orders newest first.
func (s *Store) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	const op = "orders.list"

	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}
	return s.listOrders(ctx, op, query)
}

// ListOrdersSince returns orders created at or after the given time, newest
// first.
func (s *Store) ListOrdersSince(ctx context.Context, since time.Time) ([]domain.Order, error) {
	const op = "orders.list_since"
	return s.listOrders(ctx, op,
		`SELECT `+orderColumns+` FROM orders WHERE created_at >= $1 ORDER BY created_at DESC`, since)
}

func (s *Store) listOrders(ctx context.Context, op, query string, args ...any) ([]domain.Order, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to scan order")
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to read orders")
	}

	for i := range orders {
		if orders[i].Items, err = s.loadOrderItems(ctx, orders[i].ID); err != nil {
			return nil, domain.Internal(err, op, "failed to load order items")
		}
	}
	return orders, nil
}
