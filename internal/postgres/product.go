package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"inventorypro/internal/domain"
)

const uniqueViolation = "23505"

const productColumns = "id, name, category, sku, price, cost, quantity, low_stock_threshold, created_at, updated_at"

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p         domain.Product
		id        pgtype.UUID
		price     pgtype.Numeric
		cost      pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &p.Name, &p.Category, &p.SKU, &price, &cost,
		&p.Quantity, &p.LowStockThreshold, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.ID = fromPgUUID(id)
	p.Price = fromPgNumeric(price)
	p.Cost = fromPgNumeric(cost)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return &p, nil
}

// ListProducts returns catalog entries matching the filter, ordered by name.
func (s *Store) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	const op = "catalog.list"

	query := `SELECT ` + productColumns + ` FROM products
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR sku ILIKE '%' || $2 || '%')
		ORDER BY name`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, filter.Category, filter.Search)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to scan product")
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to read products")
	}
	return products, nil
}

// GetProduct fetches one product by id.
func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	const op = "catalog.get"

	row := s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, pgUUID(id))
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "product", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get product")
	}
	return p, nil
}

// GetProductBySKU fetches one product by its SKU (barcode scans).
func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	const op = "catalog.get_by_sku"

	row := s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "product", sku)
		}
		return nil, domain.Internal(err, op, "failed to get product")
	}
	return p, nil
}

// CreateProduct inserts a catalog entry. A duplicate SKU maps to ECONFLICT.
func (s *Store) CreateProduct(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error) {
	const op = "catalog.create"

	row := s.pool.QueryRow(ctx, `
		INSERT INTO products (id, name, category, sku, price, cost, quantity, low_stock_threshold)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+productColumns,
		pgUUID(uuid.New()), params.Name, params.Category, params.SKU,
		pgNumeric(params.Price), pgNumeric(params.Cost),
		params.Quantity, params.LowStockThreshold)

	p, err := scanProduct(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.Conflict(op, fmt.Sprintf("a product with sku %s already exists", params.SKU))
		}
		return nil, domain.Internal(err, op, "failed to create product")
	}
	return p, nil
}

// UpdateProduct applies the non-nil fields and bumps updated_at.
func (s *Store) UpdateProduct(ctx context.Context, id uuid.UUID, params domain.UpdateProductParams) (*domain.Product, error) {
	const op = "catalog.update"

	row := s.pool.QueryRow(ctx, `
		UPDATE products SET
			name = COALESCE($2, name),
			category = COALESCE($3, category),
			sku = COALESCE($4, sku),
			price = COALESCE($5, price),
			cost = COALESCE($6, cost),
			quantity = COALESCE($7, quantity),
			low_stock_threshold = COALESCE($8, low_stock_threshold),
			updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		pgUUID(id), pgTextPtr(params.Name), pgTextPtr(params.Category), pgTextPtr(params.SKU),
		pgNumericPtr(params.Price), pgNumericPtr(params.Cost),
		params.Quantity, params.LowStockThreshold)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "product", id.String())
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.Conflict(op, "a product with that sku already exists")
		}
		return nil, domain.Internal(err, op, "failed to update product")
	}
	return p, nil
}

// DeleteProduct removes a catalog entry.
func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	const op = "catalog.delete"

	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, pgUUID(id))
	if err != nil {
		return domain.Internal(err, op, "failed to delete product")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound(op, "product", id.String())
	}
	return nil
}

// DecrementStockBatch applies a checkout's stock decrements in one
// transaction. Each row is locked and re-read so the caller's last-seen
// quantities cannot oversell; any missing product or shortfall aborts the
// whole batch with nothing written.
func (s *Store) DecrementStockBatch(ctx context.Context, decrements []domain.StockDecrement) ([]domain.StockAdjustment, error) {
	const op = "catalog.decrement_stock"

	if len(decrements) == 0 {
		return nil, domain.Invalid(op, "no stock updates provided")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	adjustments := make([]domain.StockAdjustment, 0, len(decrements))
	for _, d := range decrements {
		var (
			name      string
			quantity  int32
			threshold int32
		)
		err := tx.QueryRow(ctx,
			`SELECT name, quantity, low_stock_threshold FROM products WHERE id = $1 FOR UPDATE`,
			pgUUID(d.ProductID)).Scan(&name, &quantity, &threshold)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.NotFound(op, "product", d.ProductID.String())
			}
			return nil, domain.Internal(err, op, "failed to read stock level")
		}

		newQuantity := quantity - d.QuantitySold
		if newQuantity < 0 {
			return nil, domain.Errorf(domain.ECONFLICT, op,
				"insufficient stock for %s, available %d, requested %d", name, quantity, d.QuantitySold)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1`,
			pgUUID(d.ProductID), newQuantity); err != nil {
			return nil, domain.Internal(err, op, "failed to update stock level")
		}

		adjustments = append(adjustments, domain.StockAdjustment{
			ProductID:         d.ProductID,
			ProductName:       name,
			OldQuantity:       quantity,
			NewQuantity:       newQuantity,
			LowStockThreshold: threshold,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.Internal(err, op, "failed to commit stock updates")
	}
	return adjustments, nil
}

// ListLowStockProducts returns products at or below their reorder threshold,
// most depleted first.
func (s *Store) ListLowStockProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "catalog.list_low_stock"

	rows, err := s.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE quantity <= low_stock_threshold ORDER BY quantity, name`)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list low stock products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to scan product")
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to read products")
	}
	return products, nil
}
