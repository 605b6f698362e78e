package repository

import (
	"context"
	"fmt"
	"strings"

	"shopfront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, category, price, stock, status, version, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Category,
		&p.Price,
		&p.Stock,
		&p.Status,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetAll retrieves all products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		ORDER BY name, id
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read product rows")
		return nil, err
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY name, id`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read product rows")
		return nil, err
	}

	return products, nil
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (id, name, category, price, stock, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING version, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		product.ID,
		product.Name,
		product.Category,
		product.Price,
		product.Stock,
		product.Status,
	).Scan(&product.Version, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, constraintProductsPKey) {
			r.logger.Warn().Str("product_id", product.ID).Msg("product already exists")
			return model.NewDomainError(model.KindConflict, model.ErrCodeConflict,
				fmt.Sprintf("Product %s already exists", product.ID))
		}
		r.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", product.ID).Msg("product created successfully")
	return nil
}

// Update applies a partial edit guarded by the row version. Stock is set
// absolutely; the column check keeps it non-negative.
func (r *productRepository) Update(ctx context.Context, id string, req *model.UpdateProductRequest) (*model.Product, error) {
	sets := []string{}
	args := []any{id, req.Version}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.Category != nil {
		add("category", *req.Category)
	}
	if req.Price != nil {
		add("price", *req.Price)
	}
	if req.Stock != nil {
		add("stock", *req.Stock)
	}
	if req.Status != nil {
		add("status", *req.Status)
	}
	if len(sets) == 0 {
		return nil, model.NewValidationError("at least one field must be provided")
	}

	query := `UPDATE products SET ` + strings.Join(sets, ", ") + `,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING ` + productColumns

	p, err := scanProduct(r.pool.QueryRow(ctx, query, args...))
	if err == nil {
		r.logger.Info().
			Str("product_id", id).
			Int("version", p.Version).
			Msg("product updated")
		return p, nil
	}

	if !isNoRows(err) {
		if isCheckViolation(err, "") {
			return nil, model.NewValidationError("product values violate catalogue constraints")
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	// Nothing matched: either the product is gone or the version is stale.
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if current == nil {
		return nil, model.ErrProductNotFound
	}

	r.logger.Warn().
		Str("product_id", id).
		Int("expected_version", req.Version).
		Int("current_version", current.Version).
		Msg("stale product version")
	return nil, model.ErrVersionConflict.WithDetails(map[string]int{"currentVersion": current.Version})
}

// Upsert inserts products by ID and refreshes the catalog fields of
// existing ones. Stock only seeds new rows; live stock is owned by admin
// edits and order placement.
func (r *productRepository) Upsert(ctx context.Context, products []model.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO products (id, name, category, price, stock, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			status = EXCLUDED.status,
			version = products.version + 1,
			updated_at = NOW()`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(query, p.ID, p.Name, p.Category, p.Price, p.Stock, p.Status)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range products {
		if _, err := results.Exec(); err != nil {
			results.Close()
			r.logger.Error().
				Err(err).
				Str("product_id", products[i].ID).
				Msg("failed to upsert product")
			return 0, fmt.Errorf("failed to upsert product %s: %w", products[i].ID, err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit product upsert: %w", err)
	}

	r.logger.Info().Int("count", len(products)).Msg("products upserted")
	return len(products), nil
}

// DecrementStock removes quantity units of a product within tx. The
// conditional WHERE makes check-and-decrement a single atomic statement.
// The version moves too, so edits based on an earlier read conflict.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id string, quantity int) error {
	query := `
		UPDATE products
		SET stock = stock - $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
		RETURNING stock`

	var remaining int
	err := tx.QueryRow(ctx, query, id, quantity).Scan(&remaining)
	if err == nil {
		r.logger.Debug().
			Str("product_id", id).
			Int("quantity", quantity).
			Int("remaining", remaining).
			Msg("stock decremented")
		return nil
	}

	if !isNoRows(err) && !isCheckViolation(err, constraintStockNonNegative) {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to decrement stock")
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	details := model.InsufficientStockDetails{ProductID: id, Requested: quantity}
	var name string
	if scanErr := tx.QueryRow(ctx, `SELECT name, stock FROM products WHERE id = $1`, id).
		Scan(&name, &details.Available); scanErr == nil {
		details.ProductName = name
	}

	r.logger.Warn().
		Str("product_id", id).
		Int("requested", quantity).
		Int("available", details.Available).
		Msg("insufficient stock")
	return model.NewInsufficientStockError(details)
}
