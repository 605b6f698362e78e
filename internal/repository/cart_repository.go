package repository

import (
	"context"
	"fmt"

	"shopfront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartLineSelect joins each line with the live catalogue row.
const cartLineSelect = `
	SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at,
		p.id, p.name, p.category, p.price, p.stock, p.status, p.version, p.created_at, p.updated_at
	FROM cart_items c
	JOIN products p ON p.id = c.product_id`

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

func scanCartLine(row pgx.Row) (*model.CartLine, error) {
	var (
		l model.CartLine
		p model.Product
	)
	err := row.Scan(
		&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt,
		&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.Status, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Product = &p
	return &l, nil
}

// AddItem inserts a line or increments the existing one in a single
// statement. The INSERT ... SELECT yields no row when the product is missing.
func (r *cartRepository) AddItem(ctx context.Context, userID, productID string, quantity int) (*model.CartLine, error) {
	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity)
		SELECT $1, $2, p.id, $4
		FROM products p
		WHERE p.id = $3
		ON CONFLICT (user_id, product_id) DO UPDATE SET
			quantity = cart_items.quantity + EXCLUDED.quantity,
			updated_at = NOW()
		RETURNING id`

	var lineID uuid.UUID
	err := r.pool.QueryRow(ctx, query, uuid.New(), userID, productID, quantity).Scan(&lineID)
	if err != nil {
		if isNoRows(err) || isForeignKeyViolation(err) {
			r.logger.Debug().Str("product_id", productID).Msg("product not found for cart")
			return nil, model.ErrProductNotFound
		}
		r.logger.Error().
			Err(err).
			Str("user_id", userID).
			Str("product_id", productID).
			Msg("failed to add cart item")
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	line, err := r.GetLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		// Removed concurrently between the upsert and the read.
		return nil, model.ErrCartItemNotFound
	}

	r.logger.Debug().
		Str("user_id", userID).
		Str("product_id", productID).
		Int("quantity", line.Quantity).
		Msg("cart item added")

	return line, nil
}

// UpdateQuantity sets a line's quantity in one conditional statement that
// also checks the product's current stock.
func (r *cartRepository) UpdateQuantity(ctx context.Context, userID string, lineID uuid.UUID, quantity int) (*model.CartLine, error) {
	query := `
		UPDATE cart_items c
		SET quantity = $3, updated_at = NOW()
		FROM products p
		WHERE c.id = $1 AND c.user_id = $2 AND p.id = c.product_id AND p.stock >= $3
		RETURNING c.id`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query, lineID, userID, quantity).Scan(&id)
	if err != nil && !isNoRows(err) {
		r.logger.Error().Err(err).Str("line_id", lineID.String()).Msg("failed to update cart item")
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	line, getErr := r.GetLine(ctx, userID, lineID)
	if getErr != nil {
		return nil, getErr
	}
	if line == nil {
		return nil, model.ErrCartItemNotFound
	}

	if isNoRows(err) {
		return nil, model.NewInsufficientStockError(model.InsufficientStockDetails{
			ProductID:   line.ProductID,
			ProductName: line.Product.Name,
			Requested:   quantity,
			Available:   line.Product.Stock,
		})
	}

	return line, nil
}

// GetLine retrieves one of the user's lines.
func (r *cartRepository) GetLine(ctx context.Context, userID string, lineID uuid.UUID) (*model.CartLine, error) {
	query := cartLineSelect + ` WHERE c.id = $1 AND c.user_id = $2`

	line, err := scanCartLine(r.pool.QueryRow(ctx, query, lineID, userID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("line_id", lineID.String()).Msg("failed to query cart item")
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}
	return line, nil
}

// RemoveItem deletes the user's line.
func (r *cartRepository) RemoveItem(ctx context.Context, userID string, lineID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, lineID, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("line_id", lineID.String()).Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	r.logger.Debug().
		Str("line_id", lineID.String()).
		Int64("deleted", tag.RowsAffected()).
		Msg("cart item removed")
	return nil
}

// ListLines returns the user's lines with live product data.
func (r *cartRepository) ListLines(ctx context.Context, userID string) ([]model.CartLine, error) {
	return r.listLines(ctx, r.pool, userID, false)
}

// ListLinesTx returns the user's lines with product data read within tx.
// The cart rows stay locked until tx ends, so concurrent edits to them wait.
func (r *cartRepository) ListLinesTx(ctx context.Context, tx pgx.Tx, userID string) ([]model.CartLine, error) {
	return r.listLines(ctx, tx, userID, true)
}

func (r *cartRepository) listLines(ctx context.Context, q Querier, userID string, lock bool) ([]model.CartLine, error) {
	query := cartLineSelect + ` WHERE c.user_id = $1 ORDER BY c.product_id`
	if lock {
		query += ` FOR UPDATE OF c`
	}

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	lines := []model.CartLine{}
	for rows.Next() {
		line, err := scanCartLine(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		lines = append(lines, *line)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return lines, nil
}

// DeleteLines deletes the given lines of the user within tx. Lines added
// after the cart was read are left in place.
func (r *cartRepository) DeleteLines(ctx context.Context, tx pgx.Tx, userID string, lineIDs []uuid.UUID) (int64, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}

	tag, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND id = ANY($2)`, userID, lineIDs)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to delete cart lines")
		return 0, fmt.Errorf("failed to delete cart lines: %w", err)
	}
	return tag.RowsAffected(), nil
}
