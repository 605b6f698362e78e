package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopfront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const orderColumns = `o.id, o.order_number, o.user_id, o.address_id, o.total_amount, o.status,
	o.payment_status, o.payment_method, o.shipping_info, o.created_at, o.updated_at`

// orderSelect reads orders with their address, which may have been deleted.
const orderSelect = `SELECT ` + orderColumns + `,
		a.id, a.recipient, a.phone, a.line1, a.line2, a.city, a.region, a.postal_code,
		a.country, a.is_default, a.created_at, a.updated_at
	FROM orders o
	LEFT JOIN addresses a ON a.id = o.address_id`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, order_number, user_id, address_id, total_amount, status,
			payment_status, payment_method, shipping_info, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.AddressID,
		order.TotalAmount,
		order.Status,
		order.PaymentStatus,
		order.PaymentMethod,
		order.ShippingInfo,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, constraintOrderNumber) {
			r.logger.Warn().
				Str("order_number", order.OrderNumber).
				Msg("order number collision")
			return ErrDuplicateOrderNumber
		}
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.Price)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_name", items[i].ProductName).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// nullableAddress receives the LEFT JOINed address columns.
type nullableAddress struct {
	ID         *uuid.UUID
	Recipient  *string
	Phone      *string
	Line1      *string
	Line2      *string
	City       *string
	Region     *string
	PostalCode *string
	Country    *string
	IsDefault  *bool
	CreatedAt  *time.Time
	UpdatedAt  *time.Time
}

func (n nullableAddress) toModel(userID string) *model.Address {
	if n.ID == nil {
		return nil
	}
	return &model.Address{
		ID:         *n.ID,
		UserID:     userID,
		Recipient:  *n.Recipient,
		Phone:      *n.Phone,
		Line1:      *n.Line1,
		Line2:      *n.Line2,
		City:       *n.City,
		Region:     *n.Region,
		PostalCode: *n.PostalCode,
		Country:    *n.Country,
		IsDefault:  *n.IsDefault,
		CreatedAt:  *n.CreatedAt,
		UpdatedAt:  *n.UpdatedAt,
	}
}

func orderDest(o *model.Order) []any {
	return []any{
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.AddressID,
		&o.TotalAmount,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.ShippingInfo,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o model.Order
		a nullableAddress
	)
	dest := append(orderDest(&o),
		&a.ID, &a.Recipient, &a.Phone, &a.Line1, &a.Line2, &a.City, &a.Region,
		&a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	o.Address = a.toModel(o.UserID)
	o.Items = []model.OrderItem{}
	return &o, nil
}

// GetByID retrieves an order by its ID along with its address and items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, orderSelect+` WHERE o.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	orders := []model.Order{*order}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListByUser returns the user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	query := orderSelect + ` WHERE o.user_id = $1 ORDER BY o.created_at DESC, o.id`
	return r.listOrders(ctx, query, userID)
}

// List returns orders across all users matching filter, newest first.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	conds := []string{}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if filter.OrderNumber != "" {
		args = append(args, filter.OrderNumber)
		// Literal substring match; LIKE wildcards in the input carry no meaning.
		conds = append(conds, fmt.Sprintf("strpos(lower(o.order_number), lower($%d)) > 0", len(args)))
	}

	query := orderSelect
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY o.created_at DESC, o.id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	return r.listOrders(ctx, query, args...)
}

func (r *orderRepository) listOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	rows.Close()

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the items of every order in one query, each joined
// with its current product when that product still exists.
func (r *orderRepository) attachItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	query := `
		SELECT i.id, i.order_id, i.product_id, i.product_name, i.quantity, i.price,
			p.id, p.name, p.category, p.price, p.stock, p.status, p.version, p.created_at, p.updated_at
		FROM order_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.order_id, i.product_name, i.id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("orders", len(orders)).Msg("failed to query order items")
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item      model.OrderItem
			pID       *string
			pName     *string
			pCategory *string
			pPrice    decimal.NullDecimal
			pStock    *int
			pStatus   *model.ProductStatus
			pVersion  *int
			pCreated  *time.Time
			pUpdated  *time.Time
		)
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price,
			&pID, &pName, &pCategory, &pPrice, &pStock, &pStatus, &pVersion, &pCreated, &pUpdated,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return fmt.Errorf("failed to scan order item: %w", err)
		}

		if pID != nil {
			item.Product = &model.Product{
				ID:        *pID,
				Name:      *pName,
				Category:  *pCategory,
				Price:     pPrice.Decimal,
				Stock:     *pStock,
				Status:    *pStatus,
				Version:   *pVersion,
				CreatedAt: *pCreated,
				UpdatedAt: *pUpdated,
			}
		}

		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return fmt.Errorf("error iterating order items: %w", err)
	}

	return nil
}

// GetForUpdate locks the order row until tx ends. Address and items are not loaded.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1 FOR UPDATE`

	var o model.Order
	if err := tx.QueryRow(ctx, query, id).Scan(orderDest(&o)...); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return &o, nil
}

// UpdateFields writes only the provided fields and bumps updated_at.
func (r *orderRepository) UpdateFields(ctx context.Context, tx pgx.Tx, id uuid.UUID, req *model.UpdateOrderRequest) error {
	sets := []string{}
	args := []any{id}

	if req.Status != nil {
		args = append(args, *req.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if req.ShippingInfo != nil {
		args = append(args, *req.ShippingInfo)
		sets = append(sets, fmt.Sprintf("shipping_info = $%d", len(args)))
	}
	if req.PaymentStatus != nil {
		args = append(args, *req.PaymentStatus)
		sets = append(sets, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	sets = append(sets, "updated_at = NOW()")

	query := `UPDATE orders SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	r.logger.Info().
		Str("order_id", id.String()).
		Int("fields", len(sets)-1).
		Msg("order updated")
	return nil
}
