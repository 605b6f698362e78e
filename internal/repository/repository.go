package repository

import (
	"context"

	"shopfront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, product *model.Product) error

	// Update applies a partial edit if the stored version matches.
	Update(ctx context.Context, id string, req *model.UpdateProductRequest) (*model.Product, error)

	// Upsert inserts or replaces products by ID and returns the number written.
	Upsert(ctx context.Context, products []model.Product) (int, error)

	// DecrementStock removes quantity units within tx, failing with
	// InsufficientStock instead of driving stock negative.
	DecrementStock(ctx context.Context, tx pgx.Tx, id string, quantity int) error
}

// CartRepository defines the interface for cart line data access operations.
type CartRepository interface {
	// AddItem inserts a line or increments the existing (user, product) line.
	AddItem(ctx context.Context, userID, productID string, quantity int) (*model.CartLine, error)

	// UpdateQuantity sets the quantity if the product has enough stock.
	UpdateQuantity(ctx context.Context, userID string, lineID uuid.UUID, quantity int) (*model.CartLine, error)

	// GetLine retrieves one of the user's lines with its product. Returns nil when absent.
	GetLine(ctx context.Context, userID string, lineID uuid.UUID) (*model.CartLine, error)

	// RemoveItem deletes the user's line; deleting a missing line is not an error.
	RemoveItem(ctx context.Context, userID string, lineID uuid.UUID) error

	// ListLines returns the user's lines joined with live product data.
	ListLines(ctx context.Context, userID string) ([]model.CartLine, error)

	// ListLinesTx is ListLines within tx, locking the returned cart rows.
	ListLinesTx(ctx context.Context, tx pgx.Tx, userID string) ([]model.CartLine, error)

	// DeleteLines deletes the listed lines of the user within tx.
	DeleteLines(ctx context.Context, tx pgx.Tx, userID string, lineIDs []uuid.UUID) (int64, error)
}

// AddressRepository defines the interface for address book data access operations.
type AddressRepository interface {
	// List returns the user's addresses, default first.
	List(ctx context.Context, userID string) ([]model.Address, error)

	// GetByID returns the address if it belongs to userID, nil otherwise.
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*model.Address, error)

	// Create inserts an address, clearing any previous default when it is the default.
	Create(ctx context.Context, address *model.Address) error

	// Update replaces an owned address. Returns false when nothing matched.
	Update(ctx context.Context, address *model.Address) (bool, error)

	// Delete removes an owned address.
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	// Returns ErrDuplicateOrderNumber when the order number is taken.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order with its address and items. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)

	// List returns orders across all users matching filter, newest first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// GetForUpdate locks the order row within tx. Returns nil when absent.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// UpdateFields writes only the non-nil fields of req within tx.
	UpdateFields(ctx context.Context, tx pgx.Tx, id uuid.UUID, req *model.UpdateOrderRequest) error
}

// SettingsRepository defines the interface for site settings storage.
type SettingsRepository interface {
	// GetAll returns every stored setting.
	GetAll(ctx context.Context) (map[string]string, error)

	// Upsert writes the given keys in one transaction.
	Upsert(ctx context.Context, values map[string]string) error
}
