package service

import (
	"context"

	"shopfront/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for product management.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// Create adds a product to the catalogue.
	Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)

	// Update applies a versioned partial edit.
	Update(ctx context.Context, id string, req *model.UpdateProductRequest) (*model.Product, error)
}

// CartService defines operations on a user's cart.
type CartService interface {
	// Get returns the cart with live product data.
	Get(ctx context.Context, userID string) (*model.Cart, error)

	// AddItem adds quantity units of a product, merging with an existing line.
	AddItem(ctx context.Context, userID string, req *model.AddCartItemRequest) (*model.CartLine, error)

	// UpdateQuantity sets a line's quantity if stock allows it.
	UpdateQuantity(ctx context.Context, userID string, lineID uuid.UUID, quantity int) (*model.CartLine, error)

	// RemoveItem deletes a line; missing lines are ignored.
	RemoveItem(ctx context.Context, userID string, lineID uuid.UUID) error
}

// AddressService defines operations on a user's address book.
type AddressService interface {
	List(ctx context.Context, userID string) ([]model.Address, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*model.Address, error)
	Create(ctx context.Context, userID string, req *model.AddressRequest) (*model.Address, error)
	Update(ctx context.Context, userID string, id uuid.UUID, req *model.AddressRequest) (*model.Address, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

// OrderService defines operations for order placement and management.
type OrderService interface {
	// PlaceOrder turns the user's cart into an order, decrementing stock
	// and clearing the cart in one transaction.
	PlaceOrder(ctx context.Context, userID string, req *model.PlaceOrderRequest) (*model.Order, error)

	// ListForUser returns the user's orders, newest first.
	ListForUser(ctx context.Context, userID string) ([]model.Order, error)

	// GetForUser returns one of the user's orders.
	GetForUser(ctx context.Context, userID string, id uuid.UUID) (*model.Order, error)

	// AdminList returns orders across all users.
	AdminList(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// AdminGet returns any order.
	AdminGet(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// AdminUpdate changes status, shipping info or payment status.
	AdminUpdate(ctx context.Context, id uuid.UUID, req *model.UpdateOrderRequest) (*model.Order, error)
}

// SettingsService defines access to site-wide settings.
type SettingsService interface {
	// Snapshot returns the current settings.
	Snapshot(ctx context.Context) (model.Settings, error)

	// Update writes values and returns the new snapshot.
	Update(ctx context.Context, values map[string]string) (model.Settings, error)
}

// PlacementRecorder observes order placement outcomes.
type PlacementRecorder interface {
	OrderPlaced()
	PlacementFailed(code string)
	OrderNumberCollision()
}

type nopRecorder struct{}

func (nopRecorder) OrderPlaced()           {}
func (nopRecorder) PlacementFailed(string) {}
func (nopRecorder) OrderNumberCollision()  {}
