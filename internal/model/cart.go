package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one (user, product) pairing awaiting checkout.
type CartLine struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    string    `json:"-" db:"user_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Product is joined live from the catalogue.
	Product *Product `json:"product,omitempty"`
}

// Subtotal is the live line price.
func (l CartLine) Subtotal() decimal.Decimal {
	if l.Product == nil {
		return decimal.Zero
	}
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the response view of a user's cart.
type Cart struct {
	Lines         []CartLine      `json:"lines"`
	TotalQuantity int             `json:"totalQuantity"`
	Total         decimal.Decimal `json:"total"`
}

// NewCart summarises lines into a Cart.
func NewCart(lines []CartLine) *Cart {
	if lines == nil {
		lines = []CartLine{}
	}
	c := &Cart{Lines: lines, Total: decimal.Zero}
	for _, l := range lines {
		c.TotalQuantity += l.Quantity
		c.Total = c.Total.Add(l.Subtotal())
	}
	return c
}

// AddCartItemRequest represents the payload for adding a product to the cart.
type AddCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest represents the payload for changing a line quantity.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
