package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a customer order.
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	OrderNumber   string          `json:"orderNumber" db:"order_number"`
	UserID        string          `json:"userId" db:"user_id"`
	AddressID     *uuid.UUID      `json:"addressId" db:"address_id"`
	TotalAmount   decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status        OrderStatus     `json:"status" db:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	PaymentMethod string          `json:"paymentMethod" db:"payment_method"`
	ShippingInfo  string          `json:"shippingInfo" db:"shipping_info"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`

	// Address is nil when the address was deleted after placement.
	Address *Address    `json:"address"`
	Items   []OrderItem `json:"items"`
}

// OrderItem represents a line item in an order. Price and ProductName are
// frozen at placement; ProductID is nil once the product is deleted.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"-" db:"order_id"`
	ProductID   *string         `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`

	// Product is the current catalogue entry, if it still exists.
	Product *Product `json:"product,omitempty"`
}

// Subtotal is the frozen line total.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PlaceOrderRequest represents the request payload for checking out the cart.
type PlaceOrderRequest struct {
	AddressID     uuid.UUID `json:"addressId"`
	PaymentMethod string    `json:"paymentMethod"`
}

// UpdateOrderRequest is a partial admin update; nil fields are left untouched.
type UpdateOrderRequest struct {
	Status        *OrderStatus   `json:"status,omitempty"`
	ShippingInfo  *string        `json:"shippingInfo,omitempty"`
	PaymentStatus *PaymentStatus `json:"paymentStatus,omitempty"`
}

// Validate checks enum values and that something is being changed.
func (r *UpdateOrderRequest) Validate() error {
	if r.Status == nil && r.ShippingInfo == nil && r.PaymentStatus == nil {
		return NewValidationError("at least one of status, shippingInfo or paymentStatus is required")
	}
	if r.Status != nil && !r.Status.Valid() {
		return NewValidationError("invalid order status: %s", *r.Status)
	}
	if r.PaymentStatus != nil && !r.PaymentStatus.Valid() {
		return NewValidationError("invalid payment status: %s", *r.PaymentStatus)
	}
	return nil
}

// OrderFilter narrows the admin order listing.
type OrderFilter struct {
	Status      *OrderStatus
	OrderNumber string
	Limit       int
	Offset      int
}
