package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Success       bool   `json:"success"`
	Error         string `json:"error"`
	Code          string `json:"code"`
	Details       any    `json:"details,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// SuccessResponse wraps every successful payload.
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeInvalidAddress       = "INVALID_ADDRESS"
	ErrCodeInvalidPaymentMethod = "INVALID_PAYMENT_METHOD"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeInsufficientStock    = "INSUFFICIENT_STOCK"
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeCartItemNotFound     = "CART_ITEM_NOT_FOUND"
	ErrCodeAddressNotFound      = "ADDRESS_NOT_FOUND"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeUnauthenticated      = "UNAUTHENTICATED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeConflict             = "CONFLICT"
	ErrCodeOrderNumberConflict  = "ORDER_NUMBER_CONFLICT"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// ErrorKind classifies a DomainError for transport mapping.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindBusinessRule
	KindNotFound
	KindForbidden
	KindUnauthenticated
	KindConflict
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
	Kind    ErrorKind
	Details any
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same error code, so that
// errors.Is matches instances created with extra details.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy of the error carrying details.
func (e *DomainError) WithDetails(details any) *DomainError {
	cp := *e
	cp.Details = details
	return &cp
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

// NewValidationError creates a validation error for malformed input.
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(KindValidation, ErrCodeValidation, fmt.Sprintf(format, args...))
}

// Common domain errors
var (
	ErrInvalidQuantity      = NewDomainError(KindBusinessRule, ErrCodeInvalidQuantity, "Quantity must be at least 1")
	ErrInvalidAddress       = NewDomainError(KindBusinessRule, ErrCodeInvalidAddress, "Address does not exist or does not belong to the user")
	ErrInvalidPaymentMethod = NewDomainError(KindValidation, ErrCodeInvalidPaymentMethod, "Payment method is not accepted")
	ErrEmptyCart            = NewDomainError(KindBusinessRule, ErrCodeEmptyCart, "Cart is empty")
	ErrInsufficientStock    = NewDomainError(KindBusinessRule, ErrCodeInsufficientStock, "Insufficient stock")
	ErrInvalidTransition    = NewDomainError(KindBusinessRule, ErrCodeInvalidTransition, "Order status transition is not allowed")
	ErrProductNotFound      = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Product not found")
	ErrCartItemNotFound     = NewDomainError(KindNotFound, ErrCodeCartItemNotFound, "Cart item not found")
	ErrAddressNotFound      = NewDomainError(KindNotFound, ErrCodeAddressNotFound, "Address not found")
	ErrOrderNotFound        = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrUnauthenticated      = NewDomainError(KindUnauthenticated, ErrCodeUnauthenticated, "Authentication required")
	ErrForbidden            = NewDomainError(KindForbidden, ErrCodeForbidden, "Operation not permitted")
	ErrVersionConflict      = NewDomainError(KindConflict, ErrCodeConflict, "Record was modified concurrently, reload and retry")
	ErrOrderNumberConflict  = NewDomainError(KindInternal, ErrCodeOrderNumberConflict, "Could not allocate a unique order number")
)

// InsufficientStockDetails identifies the cart line blocking checkout.
type InsufficientStockDetails struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// NewInsufficientStockError builds an InsufficientStock error naming the product.
func NewInsufficientStockError(d InsufficientStockDetails) *DomainError {
	err := ErrInsufficientStock.WithDetails(d)
	name := d.ProductName
	if name == "" {
		name = d.ProductID
	}
	err.Message = fmt.Sprintf("Insufficient stock for %s: requested %d, available %d", name, d.Requested, d.Available)
	return err
}

// NewInvalidTransitionError describes a rejected status change.
func NewInvalidTransitionError(from, to OrderStatus) *DomainError {
	err := ErrInvalidTransition.WithDetails(map[string]string{"from": string(from), "to": string(to)})
	err.Message = fmt.Sprintf("Order status cannot change from %s to %s", from, to)
	return err
}
