package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus is the sale state of a catalogue entry.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusSoldOut  ProductStatus = "sold_out"
)

// Valid reports whether s is a known product status.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusSoldOut:
		return true
	}
	return false
}

// Product represents an item in the catalogue.
type Product struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Category  string          `json:"category" db:"category"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	Status    ProductStatus   `json:"status" db:"status"`
	Version   int             `json:"version" db:"version"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// CreateProductRequest is the admin payload for adding a product.
type CreateProductRequest struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Status   ProductStatus   `json:"status"`
}

// Validate checks the request fields.
func (r *CreateProductRequest) Validate() error {
	if r.ID == "" {
		return NewValidationError("product id is required")
	}
	if r.Name == "" {
		return NewValidationError("product name is required")
	}
	if r.Price.IsNegative() {
		return NewValidationError("price must not be negative")
	}
	if r.Stock < 0 {
		return NewValidationError("stock must not be negative")
	}
	if r.Status == "" {
		r.Status = ProductStatusActive
	}
	if !r.Status.Valid() {
		return NewValidationError("invalid product status: %s", r.Status)
	}
	return nil
}

// UpdateProductRequest is a partial admin edit. Version must match the
// stored row for the write to apply.
type UpdateProductRequest struct {
	Name     *string          `json:"name,omitempty"`
	Category *string          `json:"category,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Stock    *int             `json:"stock,omitempty"`
	Status   *ProductStatus   `json:"status,omitempty"`
	Version  int              `json:"version"`
}

// Validate checks the request fields.
func (r *UpdateProductRequest) Validate() error {
	if r.Name == nil && r.Category == nil && r.Price == nil && r.Stock == nil && r.Status == nil {
		return NewValidationError("at least one field must be provided")
	}
	if r.Version < 1 {
		return NewValidationError("version is required")
	}
	if r.Name != nil && *r.Name == "" {
		return NewValidationError("product name must not be empty")
	}
	if r.Price != nil && r.Price.IsNegative() {
		return NewValidationError("price must not be negative")
	}
	if r.Stock != nil && *r.Stock < 0 {
		return NewValidationError("stock must not be negative")
	}
	if r.Status != nil && !r.Status.Valid() {
		return NewValidationError("invalid product status: %s", *r.Status)
	}
	return nil
}
