package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Address is a shipping address owned by a single user.
type Address struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     string    `json:"-" db:"user_id"`
	Recipient  string    `json:"recipient" db:"recipient"`
	Phone      string    `json:"phone" db:"phone"`
	Line1      string    `json:"line1" db:"line1"`
	Line2      string    `json:"line2,omitempty" db:"line2"`
	City       string    `json:"city" db:"city"`
	Region     string    `json:"region,omitempty" db:"region"`
	PostalCode string    `json:"postalCode" db:"postal_code"`
	Country    string    `json:"country" db:"country"`
	IsDefault  bool      `json:"isDefault" db:"is_default"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// AddressRequest is the payload for creating or replacing an address.
type AddressRequest struct {
	Recipient  string `json:"recipient"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"isDefault"`
}

// Validate trims the request and checks required fields.
func (r *AddressRequest) Validate() error {
	r.Recipient = strings.TrimSpace(r.Recipient)
	r.Line1 = strings.TrimSpace(r.Line1)
	r.City = strings.TrimSpace(r.City)
	r.Country = strings.TrimSpace(r.Country)

	switch {
	case r.Recipient == "":
		return NewValidationError("recipient is required")
	case r.Line1 == "":
		return NewValidationError("line1 is required")
	case r.City == "":
		return NewValidationError("city is required")
	case r.Country == "":
		return NewValidationError("country is required")
	}
	return nil
}

// Apply copies the request onto a.
func (r *AddressRequest) Apply(a *Address) {
	a.Recipient = r.Recipient
	a.Phone = r.Phone
	a.Line1 = r.Line1
	a.Line2 = r.Line2
	a.City = r.City
	a.Region = r.Region
	a.PostalCode = r.PostalCode
	a.Country = r.Country
	a.IsDefault = r.IsDefault
}
