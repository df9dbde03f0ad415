package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Hotel is a lodging venue whose guests place orders. Hotels are never
// deleted, only deactivated, so historical orders keep a valid reference.
type Hotel struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	Name      string          `json:"name" gorm:"type:varchar(255);not null"`
	Address   string          `json:"address" gorm:"type:text"`
	Code      string          `json:"code" gorm:"type:varchar(32);uniqueIndex;not null"`
	Latitude  decimal.Decimal `json:"latitude" gorm:"type:decimal(10,7)"`
	Longitude decimal.Decimal `json:"longitude" gorm:"type:decimal(10,7)"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// HotelPatch carries the mutable hotel fields; nil fields are left untouched.
type HotelPatch struct {
	Name      *string          `json:"name,omitempty"`
	Address   *string          `json:"address,omitempty"`
	Latitude  *decimal.Decimal `json:"latitude,omitempty"`
	Longitude *decimal.Decimal `json:"longitude,omitempty"`
	IsActive  *bool            `json:"is_active,omitempty"`
}

// Apply merges the patch into h.
func (p HotelPatch) Apply(h *Hotel) {
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.Address != nil {
		h.Address = *p.Address
	}
	if p.Latitude != nil {
		h.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		h.Longitude = *p.Longitude
	}
	if p.IsActive != nil {
		h.IsActive = *p.IsActive
	}
}
