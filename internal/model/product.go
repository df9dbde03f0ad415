package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValidationStatus is the operator review state of a product
type ValidationStatus string

const (
	ValidationPending  ValidationStatus = "pending"
	ValidationApproved ValidationStatus = "approved"
	ValidationRejected ValidationStatus = "rejected"
)

// Product represents an item sold by a merchant. Stock only moves through
// order placement (decrement) and explicit restocking.
type Product struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	MerchantID       uint             `json:"merchant_id" gorm:"index;not null"`
	Name             string           `json:"name" gorm:"type:varchar(255);not null"`
	Description      string           `json:"description" gorm:"type:text"`
	Price            decimal.Decimal  `json:"price" gorm:"type:decimal(10,2);not null"`
	Category         string           `json:"category" gorm:"type:varchar(100)"`
	IsAvailable      bool             `json:"is_available"`
	IsSouvenir       bool             `json:"is_souvenir"`
	Origin           string           `json:"origin" gorm:"type:varchar(255)"`
	Material         string           `json:"material" gorm:"type:varchar(255)"`
	Stock            int              `json:"stock" gorm:"not null"`
	ImageURL         *string          `json:"image_url,omitempty" gorm:"type:text"`
	ValidationStatus ValidationStatus `json:"validation_status" gorm:"type:varchar(20);index;not null"`
	RejectionReason  *string          `json:"rejection_reason,omitempty" gorm:"type:text"`
	ValidatedBy      *uint            `json:"validated_by,omitempty"`
	ValidatedAt      *time.Time       `json:"validated_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ProductPatch carries the mutable product fields. Stock is not patchable.
type ProductPatch struct {
	Name             *string           `json:"name,omitempty"`
	Description      *string           `json:"description,omitempty"`
	Price            *decimal.Decimal  `json:"price,omitempty"`
	Category         *string           `json:"category,omitempty"`
	IsAvailable      *bool             `json:"is_available,omitempty"`
	IsSouvenir       *bool             `json:"is_souvenir,omitempty"`
	Origin           *string           `json:"origin,omitempty"`
	Material         *string           `json:"material,omitempty"`
	ImageURL         *string           `json:"image_url,omitempty"`
	ValidationStatus *ValidationStatus `json:"validation_status,omitempty"`
	RejectionReason  *string           `json:"rejection_reason,omitempty"`
	ValidatedBy      *uint             `json:"validated_by,omitempty"`
	ValidatedAt      *time.Time        `json:"validated_at,omitempty"`
}

// Apply merges the patch into p.
func (patch ProductPatch) Apply(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.IsAvailable != nil {
		p.IsAvailable = *patch.IsAvailable
	}
	if patch.IsSouvenir != nil {
		p.IsSouvenir = *patch.IsSouvenir
	}
	if patch.Origin != nil {
		p.Origin = *patch.Origin
	}
	if patch.Material != nil {
		p.Material = *patch.Material
	}
	if patch.ImageURL != nil {
		p.ImageURL = patch.ImageURL
	}
	if patch.ValidationStatus != nil {
		p.ValidationStatus = *patch.ValidationStatus
	}
	if patch.RejectionReason != nil {
		p.RejectionReason = patch.RejectionReason
	}
	if patch.ValidatedBy != nil {
		p.ValidatedBy = patch.ValidatedBy
	}
	if patch.ValidatedAt != nil {
		p.ValidatedAt = patch.ValidatedAt
	}
}
