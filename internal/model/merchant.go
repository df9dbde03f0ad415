package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Merchant is a local shop offering products to hotel guests.
type Merchant struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null"`
	Address     string          `json:"address" gorm:"type:text"`
	Category    string          `json:"category" gorm:"type:varchar(100);index"`
	Description string          `json:"description" gorm:"type:text"`
	Latitude    decimal.Decimal `json:"latitude" gorm:"type:decimal(10,7)"`
	Longitude   decimal.Decimal `json:"longitude" gorm:"type:decimal(10,7)"`
	Rating      decimal.Decimal `json:"rating" gorm:"type:decimal(3,2)"`
	ReviewCount int             `json:"review_count"`
	IsOpen      bool            `json:"is_open"`
	IsActive    bool            `json:"is_active"`
	ImageURL    *string         `json:"image_url,omitempty" gorm:"type:text"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MerchantPatch carries the mutable merchant fields.
type MerchantPatch struct {
	Name        *string          `json:"name,omitempty"`
	Address     *string          `json:"address,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	Latitude    *decimal.Decimal `json:"latitude,omitempty"`
	Longitude   *decimal.Decimal `json:"longitude,omitempty"`
	Rating      *decimal.Decimal `json:"rating,omitempty"`
	ReviewCount *int             `json:"review_count,omitempty"`
	IsOpen      *bool            `json:"is_open,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
}

// Apply merges the patch into m.
func (p MerchantPatch) Apply(m *Merchant) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Address != nil {
		m.Address = *p.Address
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Latitude != nil {
		m.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		m.Longitude = *p.Longitude
	}
	if p.Rating != nil {
		m.Rating = *p.Rating
	}
	if p.ReviewCount != nil {
		m.ReviewCount = *p.ReviewCount
	}
	if p.IsOpen != nil {
		m.IsOpen = *p.IsOpen
	}
	if p.IsActive != nil {
		m.IsActive = *p.IsActive
	}
	if p.ImageURL != nil {
		m.ImageURL = p.ImageURL
	}
}
