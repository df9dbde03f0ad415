package model

import "time"

// HotelMerchant makes a merchant visible to the guests of a hotel. Links are
// toggled inactive rather than removed.
type HotelMerchant struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	HotelID    uint      `json:"hotel_id" gorm:"not null;uniqueIndex:idx_hotel_merchant_pair"`
	MerchantID uint      `json:"merchant_id" gorm:"not null;uniqueIndex:idx_hotel_merchant_pair;index"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the table name for HotelMerchant model.
func (HotelMerchant) TableName() string {
	return "hotel_merchants"
}

// HotelMerchantPatch carries the mutable association fields.
type HotelMerchantPatch struct {
	IsActive *bool `json:"is_active,omitempty"`
}

// Apply merges the patch into a.
func (p HotelMerchantPatch) Apply(a *HotelMerchant) {
	if p.IsActive != nil {
		a.IsActive = *p.IsActive
	}
}
