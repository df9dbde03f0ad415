package model

import (
	"fmt"
	"time"
)

// Client is a hotel guest with a self-service account
type Client struct {
	ID                     uint      `json:"id" gorm:"primaryKey"`
	Email                  string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password               string    `json:"-" gorm:"type:varchar(255);not null"`
	FirstName              string    `json:"first_name" gorm:"type:varchar(100)"`
	LastName               string    `json:"last_name" gorm:"type:varchar(100)"`
	Phone                  string    `json:"phone" gorm:"type:varchar(50)"`
	IsActive               bool      `json:"is_active"`
	HasCompletedOnboarding bool      `json:"has_completed_onboarding"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// ClientPatch carries the mutable client fields. Password is plaintext and
// gets hashed by the store.
type ClientPatch struct {
	FirstName              *string `json:"first_name,omitempty"`
	LastName               *string `json:"last_name,omitempty"`
	Phone                  *string `json:"phone,omitempty"`
	Password               *string `json:"password,omitempty"`
	IsActive               *bool   `json:"is_active,omitempty"`
	HasCompletedOnboarding *bool   `json:"has_completed_onboarding,omitempty"`
}

// Apply merges every field except Password into c.
func (p ClientPatch) Apply(c *Client) {
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	if p.HasCompletedOnboarding != nil {
		c.HasCompletedOnboarding = *p.HasCompletedOnboarding
	}
}

// Role of a staff account
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHotel    Role = "hotel"
	RoleMerchant Role = "merchant"
)

// User is a staff account: operator, hotel staff or merchant staff
type User struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Username   string    `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password   string    `json:"-" gorm:"type:varchar(255);not null"`
	Role       Role      `json:"role" gorm:"type:varchar(20);not null"`
	HotelID    *uint     `json:"hotel_id,omitempty" gorm:"index"`
	MerchantID *uint     `json:"merchant_id,omitempty" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate checks that the role carries exactly the owning entity it implies.
func (u *User) Validate() error {
	switch u.Role {
	case RoleAdmin:
		if u.HotelID != nil || u.MerchantID != nil {
			return fmt.Errorf("role %s must not own a hotel or merchant", u.Role)
		}
	case RoleHotel:
		if u.HotelID == nil || u.MerchantID != nil {
			return fmt.Errorf("role %s requires hotel_id only", u.Role)
		}
	case RoleMerchant:
		if u.MerchantID == nil || u.HotelID != nil {
			return fmt.Errorf("role %s requires merchant_id only", u.Role)
		}
	default:
		return fmt.Errorf("unknown role %q", u.Role)
	}
	return nil
}

// UserPatch carries the mutable staff fields. Setting Role replaces both
// owning ids with the ones in the patch.
type UserPatch struct {
	Password   *string `json:"password,omitempty"`
	Role       *Role   `json:"role,omitempty"`
	HotelID    *uint   `json:"hotel_id,omitempty"`
	MerchantID *uint   `json:"merchant_id,omitempty"`
}

// Apply merges every field except Password into u.
func (p UserPatch) Apply(u *User) {
	if p.Role != nil {
		u.Role = *p.Role
		u.HotelID = p.HotelID
		u.MerchantID = p.MerchantID
		return
	}
	if p.HotelID != nil {
		u.HotelID = p.HotelID
	}
	if p.MerchantID != nil {
		u.MerchantID = p.MerchantID
	}
}
