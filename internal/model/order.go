package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is a state of the delivery workflow
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusPreparing  OrderStatus = "preparing"
	StatusReady      OrderStatus = "ready"
	StatusDelivering OrderStatus = "delivering"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every workflow state in progression order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusDelivering,
	StatusDelivered,
	StatusCancelled,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// OrderItem is a line of an order, priced at the time the order was placed
type OrderItem struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Name      string          `json:"name"`
}

// Order is a guest's request for delivery of products to a room
type Order struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	HotelID            uint            `json:"hotel_id" gorm:"index;not null"`
	MerchantID         uint            `json:"merchant_id" gorm:"index;not null"`
	ClientID           *uint           `json:"client_id,omitempty" gorm:"index"`
	OrderNumber        string          `json:"order_number" gorm:"type:varchar(32);uniqueIndex;not null"`
	CustomerName       string          `json:"customer_name" gorm:"type:varchar(255);not null"`
	CustomerRoom       string          `json:"customer_room" gorm:"type:varchar(50)"`
	Items              []OrderItem     `json:"items" gorm:"serializer:json;type:text;not null"`
	TotalAmount        decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Status             OrderStatus     `json:"status" gorm:"type:varchar(20);index;not null"`
	MerchantCommission decimal.Decimal `json:"merchant_commission" gorm:"type:decimal(12,2)"`
	OperatorCommission decimal.Decimal `json:"operator_commission" gorm:"type:decimal(12,2)"`
	HotelCommission    decimal.Decimal `json:"hotel_commission" gorm:"type:decimal(12,2)"`
	DeliveryNotes      *string         `json:"delivery_notes,omitempty" gorm:"type:text"`
	ConfirmedAt        *time.Time      `json:"confirmed_at,omitempty"`
	DeliveredAt        *time.Time      `json:"delivered_at,omitempty"`
	EstimatedDelivery  *time.Time      `json:"estimated_delivery_time,omitempty"`
	PickedUp           bool            `json:"picked_up"`
	PickedUpAt         *time.Time      `json:"picked_up_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// OrderPatch carries the order fields the order engine may change.
type OrderPatch struct {
	Status            *OrderStatus `json:"status,omitempty"`
	DeliveryNotes     *string      `json:"delivery_notes,omitempty"`
	ConfirmedAt       *time.Time   `json:"confirmed_at,omitempty"`
	DeliveredAt       *time.Time   `json:"delivered_at,omitempty"`
	EstimatedDelivery *time.Time   `json:"estimated_delivery_time,omitempty"`
	PickedUp          *bool        `json:"picked_up,omitempty"`
	PickedUpAt        *time.Time   `json:"picked_up_at,omitempty"`
}

// Apply merges the patch into o.
func (p OrderPatch) Apply(o *Order) {
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.DeliveryNotes != nil {
		o.DeliveryNotes = p.DeliveryNotes
	}
	if p.ConfirmedAt != nil {
		o.ConfirmedAt = p.ConfirmedAt
	}
	if p.DeliveredAt != nil {
		o.DeliveredAt = p.DeliveredAt
	}
	if p.EstimatedDelivery != nil {
		o.EstimatedDelivery = p.EstimatedDelivery
	}
	if p.PickedUp != nil {
		o.PickedUp = *p.PickedUp
	}
	if p.PickedUpAt != nil {
		o.PickedUpAt = p.PickedUpAt
	}
}

// Clone returns a deep copy whose item slice is not shared with o.
func (o Order) Clone() Order {
	if o.Items != nil {
		items := make([]OrderItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	return o
}
