// Package notify emits order events to hotels, merchants and clients.
// Emission is best-effort: callers log failures and carry on.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/bahriwassim/zishop1-sub000/internal/model"
)

// Event types carried in an Event envelope.
const (
	EventNewOrder      = "new_order"
	EventStatusChanged = "status_changed"
)

// StatusChange describes an accepted status transition.
type StatusChange struct {
	OrderID     uint              `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	HotelID     uint              `json:"hotel_id"`
	MerchantID  uint              `json:"merchant_id"`
	ClientID    *uint             `json:"client_id,omitempty"`
	NewStatus   model.OrderStatus `json:"new_status"`
	Message     string            `json:"message"`
}

// Notifier receives the order engine's events.
type Notifier interface {
	NotifyNewOrder(ctx context.Context, order *model.Order) error
	NotifyStatusChange(ctx context.Context, change StatusChange) error
}

// Event is the wire envelope shared by the transport notifiers.
type Event struct {
	Type        string            `json:"type"`
	OrderID     uint              `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	HotelID     uint              `json:"hotel_id"`
	MerchantID  uint              `json:"merchant_id"`
	ClientID    *uint             `json:"client_id,omitempty"`
	Status      model.OrderStatus `json:"status"`
	Message     string            `json:"message,omitempty"`
	Order       *model.Order      `json:"order,omitempty"`
	At          time.Time         `json:"at"`
}

// NewOrderEvent builds the envelope of a placed order.
func NewOrderEvent(order *model.Order, at time.Time) Event {
	return Event{
		Type:        EventNewOrder,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		HotelID:     order.HotelID,
		MerchantID:  order.MerchantID,
		ClientID:    order.ClientID,
		Status:      order.Status,
		Order:       order,
		At:          at,
	}
}

// StatusChangeEvent builds the envelope of a transition.
func StatusChangeEvent(change StatusChange, at time.Time) Event {
	return Event{
		Type:        EventStatusChanged,
		OrderID:     change.OrderID,
		OrderNumber: change.OrderNumber,
		HotelID:     change.HotelID,
		MerchantID:  change.MerchantID,
		ClientID:    change.ClientID,
		Status:      change.NewStatus,
		Message:     change.Message,
		At:          at,
	}
}

// Multi fans every event out to each notifier and joins their errors.
type Multi []Notifier

func (m Multi) NotifyNewOrder(ctx context.Context, order *model.Order) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.NotifyNewOrder(ctx, order))
	}
	return errors.Join(errs...)
}

func (m Multi) NotifyStatusChange(ctx context.Context, change StatusChange) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.NotifyStatusChange(ctx, change))
	}
	return errors.Join(errs...)
}

// Nop discards every event.
type Nop struct{}

func (Nop) NotifyNewOrder(context.Context, *model.Order) error     { return nil }
func (Nop) NotifyStatusChange(context.Context, StatusChange) error { return nil }
