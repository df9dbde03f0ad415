package order

import (
	"errors"
	"fmt"

	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/internal/store"
)

// ErrNotDelivered rejects a pickup before delivery.
var ErrNotDelivered = errors.New("order has not been delivered")

// ValidationError rejects a malformed request before any mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError names an unresolvable entity.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// Is lets errors.Is(err, store.ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool { return target == store.ErrNotFound }

// InsufficientStockError names the product and both quantities.
type InsufficientStockError = store.InsufficientStockError

// InvalidTransitionError names a status change outside the workflow.
type InvalidTransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// Reason classifies an engine error for metrics and logs.
func Reason(err error) string {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		short      *InsufficientStockError
		transition *InvalidTransitionError
	)
	switch {
	case errors.As(err, &validation), errors.Is(err, store.ErrInvalidInput):
		return "validation"
	case errors.As(err, &notFound), errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidReference):
		return "not_found"
	case errors.As(err, &short):
		return "insufficient_stock"
	case errors.As(err, &transition), errors.Is(err, ErrNotDelivered), errors.Is(err, store.ErrStaleStatus):
		return "invalid_transition"
	default:
		return "backend"
	}
}
