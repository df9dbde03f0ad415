package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound reports an absent record. It is never a backend failure.
	ErrNotFound = errors.New("record not found")
	// ErrConflict reports a violated uniqueness rule (hotel code, client
	// email, username, hotel-merchant pair, order number).
	ErrConflict = errors.New("record already exists")
	// ErrInvalidReference reports a write naming an entity that does not exist.
	ErrInvalidReference = errors.New("referenced record does not exist")
	// ErrInvalidInput reports a draft or patch that breaks an entity rule.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStaleStatus reports a lost status compare-and-swap.
	ErrStaleStatus = errors.New("order status changed concurrently")
	// ErrBackend matches every *BackendError.
	ErrBackend = errors.New("storage backend failure")
)

// BackendError wraps a connectivity or integrity failure of the backend.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrBackend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrBackend) match.
func (e *BackendError) Is(target error) bool { return target == ErrBackend }

// InsufficientStockError reports a stock line that cannot be served.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): available %d, requested %d",
		e.ProductID, e.ProductName, e.Available, e.Requested)
}

// MergeLines sums quantities per product, keeping first-seen order.
func MergeLines(lines []StockLine) []StockLine {
	index := make(map[uint]int, len(lines))
	merged := make([]StockLine, 0, len(lines))
	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged
}

// NormalizeEmail is the canonical form under which client emails are stored
// and looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
