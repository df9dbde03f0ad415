// Package gormstore implements the store contract on GORM. PostgreSQL is the
// production dialect; SQLite serves local runs and tests.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bahriwassim/zishop1-sub000/internal/store"
	"github.com/bahriwassim/zishop1-sub000/prometheus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultTimeout bounds a store call when none is configured.
const DefaultTimeout = 5 * time.Second

// Store runs every call against db under a bounded timeout.
type Store struct {
	db      *gorm.DB
	timeout time.Duration
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

// New wraps an opened and migrated database.
func New(db *gorm.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{db: db, timeout: timeout, now: time.Now}
}

// view runs a read outside a transaction.
func (s *Store) view(ctx context.Context, op string, fn func(db *gorm.DB) error) error {
	defer prometheus.TrackDBOperation(op)(time.Now())

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return translate(op, fn(s.db.WithContext(ctx)))
}

// write runs fn in a transaction; any returned error rolls it back.
func (s *Store) write(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	defer prometheus.TrackDBOperation(op)(time.Now())

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return translate(op, s.db.WithContext(ctx).Transaction(fn))
}

// forUpdate takes a row lock where the dialect has one. SQLite serializes
// writers on its single connection.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// translate maps GORM errors onto the store's error contract.
func translate(op string, err error) error {
	var short *store.InsufficientStockError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrConflict),
		errors.Is(err, store.ErrInvalidReference),
		errors.Is(err, store.ErrInvalidInput),
		errors.Is(err, store.ErrStaleStatus),
		errors.As(err, &short):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s", store.ErrConflict, op)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %s", store.ErrInvalidReference, op)
	default:
		return &store.BackendError{Op: op, Err: err}
	}
}

// mustExist reports ErrInvalidReference when no row of m has id.
func mustExist(tx *gorm.DB, m any, kind string, id uint) error {
	var n int64
	if err := tx.Model(m).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", store.ErrInvalidReference, kind, id)
	}
	return nil
}

// taken reports whether any row of m matches the condition.
func taken(tx *gorm.DB, m any, query string, args ...any) (bool, error) {
	var n int64
	if err := tx.Model(m).Where(query, args...).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
