// Package memory implements the store contract over maps keyed by synthetic
// integer ids. It backs tests, demos and single-process deployments.
package memory

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/internal/store"
)

// Store is an in-memory store. A single lock guards every map, which makes
// multi-entity writes such as PlaceOrder atomic.
type Store struct {
	mu sync.RWMutex

	hotels       map[uint]*model.Hotel
	merchants    map[uint]*model.Merchant
	products     map[uint]*model.Product
	orders       map[uint]*model.Order
	clients      map[uint]*model.Client
	users        map[uint]*model.User
	associations map[uint]*model.HotelMerchant

	nextID map[string]uint
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		hotels:       make(map[uint]*model.Hotel),
		merchants:    make(map[uint]*model.Merchant),
		products:     make(map[uint]*model.Product),
		orders:       make(map[uint]*model.Order),
		clients:      make(map[uint]*model.Client),
		users:        make(map[uint]*model.User),
		associations: make(map[uint]*model.HotelMerchant),
		nextID:       make(map[string]uint),
		now:          time.Now,
	}
}

// allocate returns the next id of an entity family. Callers hold mu.
func (s *Store) allocate(family string) uint {
	s.nextID[family]++
	return s.nextID[family]
}

// values copies the map values ordered by id.
func values[T any](m map[uint]*T, keep func(*T) bool) []T {
	ids := make([]uint, 0, len(m))
	for id, v := range m {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, cmp.Compare[uint])

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m[id])
	}
	return out
}
