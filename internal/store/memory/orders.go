package memory

import (
	"context"
	"fmt"

	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/internal/store"
)

// GetOrder returns an order by id.
func (s *Store) GetOrder(_ context.Context, id uint) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := o.Clone()
	return &out, nil
}

// GetOrderByNumber returns the order with the given number.
func (s *Store) GetOrderByNumber(_ context.Context, number string) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.OrderNumber == number {
			out := o.Clone()
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

// ListOrders returns every order.
func (s *Store) ListOrders(_ context.Context) ([]model.Order, error) {
	return s.listOrders(nil), nil
}

// ListOrdersByHotel returns the orders placed from a hotel.
func (s *Store) ListOrdersByHotel(_ context.Context, hotelID uint) ([]model.Order, error) {
	return s.listOrders(func(o *model.Order) bool { return o.HotelID == hotelID }), nil
}

// ListOrdersByMerchant returns the orders addressed to a merchant.
func (s *Store) ListOrdersByMerchant(_ context.Context, merchantID uint) ([]model.Order, error) {
	return s.listOrders(func(o *model.Order) bool { return o.MerchantID == merchantID }), nil
}

// ListOrdersByClient returns the orders of a client account.
func (s *Store) ListOrdersByClient(_ context.Context, clientID uint) ([]model.Order, error) {
	return s.listOrders(func(o *model.Order) bool { return o.ClientID != nil && *o.ClientID == clientID }), nil
}

func (s *Store) listOrders(keep func(*model.Order) bool) []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := values(s.orders, keep)
	for i := range orders {
		orders[i] = orders[i].Clone()
	}
	return orders
}

// CreateOrder inserts an order without touching stock.
func (s *Store) CreateOrder(_ context.Context, draft *model.Order) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOrderLocked(draft); err != nil {
		return nil, err
	}
	return s.insertOrderLocked(draft), nil
}

// PlaceOrder checks and decrements stock for every line and inserts the
// order while holding the write lock, so concurrent orders cannot oversell.
func (s *Store) PlaceOrder(_ context.Context, draft *model.Order, lines []store.StockLine) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOrderLocked(draft); err != nil {
		return nil, err
	}

	merged := store.MergeLines(lines)
	for _, line := range merged {
		p, ok := s.products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %d", store.ErrInvalidReference, line.ProductID)
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for product %d must be positive", store.ErrInvalidInput, line.ProductID)
		}
		if p.Stock < line.Quantity {
			return nil, &store.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   p.Stock,
				Requested:   line.Quantity,
			}
		}
	}

	now := s.now()
	for _, line := range merged {
		p := s.products[line.ProductID]
		p.Stock -= line.Quantity
		p.UpdatedAt = now
	}
	return s.insertOrderLocked(draft), nil
}

func (s *Store) checkOrderLocked(draft *model.Order) error {
	if _, ok := s.hotels[draft.HotelID]; !ok {
		return fmt.Errorf("%w: hotel %d", store.ErrInvalidReference, draft.HotelID)
	}
	if _, ok := s.merchants[draft.MerchantID]; !ok {
		return fmt.Errorf("%w: merchant %d", store.ErrInvalidReference, draft.MerchantID)
	}
	if draft.ClientID != nil {
		if _, ok := s.clients[*draft.ClientID]; !ok {
			return fmt.Errorf("%w: client %d", store.ErrInvalidReference, *draft.ClientID)
		}
	}
	for _, item := range draft.Items {
		if _, ok := s.products[item.ProductID]; !ok {
			return fmt.Errorf("%w: product %d", store.ErrInvalidReference, item.ProductID)
		}
	}
	if draft.OrderNumber == "" {
		return fmt.Errorf("%w: order number is required", store.ErrInvalidInput)
	}
	for _, o := range s.orders {
		if o.OrderNumber == draft.OrderNumber {
			return fmt.Errorf("%w: order number %s", store.ErrConflict, draft.OrderNumber)
		}
	}
	return nil
}

func (s *Store) insertOrderLocked(draft *model.Order) *model.Order {
	o := draft.Clone()
	o.ID = s.allocate("order")
	o.CreatedAt = s.now()
	o.UpdatedAt = o.CreatedAt
	s.orders[o.ID] = &o

	out := o.Clone()
	return &out
}

// UpdateOrder merges patch into the order.
func (s *Store) UpdateOrder(_ context.Context, id uint, patch model.OrderPatch) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	patch.Apply(o)
	o.UpdatedAt = s.now()

	out := o.Clone()
	return &out, nil
}

// TransitionOrder merges patch only if the order is still in status expected.
func (s *Store) TransitionOrder(_ context.Context, id uint, expected model.OrderStatus, patch model.OrderPatch) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if o.Status != expected {
		return nil, fmt.Errorf("%w: order %d is %s, expected %s", store.ErrStaleStatus, id, o.Status, expected)
	}
	patch.Apply(o)
	o.UpdatedAt = s.now()

	out := o.Clone()
	return &out, nil
}
