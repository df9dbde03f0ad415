package memory

import (
	"context"
	"fmt"

	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/internal/store"
)

// GetHotel returns a hotel by id.
func (s *Store) GetHotel(_ context.Context, id uint) (*model.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.hotels[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *h
	return &out, nil
}

// GetHotelByCode returns the hotel with the given public code.
func (s *Store) GetHotelByCode(_ context.Context, code string) (*model.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, h := range s.hotels {
		if h.Code == code {
			out := *h
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

// ListHotels returns every hotel.
func (s *Store) ListHotels(_ context.Context) ([]model.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.hotels, nil), nil
}

// CreateHotel stores a new hotel; the code must be unique.
func (s *Store) CreateHotel(_ context.Context, draft *model.Hotel) (*model.Hotel, error) {
	if draft.Name == "" || draft.Code == "" {
		return nil, fmt.Errorf("%w: hotel name and code are required", store.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.hotels {
		if h.Code == draft.Code {
			return nil, fmt.Errorf("%w: hotel code %s", store.ErrConflict, draft.Code)
		}
	}

	h := *draft
	h.ID = s.allocate("hotel")
	h.CreatedAt = s.now()
	h.UpdatedAt = h.CreatedAt
	s.hotels[h.ID] = &h

	out := h
	return &out, nil
}

// UpdateHotel merges patch into the hotel.
func (s *Store) UpdateHotel(_ context.Context, id uint, patch model.HotelPatch) (*model.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hotels[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	patch.Apply(h)
	h.UpdatedAt = s.now()

	out := *h
	return &out, nil
}

// GetMerchant returns a merchant by id.
func (s *Store) GetMerchant(_ context.Context, id uint) (*model.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.merchants[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *m
	return &out, nil
}

// ListMerchants returns every merchant.
func (s *Store) ListMerchants(_ context.Context) ([]model.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.merchants, nil), nil
}

// CreateMerchant stores a new merchant.
func (s *Store) CreateMerchant(_ context.Context, draft *model.Merchant) (*model.Merchant, error) {
	if draft.Name == "" {
		return nil, fmt.Errorf("%w: merchant name is required", store.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := *draft
	m.ID = s.allocate("merchant")
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt
	s.merchants[m.ID] = &m

	out := m
	return &out, nil
}

// UpdateMerchant merges patch into the merchant.
func (s *Store) UpdateMerchant(_ context.Context, id uint, patch model.MerchantPatch) (*model.Merchant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.merchants[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	patch.Apply(m)
	m.UpdatedAt = s.now()

	out := *m
	return &out, nil
}

// GetProduct returns a product by id.
func (s *Store) GetProduct(_ context.Context, id uint) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *p
	return &out, nil
}

// ListProducts returns every product.
func (s *Store) ListProducts(_ context.Context) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.products, nil), nil
}

// ListProductsByMerchant returns the products of one merchant.
func (s *Store) ListProductsByMerchant(_ context.Context, merchantID uint) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.products, func(p *model.Product) bool { return p.MerchantID == merchantID }), nil
}

// CreateProduct stores a new product, pending validation unless stated.
func (s *Store) CreateProduct(_ context.Context, draft *model.Product) (*model.Product, error) {
	if draft.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", store.ErrInvalidInput)
	}
	if draft.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must be non-negative", store.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.merchants[draft.MerchantID]; !ok {
		return nil, fmt.Errorf("%w: merchant %d", store.ErrInvalidReference, draft.MerchantID)
	}
	if draft.ValidatedBy != nil {
		if _, ok := s.users[*draft.ValidatedBy]; !ok {
			return nil, fmt.Errorf("%w: user %d", store.ErrInvalidReference, *draft.ValidatedBy)
		}
	}

	p := *draft
	if p.ValidationStatus == "" {
		p.ValidationStatus = model.ValidationPending
	}
	p.ID = s.allocate("product")
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.products[p.ID] = &p

	out := p
	return &out, nil
}

// UpdateProduct merges patch into the product.
func (s *Store) UpdateProduct(_ context.Context, id uint, patch model.ProductPatch) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.ValidatedBy != nil {
		if _, ok := s.users[*patch.ValidatedBy]; !ok {
			return nil, fmt.Errorf("%w: user %d", store.ErrInvalidReference, *patch.ValidatedBy)
		}
	}
	patch.Apply(p)
	p.UpdatedAt = s.now()

	out := *p
	return &out, nil
}

// RestockProduct adds quantity to the product's stock.
func (s *Store) RestockProduct(_ context.Context, id uint, quantity int) (*model.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: restock quantity must be positive", store.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Stock += quantity
	p.UpdatedAt = s.now()

	out := *p
	return &out, nil
}

// GetHotelMerchant returns an association by id.
func (s *Store) GetHotelMerchant(_ context.Context, id uint) (*model.HotelMerchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.associations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *a
	return &out, nil
}

// ListHotelMerchants returns every association, active or not.
func (s *Store) ListHotelMerchants(_ context.Context) ([]model.HotelMerchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.associations, nil), nil
}

// ListHotelMerchantsByHotel returns the active associations of a hotel.
func (s *Store) ListHotelMerchantsByHotel(_ context.Context, hotelID uint) ([]model.HotelMerchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.associations, func(a *model.HotelMerchant) bool {
		return a.HotelID == hotelID && a.IsActive
	}), nil
}

// ListHotelMerchantsByMerchant returns the active associations of a merchant.
func (s *Store) ListHotelMerchantsByMerchant(_ context.Context, merchantID uint) ([]model.HotelMerchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return values(s.associations, func(a *model.HotelMerchant) bool {
		return a.MerchantID == merchantID && a.IsActive
	}), nil
}

// CreateHotelMerchant links a merchant to a hotel as an active association.
func (s *Store) CreateHotelMerchant(_ context.Context, hotelID, merchantID uint) (*model.HotelMerchant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hotels[hotelID]; !ok {
		return nil, fmt.Errorf("%w: hotel %d", store.ErrInvalidReference, hotelID)
	}
	if _, ok := s.merchants[merchantID]; !ok {
		return nil, fmt.Errorf("%w: merchant %d", store.ErrInvalidReference, merchantID)
	}
	for _, a := range s.associations {
		if a.HotelID == hotelID && a.MerchantID == merchantID {
			return nil, fmt.Errorf("%w: hotel %d already linked to merchant %d", store.ErrConflict, hotelID, merchantID)
		}
	}

	now := s.now()
	a := &model.HotelMerchant{
		ID:         s.allocate("hotel_merchant"),
		HotelID:    hotelID,
		MerchantID: merchantID,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.associations[a.ID] = a

	out := *a
	return &out, nil
}

// UpdateHotelMerchant merges patch into the association.
func (s *Store) UpdateHotelMerchant(_ context.Context, id uint, patch model.HotelMerchantPatch) (*model.HotelMerchant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.associations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	patch.Apply(a)
	a.UpdatedAt = s.now()

	out := *a
	return &out, nil
}

// DeleteHotelMerchant removes an association.
func (s *Store) DeleteHotelMerchant(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.associations[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.associations, id)
	return nil
}
