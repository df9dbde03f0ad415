package gormstore

import (
	"context"
	"fmt"

	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/internal/store"
	"gorm.io/gorm"
)

// GetHotel returns a hotel by id.
func (s *Store) GetHotel(ctx context.Context, id uint) (*model.Hotel, error) {
	var h model.Hotel
	if err := s.view(ctx, "get_hotel", func(db *gorm.DB) error {
		return db.First(&h, id).Error
	}); err != nil {
		return nil, err
	}
	return &h, nil
}

// GetHotelByCode returns the hotel with the given public code.
func (s *Store) GetHotelByCode(ctx context.Context, code string) (*model.Hotel, error) {
	var h model.Hotel
	if err := s.view(ctx, "get_hotel_by_code", func(db *gorm.DB) error {
		return db.Where("code = ?", code).First(&h).Error
	}); err != nil {
		return nil, err
	}
	return &h, nil
}

// ListHotels returns every hotel.
func (s *Store) ListHotels(ctx context.Context) ([]model.Hotel, error) {
	var hotels []model.Hotel
	if err := s.view(ctx, "list_hotels", func(db *gorm.DB) error {
		return db.Order("id").Find(&hotels).Error
	}); err != nil {
		return nil, err
	}
	return hotels, nil
}

// CreateHotel inserts a hotel; the code must be unique.
func (s *Store) CreateHotel(ctx context.Context, draft *model.Hotel) (*model.Hotel, error) {
	if draft.Name == "" || draft.Code == "" {
		return nil, fmt.Errorf("%w: hotel name and code are required", store.ErrInvalidInput)
	}

	h := *draft
	h.ID = 0
	h.CreatedAt = s.now()
	h.UpdatedAt = h.CreatedAt

	if err := s.write(ctx, "create_hotel", func(tx *gorm.DB) error {
		dup, err := taken(tx, &model.Hotel{}, "code = ?", h.Code)
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("%w: hotel code %s", store.ErrConflict, h.Code)
		}
		return tx.Create(&h).Error
	}); err != nil {
		return nil, err
	}
	return &h, nil
}

// UpdateHotel merges patch into the hotel.
func (s *Store) UpdateHotel(ctx context.Context, id uint, patch model.HotelPatch) (*model.Hotel, error) {
	var h model.Hotel
	if err := s.write(ctx, "update_hotel", func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&h, id).Error; err != nil {
			return err
		}
		patch.Apply(&h)
		h.UpdatedAt = s.now()
		return tx.Save(&h).Error
	}); err != nil {
		return nil, err
	}
	return &h, nil
}

// GetMerchant returns a merchant by id.
func (s *Store) GetMerchant(ctx context.Context, id uint) (*model.Merchant, error) {
	var m model.Merchant
	if err := s.view(ctx, "get_merchant", func(db *gorm.DB) error {
		return db.First(&m, id).Error
	}); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMerchants returns every merchant.
func (s *Store) ListMerchants(ctx context.Context) ([]model.Merchant, error) {
	var merchants []model.Merchant
	if err := s.view(ctx, "list_merchants", func(db *gorm.DB) error {
		return db.Order("id").Find(&merchants).Error
	}); err != nil {
		return nil, err
	}
	return merchants, nil
}

// CreateMerchant inserts a merchant.
func (s *Store) CreateMerchant(ctx context.Context, draft *model.Merchant) (*model.Merchant, error) {
	if draft.Name == "" {
		return nil, fmt.Errorf("%w: merchant name is required", store.ErrInvalidInput)
	}

	m := *draft
	m.ID = 0
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt

	if err := s.write(ctx, "create_merchant", func(tx *gorm.DB) error {
		return tx.Create(&m).Error
	}); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMerchant merges patch into the merchant.
func (s *Store) UpdateMerchant(ctx context.Context, id uint, patch model.MerchantPatch) (*model.Merchant, error) {
	var m model.Merchant
	if err := s.write(ctx, "update_merchant", func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&m, id).Error; err != nil {
			return err
		}
		patch.Apply(&m)
		m.UpdatedAt = s.now()
		return tx.Save(&m).Error
	}); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetProduct returns a product by id.
func (s *Store) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	var p model.Product
	if err := s.view(ctx, "get_product", func(db *gorm.DB) error {
		return db.First(&p, id).Error
	}); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts returns every product.
func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := s.view(ctx, "list_products", func(db *gorm.DB) error {
		return db.Order("id").Find(&products).Error
	}); err != nil {
		return nil, err
	}
	return products, nil
}

// ListProductsByMerchant returns the products of one merchant.
func (s *Store) ListProductsByMerchant(ctx context.Context, merchantID uint) ([]model.Product, error) {
	var products []model.Product
	if err := s.view(ctx, "list_products_by_merchant", func(db *gorm.DB) error {
		return db.Where("merchant_id = ?", merchantID).Order("id").Find(&products).Error
	}); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct inserts a product, pending validation unless stated.
func (s *Store) CreateProduct(ctx context.Context, draft *model.Product) (*model.Product, error) {
	if draft.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", store.ErrInvalidInput)
	}
	if draft.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must be non-negative", store.ErrInvalidInput)
	}

	p := *draft
	p.ID = 0
	if p.ValidationStatus == "" {
		p.ValidationStatus = model.ValidationPending
	}
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt

	if err := s.write(ctx, "create_product", func(tx *gorm.DB) error {
		if err := mustExist(tx, &model.Merchant{}, "merchant", p.MerchantID); err != nil {
			return err
		}
		if p.ValidatedBy != nil {
			if err := mustExist(tx, &model.User{}, "user", *p.ValidatedBy); err != nil {
				return err
			}
		}
		return tx.Create(&p).Error
	}); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct merges patch into the product. Stock is left to the
// conditional writes of PlaceOrder and RestockProduct.
func (s *Store) UpdateProduct(ctx context.Context, id uint, patch model.ProductPatch) (*model.Product, error) {
	var p model.Product
	if err := s.write(ctx, "update_product", func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&p, id).Error; err != nil {
			return err
		}
		if patch.ValidatedBy != nil {
			if err := mustExist(tx, &model.User{}, "user", *patch.ValidatedBy); err != nil {
				return err
			}
		}
		patch.Apply(&p)
		p.UpdatedAt = s.now()
		return tx.Model(&p).Omit("stock").Select("*").Updates(&p).Error
	}); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

// RestockProduct adds quantity to the product's stock in one statement.
func (s *Store) RestockProduct(ctx context.Context, id uint, quantity int) (*model.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: restock quantity must be positive", store.ErrInvalidInput)
	}

	var p model.Product
	if err := s.write(ctx, "restock_product", func(tx *gorm.DB) error {
		res := tx.Model(&model.Product{}).Where("id = ?", id).Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", quantity),
			"updated_at": s.now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return tx.First(&p, id).Error
	}); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetHotelMerchant returns an association by id.
func (s *Store) GetHotelMerchant(ctx context.Context, id uint) (*model.HotelMerchant, error) {
	var a model.HotelMerchant
	if err := s.view(ctx, "get_hotel_merchant", func(db *gorm.DB) error {
		return db.First(&a, id).Error
	}); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListHotelMerchants returns every association, active or not.
func (s *Store) ListHotelMerchants(ctx context.Context) ([]model.HotelMerchant, error) {
	var links []model.HotelMerchant
	if err := s.view(ctx, "list_hotel_merchants", func(db *gorm.DB) error {
		return db.Order("id").Find(&links).Error
	}); err != nil {
		return nil, err
	}
	return links, nil
}

// ListHotelMerchantsByHotel returns the active associations of a hotel.
func (s *Store) ListHotelMerchantsByHotel(ctx context.Context, hotelID uint) ([]model.HotelMerchant, error) {
	var links []model.HotelMerchant
	if err := s.view(ctx, "list_hotel_merchants_by_hotel", func(db *gorm.DB) error {
		return db.Where("hotel_id = ? AND is_active = ?", hotelID, true).Order("id").Find(&links).Error
	}); err != nil {
		return nil, err
	}
	return links, nil
}

// ListHotelMerchantsByMerchant returns the active associations of a merchant.
func (s *Store) ListHotelMerchantsByMerchant(ctx context.Context, merchantID uint) ([]model.HotelMerchant, error) {
	var links []model.HotelMerchant
	if err := s.view(ctx, "list_hotel_merchants_by_merchant", func(db *gorm.DB) error {
		return db.Where("merchant_id = ? AND is_active = ?", merchantID, true).Order("id").Find(&links).Error
	}); err != nil {
		return nil, err
	}
	return links, nil
}

// CreateHotelMerchant links a merchant to a hotel as an active association.
func (s *Store) CreateHotelMerchant(ctx context.Context, hotelID, merchantID uint) (*model.HotelMerchant, error) {
	now := s.now()
	a := model.HotelMerchant{
		HotelID:    hotelID,
		MerchantID: merchantID,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.write(ctx, "create_hotel_merchant", func(tx *gorm.DB) error {
		if err := mustExist(tx, &model.Hotel{}, "hotel", hotelID); err != nil {
			return err
		}
		if err := mustExist(tx, &model.Merchant{}, "merchant", merchantID); err != nil {
			return err
		}
		dup, err := taken(tx, &model.HotelMerchant{}, "hotel_id = ? AND merchant_id = ?", hotelID, merchantID)
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("%w: hotel %d already linked to merchant %d", store.ErrConflict, hotelID, merchantID)
		}
		return tx.Create(&a).Error
	}); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateHotelMerchant merges patch into the association.
func (s *Store) UpdateHotelMerchant(ctx context.Context, id uint, patch model.HotelMerchantPatch) (*model.HotelMerchant, error) {
	var a model.HotelMerchant
	if err := s.write(ctx, "update_hotel_merchant", func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&a, id).Error; err != nil {
			return err
		}
		patch.Apply(&a)
		a.UpdatedAt = s.now()
		return tx.Save(&a).Error
	}); err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteHotelMerchant removes an association.
func (s *Store) DeleteHotelMerchant(ctx context.Context, id uint) error {
	return s.write(ctx, "delete_hotel_merchant", func(tx *gorm.DB) error {
		res := tx.Delete(&model.HotelMerchant{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}
