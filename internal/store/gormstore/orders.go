package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/internal/store"
	"gorm.io/gorm"
)

// GetOrder returns an order by id.
func (s *Store) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	var o model.Order
	if err := s.view(ctx, "get_order", func(db *gorm.DB) error {
		return db.First(&o, id).Error
	}); err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrderByNumber returns the order with the given number.
func (s *Store) GetOrderByNumber(ctx context.Context, number string) (*model.Order, error) {
	var o model.Order
	if err := s.view(ctx, "get_order_by_number", func(db *gorm.DB) error {
		return db.Where("order_number = ?", number).First(&o).Error
	}); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders returns every order.
func (s *Store) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.listOrders(ctx, "list_orders", "")
}

// ListOrdersByHotel returns the orders placed from a hotel.
func (s *Store) ListOrdersByHotel(ctx context.Context, hotelID uint) ([]model.Order, error) {
	return s.listOrders(ctx, "list_orders_by_hotel", "hotel_id = ?", hotelID)
}

// ListOrdersByMerchant returns the orders addressed to a merchant.
func (s *Store) ListOrdersByMerchant(ctx context.Context, merchantID uint) ([]model.Order, error) {
	return s.listOrders(ctx, "list_orders_by_merchant", "merchant_id = ?", merchantID)
}

// ListOrdersByClient returns the orders of a client account.
func (s *Store) ListOrdersByClient(ctx context.Context, clientID uint) ([]model.Order, error) {
	return s.listOrders(ctx, "list_orders_by_client", "client_id = ?", clientID)
}

func (s *Store) listOrders(ctx context.Context, op, query string, args ...any) ([]model.Order, error) {
	var orders []model.Order
	if err := s.view(ctx, op, func(db *gorm.DB) error {
		if query != "" {
			db = db.Where(query, args...)
		}
		return db.Order("id").Find(&orders).Error
	}); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder inserts an order without touching stock.
func (s *Store) CreateOrder(ctx context.Context, draft *model.Order) (*model.Order, error) {
	o := s.prepareOrder(draft)
	if err := s.write(ctx, "create_order", func(tx *gorm.DB) error {
		if err := checkOrder(tx, &o); err != nil {
			return err
		}
		return tx.Create(&o).Error
	}); err != nil {
		return nil, err
	}
	return &o, nil
}

// PlaceOrder decrements stock with one conditional UPDATE per product and
// inserts the order in the same transaction. A line that matches no row
// rolls the whole transaction back.
func (s *Store) PlaceOrder(ctx context.Context, draft *model.Order, lines []store.StockLine) (*model.Order, error) {
	o := s.prepareOrder(draft)
	merged := store.MergeLines(lines)
	for _, line := range merged {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for product %d must be positive", store.ErrInvalidInput, line.ProductID)
		}
	}

	if err := s.write(ctx, "place_order", func(tx *gorm.DB) error {
		if err := checkOrder(tx, &o); err != nil {
			return err
		}
		for _, line := range merged {
			res := tx.Model(&model.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				Updates(map[string]any{
					"stock":      gorm.Expr("stock - ?", line.Quantity),
					"updated_at": o.CreatedAt,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return shortfall(tx, line)
			}
		}
		return tx.Create(&o).Error
	}); err != nil {
		return nil, err
	}
	return &o, nil
}

// shortfall explains a conditional decrement that matched no row.
func shortfall(tx *gorm.DB, line store.StockLine) error {
	var p model.Product
	if err := tx.First(&p, line.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", store.ErrInvalidReference, line.ProductID)
		}
		return err
	}
	return &store.InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Available:   p.Stock,
		Requested:   line.Quantity,
	}
}

func (s *Store) prepareOrder(draft *model.Order) model.Order {
	o := draft.Clone()
	o.ID = 0
	o.CreatedAt = s.now()
	o.UpdatedAt = o.CreatedAt
	return o
}

func checkOrder(tx *gorm.DB, o *model.Order) error {
	if o.OrderNumber == "" {
		return fmt.Errorf("%w: order number is required", store.ErrInvalidInput)
	}
	if err := mustExist(tx, &model.Hotel{}, "hotel", o.HotelID); err != nil {
		return err
	}
	if err := mustExist(tx, &model.Merchant{}, "merchant", o.MerchantID); err != nil {
		return err
	}
	if o.ClientID != nil {
		if err := mustExist(tx, &model.Client{}, "client", *o.ClientID); err != nil {
			return err
		}
	}
	for _, item := range o.Items {
		if err := mustExist(tx, &model.Product{}, "product", item.ProductID); err != nil {
			return err
		}
	}
	dup, err := taken(tx, &model.Order{}, "order_number = ?", o.OrderNumber)
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("%w: order number %s", store.ErrConflict, o.OrderNumber)
	}
	return nil
}

// UpdateOrder merges patch into the order.
func (s *Store) UpdateOrder(ctx context.Context, id uint, patch model.OrderPatch) (*model.Order, error) {
	var o model.Order
	if err := s.write(ctx, "update_order", func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&o, id).Error; err != nil {
			return err
		}
		patch.Apply(&o)
		o.UpdatedAt = s.now()
		return tx.Model(&o).Select("*").Updates(&o).Error
	}); err != nil {
		return nil, err
	}
	return &o, nil
}

// TransitionOrder writes patch with a status-guarded UPDATE. Zero affected
// rows means another writer moved the order first.
func (s *Store) TransitionOrder(ctx context.Context, id uint, expected model.OrderStatus, patch model.OrderPatch) (*model.Order, error) {
	var o model.Order
	if err := s.write(ctx, "transition_order", func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&o, id).Error; err != nil {
			return err
		}
		if o.Status != expected {
			return fmt.Errorf("%w: order %d is %s, expected %s", store.ErrStaleStatus, id, o.Status, expected)
		}
		patch.Apply(&o)
		o.UpdatedAt = s.now()

		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", id, expected).
			Select("*").Omit("id", "created_at").
			Updates(&o)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d left %s", store.ErrStaleStatus, id, expected)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &o, nil
}
