// Package store defines the persistence contract shared by the in-memory and
// relational backends. Absent records are reported with ErrNotFound; backend
// failures are wrapped in *BackendError.
package store

import (
	"context"

	"github.com/bahriwassim/zishop1-sub000/internal/model"
)

// StockLine is a quantity to take from one product's stock.
type StockLine struct {
	ProductID uint
	Quantity  int
}

// Hotels persists hotels.
type Hotels interface {
	GetHotel(ctx context.Context, id uint) (*model.Hotel, error)
	GetHotelByCode(ctx context.Context, code string) (*model.Hotel, error)
	ListHotels(ctx context.Context) ([]model.Hotel, error)
	CreateHotel(ctx context.Context, draft *model.Hotel) (*model.Hotel, error)
	UpdateHotel(ctx context.Context, id uint, patch model.HotelPatch) (*model.Hotel, error)
}

// Merchants persists merchants.
type Merchants interface {
	GetMerchant(ctx context.Context, id uint) (*model.Merchant, error)
	ListMerchants(ctx context.Context) ([]model.Merchant, error)
	CreateMerchant(ctx context.Context, draft *model.Merchant) (*model.Merchant, error)
	UpdateMerchant(ctx context.Context, id uint, patch model.MerchantPatch) (*model.Merchant, error)
}

// Products persists products and their stock.
type Products interface {
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListProductsByMerchant(ctx context.Context, merchantID uint) ([]model.Product, error)
	CreateProduct(ctx context.Context, draft *model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, patch model.ProductPatch) (*model.Product, error)
	// RestockProduct atomically adds quantity to the product's stock.
	RestockProduct(ctx context.Context, id uint, quantity int) (*model.Product, error)
}

// Orders persists orders.
type Orders interface {
	GetOrder(ctx context.Context, id uint) (*model.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	ListOrdersByHotel(ctx context.Context, hotelID uint) ([]model.Order, error)
	ListOrdersByMerchant(ctx context.Context, merchantID uint) ([]model.Order, error)
	ListOrdersByClient(ctx context.Context, clientID uint) ([]model.Order, error)
	// CreateOrder inserts an order without touching stock.
	CreateOrder(ctx context.Context, draft *model.Order) (*model.Order, error)
	// PlaceOrder decrements stock for every line and inserts the order as one
	// unit. If any line lacks stock nothing is written and an
	// *InsufficientStockError is returned.
	PlaceOrder(ctx context.Context, draft *model.Order, lines []StockLine) (*model.Order, error)
	UpdateOrder(ctx context.Context, id uint, patch model.OrderPatch) (*model.Order, error)
	// TransitionOrder applies patch only while the stored status equals
	// expected, returning ErrStaleStatus otherwise.
	TransitionOrder(ctx context.Context, id uint, expected model.OrderStatus, patch model.OrderPatch) (*model.Order, error)
}

// Clients persists guest accounts.
type Clients interface {
	GetClient(ctx context.Context, id uint) (*model.Client, error)
	GetClientByEmail(ctx context.Context, email string) (*model.Client, error)
	ListClients(ctx context.Context) ([]model.Client, error)
	// CreateClient hashes draft.Password before storing it.
	CreateClient(ctx context.Context, draft *model.Client) (*model.Client, error)
	UpdateClient(ctx context.Context, id uint, patch model.ClientPatch) (*model.Client, error)
	AuthenticateClient(ctx context.Context, email, secret string) (*model.Client, error)
}

// Users persists staff accounts.
type Users interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	// CreateUser hashes draft.Password before storing it.
	CreateUser(ctx context.Context, draft *model.User) (*model.User, error)
	UpdateUser(ctx context.Context, id uint, patch model.UserPatch) (*model.User, error)
	AuthenticateUser(ctx context.Context, username, secret string) (*model.User, error)
}

// Associations persists hotel-merchant links.
type Associations interface {
	GetHotelMerchant(ctx context.Context, id uint) (*model.HotelMerchant, error)
	ListHotelMerchants(ctx context.Context) ([]model.HotelMerchant, error)
	// ListHotelMerchantsByHotel returns the active links of a hotel.
	ListHotelMerchantsByHotel(ctx context.Context, hotelID uint) ([]model.HotelMerchant, error)
	// ListHotelMerchantsByMerchant returns the active links of a merchant.
	ListHotelMerchantsByMerchant(ctx context.Context, merchantID uint) ([]model.HotelMerchant, error)
	CreateHotelMerchant(ctx context.Context, hotelID, merchantID uint) (*model.HotelMerchant, error)
	UpdateHotelMerchant(ctx context.Context, id uint, patch model.HotelMerchantPatch) (*model.HotelMerchant, error)
	DeleteHotelMerchant(ctx context.Context, id uint) error
}

// Store is the full persistence contract.
type Store interface {
	Hotels
	Merchants
	Products
	Orders
	Clients
	Users
	Associations
}
