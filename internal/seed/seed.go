// Package seed loads a small demo catalog into an empty store.
package seed

import (
	"context"
	"fmt"

	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/internal/store"
	"github.com/bahriwassim/zishop1-sub000/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultPassword is the password of every demo staff account.
const DefaultPassword = "zishop-demo"

type demoProduct struct {
	name     string
	category string
	price    string
	stock    int
	souvenir bool
}

type demoMerchant struct {
	name     string
	category string
	lat, lng string
	products []demoProduct
}

var hotels = []model.Hotel{
	{Name: "Hotel Lumiere", Address: "12 Rue de Rivoli, Paris", Code: "LUM01",
		Latitude: decimal.RequireFromString("48.8566"), Longitude: decimal.RequireFromString("2.3522"), IsActive: true},
	{Name: "Grand Hotel Opera", Address: "2 Place de l'Opera, Paris", Code: "OPE02",
		Latitude: decimal.RequireFromString("48.8708"), Longitude: decimal.RequireFromString("2.3317"), IsActive: true},
}

var merchants = []demoMerchant{
	{name: "Boulangerie du Marais", category: "bakery", lat: "48.8590", lng: "2.3580", products: []demoProduct{
		{name: "Croissant", category: "pastry", price: "2.50", stock: 40},
		{name: "Pain au chocolat", category: "pastry", price: "2.80", stock: 30},
	}},
	{name: "Souvenirs de Paris", category: "souvenirs", lat: "48.8610", lng: "2.3470", products: []demoProduct{
		{name: "Tour Eiffel miniature", category: "decor", price: "12.00", stock: 15, souvenir: true},
		{name: "Carte postale", category: "stationery", price: "1.50", stock: 100, souvenir: true},
	}},
	{name: "Pharmacie Opera", category: "pharmacy", lat: "48.8700", lng: "2.3330", products: []demoProduct{
		{name: "Brosse a dents", category: "hygiene", price: "3.90", stock: 25},
	}},
}

// Load fills s with demo hotels, merchants, products, associations and staff
// accounts. It does nothing when s already holds a hotel.
func Load(ctx context.Context, s store.Store) error {
	log := logger.FromContext(ctx)

	existing, err := s.ListHotels(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect store: %w", err)
	}
	if len(existing) > 0 {
		log.Info("Store already populated, skipping demo data", zap.Int("hotels", len(existing)))
		return nil
	}

	var hotelIDs []uint
	for _, draft := range hotels {
		h, err := s.CreateHotel(ctx, &draft)
		if err != nil {
			return fmt.Errorf("failed to create hotel %s: %w", draft.Code, err)
		}
		hotelIDs = append(hotelIDs, h.ID)
	}

	var merchantIDs []uint
	for _, dm := range merchants {
		m, err := s.CreateMerchant(ctx, &model.Merchant{
			Name:      dm.name,
			Category:  dm.category,
			Latitude:  decimal.RequireFromString(dm.lat),
			Longitude: decimal.RequireFromString(dm.lng),
			IsOpen:    true,
			IsActive:  true,
		})
		if err != nil {
			return fmt.Errorf("failed to create merchant %s: %w", dm.name, err)
		}
		merchantIDs = append(merchantIDs, m.ID)

		for _, dp := range dm.products {
			if _, err := s.CreateProduct(ctx, &model.Product{
				MerchantID:       m.ID,
				Name:             dp.name,
				Category:         dp.category,
				Price:            decimal.RequireFromString(dp.price),
				Stock:            dp.stock,
				IsAvailable:      true,
				IsSouvenir:       dp.souvenir,
				ValidationStatus: model.ValidationApproved,
			}); err != nil {
				return fmt.Errorf("failed to create product %s: %w", dp.name, err)
			}
		}
	}

	// The first hotel gets every merchant; the second only the pharmacy.
	for _, mid := range merchantIDs {
		if _, err := s.CreateHotelMerchant(ctx, hotelIDs[0], mid); err != nil {
			return fmt.Errorf("failed to link merchant %d: %w", mid, err)
		}
	}
	if _, err := s.CreateHotelMerchant(ctx, hotelIDs[1], merchantIDs[len(merchantIDs)-1]); err != nil {
		return fmt.Errorf("failed to link merchant %d: %w", merchantIDs[len(merchantIDs)-1], err)
	}

	staff := []model.User{
		{Username: "admin", Role: model.RoleAdmin},
		{Username: "hotel-lumiere", Role: model.RoleHotel, HotelID: &hotelIDs[0]},
		{Username: "boulangerie", Role: model.RoleMerchant, MerchantID: &merchantIDs[0]},
	}
	for i := range staff {
		staff[i].Password = DefaultPassword
		if _, err := s.CreateUser(ctx, &staff[i]); err != nil {
			return fmt.Errorf("failed to create user %s: %w", staff[i].Username, err)
		}
	}

	log.Info("Demo data loaded",
		zap.Int("hotels", len(hotelIDs)),
		zap.Int("merchants", len(merchantIDs)),
		zap.Int("users", len(staff)))
	return nil
}
