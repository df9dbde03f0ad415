// Package geo answers distance questions between hotels and merchants.
package geo

import (
	"cmp"
	"context"
	"errors"
	"math"
	"slices"

	"github.com/bahriwassim/zishop1-sub000/internal/model"
	"github.com/bahriwassim/zishop1-sub000/internal/store"
	"github.com/shopspring/decimal"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// DefaultRadiusKm applies when a query gives no positive radius.
const DefaultRadiusKm = 3.0

// Point is a coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// PointOf converts stored decimal coordinates.
func PointOf(lat, lng decimal.Decimal) Point {
	return Point{Lat: lat.InexactFloat64(), Lng: lng.InexactFloat64()}
}

// Distance returns the great-circle distance in kilometers (Haversine).
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Source is the part of the store the nearby query reads.
type Source interface {
	GetHotel(ctx context.Context, id uint) (*model.Hotel, error)
	GetMerchant(ctx context.Context, id uint) (*model.Merchant, error)
	ListMerchants(ctx context.Context) ([]model.Merchant, error)
	ListHotelMerchantsByHotel(ctx context.Context, hotelID uint) ([]model.HotelMerchant, error)
}

// NearbyMerchant is a merchant with its distance from the queried hotel.
type NearbyMerchant struct {
	model.Merchant
	DistanceKm float64 `json:"distance_km"`
}

// NearbyMerchants returns the active merchants within radiusKm of the hotel,
// closest first, ties broken by merchant id. The candidates are the hotel's
// actively associated merchants, or every merchant when it has none. An
// unknown hotel yields an empty list.
func NearbyMerchants(ctx context.Context, src Source, hotelID uint, radiusKm float64) ([]NearbyMerchant, error) {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}

	hotel, err := src.GetHotel(ctx, hotelID)
	if errors.Is(err, store.ErrNotFound) {
		return []NearbyMerchant{}, nil
	}
	if err != nil {
		return nil, err
	}

	candidates, err := candidates(ctx, src, hotelID)
	if err != nil {
		return nil, err
	}

	origin := PointOf(hotel.Latitude, hotel.Longitude)
	nearby := make([]NearbyMerchant, 0, len(candidates))
	for _, m := range candidates {
		if !m.IsActive {
			continue
		}
		d := Distance(origin, PointOf(m.Latitude, m.Longitude))
		if d <= radiusKm {
			nearby = append(nearby, NearbyMerchant{Merchant: m, DistanceKm: d})
		}
	}

	slices.SortFunc(nearby, func(a, b NearbyMerchant) int {
		if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return nearby, nil
}

func candidates(ctx context.Context, src Source, hotelID uint) ([]model.Merchant, error) {
	links, err := src.ListHotelMerchantsByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return src.ListMerchants(ctx)
	}

	merchants := make([]model.Merchant, 0, len(links))
	for _, link := range links {
		m, err := src.GetMerchant(ctx, link.MerchantID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		merchants = append(merchants, *m)
	}
	return merchants, nil
}
