// Package commission splits an order total between merchant, operator and hotel.
package commission

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rates are the fractions of an order total paid to each party.
type Rates struct {
	Merchant decimal.Decimal `json:"merchant"`
	Operator decimal.Decimal `json:"operator"`
	Hotel    decimal.Decimal `json:"hotel"`
}

// DefaultRates is the 75/20/5 marketplace split.
var DefaultRates = Rates{
	Merchant: decimal.RequireFromString("0.75"),
	Operator: decimal.RequireFromString("0.20"),
	Hotel:    decimal.RequireFromString("0.05"),
}

// Split holds the commission amounts of one order.
type Split struct {
	Merchant decimal.Decimal `json:"merchant"`
	Operator decimal.Decimal `json:"operator"`
	Hotel    decimal.Decimal `json:"hotel"`
}

// Validate checks that no rate is negative and that the rates sum to exactly 1.
func (r Rates) Validate() error {
	for name, rate := range map[string]decimal.Decimal{"merchant": r.Merchant, "operator": r.Operator, "hotel": r.Hotel} {
		if rate.IsNegative() {
			return fmt.Errorf("%s rate must not be negative, got %s", name, rate)
		}
	}
	sum := r.Merchant.Add(r.Operator).Add(r.Hotel)
	if !sum.Equal(decimal.NewFromInt(1)) {
		return fmt.Errorf("commission rates must sum to 1, got %s", sum)
	}
	return nil
}

// Calculate applies the rates to total. Each part is rounded to cents on its
// own, so the parts may drift from total by up to one cent each.
func (r Rates) Calculate(total decimal.Decimal) Split {
	return Split{
		Merchant: total.Mul(r.Merchant).Round(2),
		Operator: total.Mul(r.Operator).Round(2),
		Hotel:    total.Mul(r.Hotel).Round(2),
	}
}

// Percentages returns the rates as whole percentages for display.
func (r Rates) Percentages() map[string]int64 {
	hundred := decimal.NewFromInt(100)
	return map[string]int64{
		"merchant": r.Merchant.Mul(hundred).Round(0).IntPart(),
		"operator": r.Operator.Mul(hundred).Round(0).IntPart(),
		"hotel":    r.Hotel.Mul(hundred).Round(0).IntPart(),
	}
}
