package affiliate

import "github.com/shopspring/decimal"

// DefaultCommissionRate is the referrer's share of a reservation's final price.
const DefaultCommissionRate = 0.10

var (
	thousand = decimal.NewFromInt(1000)
	hundred  = decimal.NewFromInt(100)
)

// CalculateCommission returns price*rate rounded half away from zero to 2 decimals.
func CalculateCommission(price, rate float64) float64 {
	c, _ := decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(rate)).Round(2).Float64()
	return c
}

// CalculateLoyaltyPoints awards one point per 1000 currency units spent.
func CalculateLoyaltyPoints(amount float64) int {
	if amount <= 0 {
		return 0
	}
	return int(decimal.NewFromFloat(amount).Div(thousand).Floor().IntPart())
}

// ReferralPoints awards a referrer one point per 100 units of commission.
func ReferralPoints(commission float64) int {
	if commission <= 0 {
		return 0
	}
	return int(decimal.NewFromFloat(commission).Div(hundred).Floor().IntPart())
}
