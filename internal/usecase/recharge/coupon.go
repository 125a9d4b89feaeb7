package recharge

import (
	"strings"

	apperrors "recharge-service/pkg/errors"
	"recharge-service/pkg/money"
)

// Coupon is a discount rule applied to a plan price.
type Coupon struct {
	Code        string
	Description string
	Percent     int64 // percentage off, or 0
	Flat        int64 // paise off, or 0
	MinAmount   int64 // minimum price in paise for the coupon to apply
}

// Coupons lists the codes accepted at checkout.
var Coupons = []Coupon{
	{Code: "SAVE20", Description: "20% discount", Percent: 20},
	{Code: "FLAT50", Description: "Flat ₹50 off on orders above ₹200", Flat: 50 * money.PaisePerRupee, MinAmount: 200 * money.PaisePerRupee},
}

// LookupCoupon finds a coupon by code, ignoring case and surrounding space.
func LookupCoupon(code string) (Coupon, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range Coupons {
		if c.Code == code {
			return c, true
		}
	}
	return Coupon{}, false
}

// Apply returns the discounted price. A coupon whose minimum is not met
// leaves the price unchanged.
func (c Coupon) Apply(price int64) int64 {
	if price < c.MinAmount {
		return price
	}
	final := price
	if c.Percent > 0 {
		final -= money.Percent(price, c.Percent)
	}
	final -= c.Flat
	if final < 0 {
		final = 0
	}
	return final
}

// ApplyCoupon returns the price after code, the normalized code, and a
// validation error for unknown codes. An empty code is no discount.
func ApplyCoupon(price int64, code string) (int64, string, error) {
	if strings.TrimSpace(code) == "" {
		return price, "", nil
	}
	c, ok := LookupCoupon(code)
	if !ok {
		return 0, "", apperrors.NewValidationError("coupon", "invalid coupon code")
	}
	return c.Apply(price), c.Code, nil
}
