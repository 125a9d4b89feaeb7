// Package money converts between rupee amounts on the wire and the integer
// paise stored in the database.
package money

import (
	"math"
	"strconv"
)

// PaisePerRupee is the number of minor units in one rupee.
const PaisePerRupee = 100

// FromRupees converts a rupee amount to paise, rounding half away from zero.
func FromRupees(rupees float64) int64 {
	return int64(math.Round(rupees * PaisePerRupee))
}

// ToRupees converts paise to a rupee amount.
func ToRupees(paise int64) float64 {
	return float64(paise) / PaisePerRupee
}

// Format renders paise as a rupee string, e.g. "₹239.20". Whole amounts drop the decimals.
func Format(paise int64) string {
	if paise%PaisePerRupee == 0 {
		return "₹" + strconv.FormatInt(paise/PaisePerRupee, 10)
	}
	return "₹" + strconv.FormatFloat(ToRupees(paise), 'f', 2, 64)
}

// Percent returns pct percent of paise, rounded to the nearest paisa.
func Percent(paise int64, pct int64) int64 {
	return int64(math.Round(float64(paise) * float64(pct) / 100))
}
