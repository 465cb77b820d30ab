// Package pricing resolves the monthly charge for one student in one
// class. Pure; callers load the override set up front.
package pricing

import (
	"github.com/bwmarrin/snowflake"

	classdomain "github.com/Yassinesbr/support-center/internal/class/domain"
)

// Overrides maps classID to the pinned per-student price in cents.
type Overrides map[snowflake.ID]int64

// Resolve picks the item price in priority order: per-student override,
// then FIXED_TOTAL (charged whole to each student, not divided by
// headcount), then PER_STUDENT. Missing price fields resolve to 0 so
// generation never hard-fails on an unpriced class.
func Resolve(class classdomain.Class, overrides Overrides) int64 {
	if price, ok := overrides[class.ID]; ok {
		return price
	}
	if class.PricingMode == classdomain.PricingModeFixedTotal {
		return valueOrZero(class.FixedMonthlyPriceCents)
	}
	return valueOrZero(class.MonthlyPriceCents)
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
