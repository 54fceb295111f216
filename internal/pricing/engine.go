package pricing

import "errors"

// Money represents a monetary value stored in minor units.
type Money = int64

// ErrQuantityOutOfRange is returned when a quantity falls outside the sellable
// range. Callers are expected to reject such items before asking for a
// discount; the engine never clamps.
var ErrQuantityOutOfRange = errors.New("pricing: quantity out of range")

// Sellable quantity bounds for a single line item.
const (
	MinQuantity = 1
	MaxQuantity = 20
)

// Discount tiers expressed in basis points.
const (
	tierNoneBps  int32 = 0
	tierSmallBps int32 = 1000
	tierBulkBps  int32 = 2000
)

// DiscountBps maps a line-item quantity to its discount in basis points:
// fewer than 4 units earn no discount, 4 through 9 earn 10%, 10 through 20
// earn 20%.
func DiscountBps(qty int) (int32, error) {
	if qty < MinQuantity || qty > MaxQuantity {
		return 0, ErrQuantityOutOfRange
	}
	switch {
	case qty < 4:
		return tierNoneBps, nil
	case qty < 10:
		return tierSmallBps, nil
	default:
		return tierBulkBps, nil
	}
}

// LineDiscount computes the discount amount for a line total at the given rate.
func LineDiscount(total Money, bps int32) Money {
	if total <= 0 || bps <= 0 {
		return 0
	}
	return total * Money(bps) / 10000
}

// Apply deducts the given rate from amount and returns the remainder.
func Apply(amount Money, bps int32) Money {
	return amount - LineDiscount(amount, bps)
}
