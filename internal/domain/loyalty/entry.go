package loyalty

import "time"

// EntryKind discriminates the history record variants: signed point
// movements, cash transactions, and coupon usage.
type EntryKind string

const (
	EntryPoints EntryKind = "points"
	EntryCash   EntryKind = "cash"
	EntryCoupon EntryKind = "coupon"
)

// Entry is one append-only history record. Only the field matching Kind is
// meaningful besides Timestamp and Description.
type Entry struct {
	Kind        EntryKind `json:"kind"`
	Points      int64     `json:"points,omitempty"`
	Amount      float64   `json:"amount,omitempty"`
	CouponCode  string    `json:"coupon_code,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

func PointsEntry(points int64, at time.Time, description string) Entry {
	return Entry{Kind: EntryPoints, Points: points, Timestamp: at, Description: description}
}

func CashEntry(amount float64, at time.Time, description string) Entry {
	return Entry{Kind: EntryCash, Amount: amount, Timestamp: at, Description: description}
}

func CouponEntry(couponCode string, at time.Time, description string) Entry {
	return Entry{Kind: EntryCoupon, CouponCode: couponCode, Timestamp: at, Description: description}
}
