package loyalty

import (
	"sort"
	"time"

	"payments-service/internal/pkg/errs"
)

const expiredPointsDescription = "Expired points"

var (
	ErrInvalidPointAmount = errs.New("point amount must be positive")
	ErrInsufficientPoints = errs.New("insufficient points")
)

// Lot is a batch of points sharing one expiration timestamp. Lots never hold
// non-positive amounts; zeroed and expired lots are pruned.
type Lot struct {
	ExpiresAt time.Time `json:"expires_at"`
	Points    int64     `json:"points"`
}

// Ledger is the per-user loyalty document: the active point lots plus the
// append-only transaction history.
type Ledger struct {
	UserID    string    `json:"user_id"`
	Lots      []Lot     `json:"lots"`
	History   []Entry   `json:"history"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewLedger(userID string, now time.Time) *Ledger {
	return &Ledger{
		UserID:    userID,
		Lots:      []Lot{},
		History:   []Entry{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Sweep moves lots whose expiration has passed out of the active balance,
// recording each as a negative history entry dated at that lot's own
// expiration so the audit trail reflects when the points actually lapsed.
// Sweeping twice at the same instant is a no-op the second time.
func (l *Ledger) Sweep(now time.Time) {
	kept := l.Lots[:0]
	for _, lot := range l.Lots {
		if lot.ExpiresAt.After(now) {
			kept = append(kept, lot)
			continue
		}
		l.History = append(l.History, PointsEntry(-lot.Points, lot.ExpiresAt, expiredPointsDescription))
	}
	l.Lots = kept
}

// Credit sweeps, then appends a new lot expiring one horizon from now and a
// matching positive history entry.
func (l *Ledger) Credit(points int64, description string, horizon time.Duration, now time.Time) error {
	if points <= 0 {
		return ErrInvalidPointAmount
	}
	l.Sweep(now)
	l.Lots = append(l.Lots, Lot{ExpiresAt: now.Add(horizon), Points: points})
	l.History = append(l.History, PointsEntry(points, now, description))
	l.UpdatedAt = now
	return nil
}

// Debit sweeps, then consumes points oldest-expiration-first across the
// remaining lots. Fails with ErrInsufficientPoints and leaves the lots
// untouched when the swept balance cannot cover the amount.
func (l *Ledger) Debit(points int64, description string, now time.Time) error {
	if points <= 0 {
		return ErrInvalidPointAmount
	}
	l.Sweep(now)

	var total int64
	for _, lot := range l.Lots {
		total += lot.Points
	}
	if total < points {
		return ErrInsufficientPoints
	}

	sorted := make([]Lot, len(l.Lots))
	copy(sorted, l.Lots)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ExpiresAt.Before(sorted[j].ExpiresAt)
	})

	remaining := points
	kept := sorted[:0]
	for _, lot := range sorted {
		if remaining >= lot.Points {
			remaining -= lot.Points
			continue
		}
		lot.Points -= remaining
		remaining = 0
		kept = append(kept, lot)
	}
	l.Lots = kept
	l.History = append(l.History, PointsEntry(-points, now, description))
	l.UpdatedAt = now
	return nil
}

// TotalPoints sweeps and sums the remaining lots.
func (l *Ledger) TotalPoints(now time.Time) int64 {
	l.Sweep(now)
	var total int64
	for _, lot := range l.Lots {
		total += lot.Points
	}
	return total
}

// ExpiringLots sweeps and returns the active lots sorted by expiration
// ascending, soonest lapse first.
func (l *Ledger) ExpiringLots(now time.Time) []Lot {
	l.Sweep(now)
	out := make([]Lot, len(l.Lots))
	copy(out, l.Lots)
	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	return out
}

// SortedHistory sweeps and returns the history newest first.
func (l *Ledger) SortedHistory(now time.Time) []Entry {
	l.Sweep(now)
	out := make([]Entry, len(l.History))
	copy(out, l.History)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// RegisterCash appends a cash-transaction audit entry. Lots are not touched.
func (l *Ledger) RegisterCash(amount float64, description string, now time.Time) {
	l.History = append(l.History, CashEntry(amount, now, description))
	l.UpdatedAt = now
}

// RegisterCouponUse appends a coupon-usage audit entry. Lots are not touched.
func (l *Ledger) RegisterCouponUse(couponCode, description string, now time.Time) {
	l.History = append(l.History, CouponEntry(couponCode, now, description))
	l.UpdatedAt = now
}

// Clone returns a deep copy, used by stores that must not leak shared state.
func (l *Ledger) Clone() *Ledger {
	clone := *l
	clone.Lots = make([]Lot, len(l.Lots))
	copy(clone.Lots, l.Lots)
	clone.History = make([]Entry, len(l.History))
	copy(clone.History, l.History)
	return &clone
}
