package commands

import (
	"context"
	"time"

	"payments-service/internal/domain/coupon"
	"payments-service/internal/domain/loyalty"
	"payments-service/internal/pkg/geo"
)

// CouponRepository is the write-side store contract for coupons. MarkUsed
// must be a single atomic conditional update ("set only if the user is not
// already present"), never a separate read-then-write.
type CouponRepository interface {
	Insert(ctx context.Context, c *coupon.Coupon) error
	FindByCode(ctx context.Context, code string) (*coupon.Coupon, error)
	Delete(ctx context.Context, code string) (bool, error)
	MarkUsed(ctx context.Context, code, userID string, at time.Time) (bool, error)
	ListActive(ctx context.Context, near *geo.Point, now time.Time) ([]*coupon.Coupon, error)
}

// LedgerRepository is the store contract for per-user ledgers. Update is
// conditional on the version returned by FindByUser; a conflict kind tells
// the caller another writer got there first.
type LedgerRepository interface {
	FindByUser(ctx context.Context, userID string) (*loyalty.Ledger, int64, error)
	Create(ctx context.Context, ledger *loyalty.Ledger) error
	Update(ctx context.Context, ledger *loyalty.Ledger, version int64) error
}
