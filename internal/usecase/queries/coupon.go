// Package queries holds the read-side usecases. They never write through
// the repositories; expiry sweeps happen on in-memory copies only.
package queries

import (
	"context"

	"payments-service/internal/domain/coupon"
	"payments-service/internal/infra"
	"payments-service/internal/pkg/clock"
	"payments-service/internal/pkg/errs"
	"payments-service/internal/pkg/geo"
	"payments-service/internal/usecase/commands"
)

type CouponQueries interface {
	Get(ctx context.Context, code string) (*coupon.Coupon, error)
	// ListAvailable returns the active coupons the given context could
	// redeem right now, nearest-first when a location is provided.
	ListAvailable(ctx context.Context, req coupon.EligibilityRequest, near *geo.Point) ([]*coupon.Coupon, error)
}

type couponQueriesImpl struct {
	coupons commands.CouponRepository
	clock   clock.Clock
}

func NewCouponQueries(coupons commands.CouponRepository, clk clock.Clock) CouponQueries {
	return &couponQueriesImpl{coupons: coupons, clock: clk}
}

func (q *couponQueriesImpl) Get(ctx context.Context, code string) (*coupon.Coupon, error) {
	cp, err := q.coupons.FindByCode(ctx, code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrCouponNotFound)
		}
		return nil, errs.Mark(err, errs.ErrStoreFailure)
	}
	return cp, nil
}

func (q *couponQueriesImpl) ListAvailable(ctx context.Context, req coupon.EligibilityRequest, near *geo.Point) ([]*coupon.Coupon, error) {
	now := q.clock.Now()
	candidates, err := q.coupons.ListActive(ctx, near, now)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStoreFailure)
	}

	if near != nil {
		req.Location = *near
	}
	eligible := make([]*coupon.Coupon, 0, len(candidates))
	for _, cp := range candidates {
		// Geofenced coupons cannot match a caller who sent no location.
		if cp.HasGeofence() && near == nil {
			continue
		}
		if cp.CheckEligibility(req, now) != nil {
			continue
		}
		eligible = append(eligible, cp)
	}
	return eligible, nil
}
