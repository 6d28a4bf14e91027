package commands

import (
	"context"
	"log/slog"

	"payments-service/internal/domain/coupon"
	"payments-service/internal/infra"
	"payments-service/internal/pkg/clock"
	"payments-service/internal/pkg/errs"
)

// RedeemResult carries the discount terms the caller applies to the purchase.
type RedeemResult struct {
	Code            string
	DiscountPercent float64
	MaxDiscount     *float64
}

type CouponCommands interface {
	CreateCoupon(ctx context.Context, spec coupon.Spec) (*coupon.Coupon, error)
	DeleteCoupon(ctx context.Context, code string) error
	RedeemCoupon(ctx context.Context, code string, req coupon.EligibilityRequest) (*RedeemResult, error)
}

type couponCommandsImpl struct {
	coupons CouponRepository
	loyalty LoyaltyCommands
	clock   clock.Clock
}

func NewCouponCommands(coupons CouponRepository, loyalty LoyaltyCommands, clk clock.Clock) CouponCommands {
	return &couponCommandsImpl{
		coupons: coupons,
		loyalty: loyalty,
		clock:   clk,
	}
}

func (c *couponCommandsImpl) CreateCoupon(ctx context.Context, spec coupon.Spec) (*coupon.Coupon, error) {
	cp, err := coupon.New(spec, c.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidation)
	}

	if err := c.coupons.Insert(ctx, cp); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, errs.Mark(err, errs.ErrDuplicateCode)
		}
		return nil, errs.Mark(err, errs.ErrStoreFailure)
	}
	return cp, nil
}

func (c *couponCommandsImpl) DeleteCoupon(ctx context.Context, code string) error {
	deleted, err := c.coupons.Delete(ctx, code)
	if err != nil {
		return errs.Mark(err, errs.ErrStoreFailure)
	}
	if !deleted {
		return errs.ErrCouponNotFound
	}
	return nil
}

// RedeemCoupon validates eligibility and then relies on the store's
// conditional update to claim the coupon: between the check and the write
// another request may redeem for the same user, and only the write decides
// the winner. The loyalty audit entry is recorded after the claim succeeds
// and never blocks the redemption.
func (c *couponCommandsImpl) RedeemCoupon(ctx context.Context, code string, req coupon.EligibilityRequest) (*RedeemResult, error) {
	cp, err := c.coupons.FindByCode(ctx, code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrCouponNotFound)
		}
		return nil, errs.Mark(err, errs.ErrStoreFailure)
	}

	now := c.clock.Now()
	if err := cp.CheckEligibility(req, now); err != nil {
		return nil, err
	}

	claimed, err := c.coupons.MarkUsed(ctx, code, req.UserID, now)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStoreFailure)
	}
	if !claimed {
		return nil, coupon.ErrAlreadyUsed
	}

	if err := c.loyalty.RegisterCouponUse(ctx, req.UserID, code, "Coupon redeemed"); err != nil {
		slog.Warn("failed to record coupon use in loyalty history",
			"coupon_code", code,
			"user_id", req.UserID,
			"error", err.Error(),
		)
	}

	return &RedeemResult{
		Code:            cp.Code,
		DiscountPercent: cp.DiscountPercent,
		MaxDiscount:     cp.MaxDiscount,
	}, nil
}
