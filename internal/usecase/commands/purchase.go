package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"payments-service/internal/domain/coupon"
	"payments-service/internal/domain/loyalty"
	"payments-service/internal/infra"
	"payments-service/internal/pkg/clock"
	"payments-service/internal/pkg/config"
	"payments-service/internal/pkg/errs"

	"github.com/google/uuid"
)

type PurchaseCommands interface {
	// BuyCashCoupon converts points into a personal cash-value coupon
	// (100% discount capped at the cash amount).
	BuyCashCoupon(ctx context.Context, userID string, amount float64) (*coupon.Coupon, error)
	// BuyDiscountCoupon converts points into a personal percentage coupon.
	BuyDiscountCoupon(ctx context.Context, userID string, percent float64) (*coupon.Coupon, error)
}

type purchaseCommandsImpl struct {
	coupons CouponRepository
	ledgers LedgerRepository
	loyalty LoyaltyCommands
	clock   clock.Clock
	cfg     config.LoyaltyConfig
}

func NewPurchaseCommands(
	coupons CouponRepository,
	ledgers LedgerRepository,
	loyalty LoyaltyCommands,
	clk clock.Clock,
	cfg config.LoyaltyConfig,
) PurchaseCommands {
	return &purchaseCommandsImpl{
		coupons: coupons,
		ledgers: ledgers,
		loyalty: loyalty,
		clock:   clk,
		cfg:     cfg,
	}
}

func (p *purchaseCommandsImpl) BuyCashCoupon(ctx context.Context, userID string, amount float64) (*coupon.Coupon, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, errs.Mark(errs.New("cash amount must be positive"), errs.ErrValidation)
	}

	pointsNeeded := int64(math.Ceil(amount * float64(p.cfg.CashPointsRate)))
	maxDiscount := amount
	spec := coupon.Spec{
		Code:            uuid.NewString(),
		DiscountPercent: 100,
		MaxDiscount:     &maxDiscount,
		ExpiresAt:       p.clock.Now().Add(p.cfg.PurchasedTTL),
		UserRules:       coupon.RuleList{userID},
	}
	desc := fmt.Sprintf("Purchased cash coupon (%.2f)", amount)
	return p.buy(ctx, userID, spec, pointsNeeded, desc)
}

func (p *purchaseCommandsImpl) BuyDiscountCoupon(ctx context.Context, userID string, percent float64) (*coupon.Coupon, error) {
	if percent <= 0 || percent > 100 || math.IsNaN(percent) {
		return nil, errs.Mark(errs.New("discount percent must be in (0, 100]"), errs.ErrValidation)
	}

	pointsNeeded := int64(math.Ceil(percent * float64(p.cfg.PercentPointsRate)))
	spec := coupon.Spec{
		Code:            uuid.NewString(),
		DiscountPercent: percent,
		ExpiresAt:       p.clock.Now().Add(p.cfg.PurchasedTTL),
		UserRules:       coupon.RuleList{userID},
	}
	desc := fmt.Sprintf("Purchased %.0f%% discount coupon", percent)
	return p.buy(ctx, userID, spec, pointsNeeded, desc)
}

// buy issues the coupon first and debits the points second, so a crash
// between the two leaves an unpaid coupon rather than vanished points. A
// failed debit triggers a compensating delete of the freshly issued coupon;
// if even the delete fails the leak is logged and the purchase still reports
// failure.
func (p *purchaseCommandsImpl) buy(
	ctx context.Context,
	userID string,
	spec coupon.Spec,
	pointsNeeded int64,
	description string,
) (*coupon.Coupon, error) {
	if err := p.checkBalance(ctx, userID, pointsNeeded); err != nil {
		return nil, err
	}

	cp, err := coupon.New(spec, p.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrPurchaseFailed)
	}
	if err := p.coupons.Insert(ctx, cp); err != nil {
		return nil, errs.Mark(err, errs.ErrPurchaseFailed)
	}

	if err := p.loyalty.DebitPoints(ctx, userID, pointsNeeded, description); err != nil {
		if _, delErr := p.coupons.Delete(ctx, cp.Code); delErr != nil {
			slog.Warn("failed to roll back coupon after debit failure",
				"coupon_code", cp.Code,
				"user_id", userID,
				"error", delErr.Error(),
			)
		}
		if errors.Is(err, loyalty.ErrInsufficientPoints) {
			return nil, err
		}
		return nil, errs.Mark(err, errs.ErrPurchaseFailed)
	}
	return cp, nil
}

// checkBalance rejects obviously unaffordable purchases before issuing
// anything. The debit afterwards re-checks under optimistic concurrency, so
// this is a fast-path guard, not the authority.
func (p *purchaseCommandsImpl) checkBalance(ctx context.Context, userID string, pointsNeeded int64) error {
	ledger, _, err := p.ledgers.FindByUser(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return loyalty.ErrInsufficientPoints
		}
		return errs.Mark(err, errs.ErrStoreFailure)
	}
	if ledger.TotalPoints(p.clock.Now()) < pointsNeeded {
		return loyalty.ErrInsufficientPoints
	}
	return nil
}
