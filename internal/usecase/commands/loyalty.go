package commands

import (
	"context"

	"payments-service/internal/domain/loyalty"
	"payments-service/internal/infra"
	"payments-service/internal/pkg/clock"
	"payments-service/internal/pkg/config"
	"payments-service/internal/pkg/errs"
)

// ledgerRetryLimit bounds the optimistic-concurrency loop; exceeding it
// means sustained write contention on one user's ledger.
const ledgerRetryLimit = 5

type LoyaltyCommands interface {
	CreditPoints(ctx context.Context, userID string, points int64, description string) error
	DebitPoints(ctx context.Context, userID string, points int64, description string) error
	RegisterCashTransaction(ctx context.Context, userID string, amount float64, description string) error
	RegisterCouponUse(ctx context.Context, userID, couponCode, description string) error
}

type loyaltyCommandsImpl struct {
	ledgers LedgerRepository
	clock   clock.Clock
	cfg     config.LoyaltyConfig
}

func NewLoyaltyCommands(ledgers LedgerRepository, clk clock.Clock, cfg config.LoyaltyConfig) LoyaltyCommands {
	return &loyaltyCommandsImpl{
		ledgers: ledgers,
		clock:   clk,
		cfg:     cfg,
	}
}

func (l *loyaltyCommandsImpl) CreditPoints(ctx context.Context, userID string, points int64, description string) error {
	now := l.clock.Now()
	return l.updateLedger(ctx, userID, func(ledger *loyalty.Ledger) error {
		return ledger.Credit(points, description, l.cfg.PointsHorizon, now)
	})
}

// DebitPoints spends points against a user's swept balance. A user who never
// earned points fails the balance check like anyone else; no ledger document
// is created for them because the mutation errors before the write.
func (l *loyaltyCommandsImpl) DebitPoints(ctx context.Context, userID string, points int64, description string) error {
	now := l.clock.Now()
	return l.updateLedger(ctx, userID, func(ledger *loyalty.Ledger) error {
		return ledger.Debit(points, description, now)
	})
}

func (l *loyaltyCommandsImpl) RegisterCashTransaction(ctx context.Context, userID string, amount float64, description string) error {
	if amount <= 0 {
		return errs.Mark(errs.New("cash amount must be positive"), errs.ErrValidation)
	}
	now := l.clock.Now()
	return l.updateLedger(ctx, userID, func(ledger *loyalty.Ledger) error {
		ledger.RegisterCash(amount, description, now)
		return nil
	})
}

func (l *loyaltyCommandsImpl) RegisterCouponUse(ctx context.Context, userID, couponCode, description string) error {
	now := l.clock.Now()
	return l.updateLedger(ctx, userID, func(ledger *loyalty.Ledger) error {
		ledger.RegisterCouponUse(couponCode, description, now)
		return nil
	})
}

// updateLedger runs one read-mutate-conditional-write round and retries on
// version conflicts, so concurrent requests against the same user never lose
// updates. The ledger is created lazily on a user's first successful
// mutation. The sweep performed inside the domain mutation and the write
// land together in the single conditional update.
func (l *loyaltyCommandsImpl) updateLedger(
	ctx context.Context,
	userID string,
	mutate func(*loyalty.Ledger) error,
) error {
	for attempt := 0; attempt < ledgerRetryLimit; attempt++ {
		ledger, version, err := l.ledgers.FindByUser(ctx, userID)
		creating := false
		switch {
		case err == nil:
		case infra.IsKind(err, infra.KindNotFound):
			ledger = loyalty.NewLedger(userID, l.clock.Now())
			creating = true
		default:
			return errs.Mark(err, errs.ErrStoreFailure)
		}

		if err := mutate(ledger); err != nil {
			return err
		}

		if creating {
			err = l.ledgers.Create(ctx, ledger)
		} else {
			err = l.ledgers.Update(ctx, ledger, version)
		}
		if err == nil {
			return nil
		}
		if infra.IsKind(err, infra.KindConflict) {
			continue
		}
		return errs.Mark(err, errs.ErrStoreFailure)
	}
	return errs.Mark(errs.New("ledger update contention not resolved"), errs.ErrStoreFailure)
}
