package queries

import (
	"context"

	"payments-service/internal/domain/loyalty"
	"payments-service/internal/infra"
	"payments-service/internal/pkg/clock"
	"payments-service/internal/pkg/errs"
	"payments-service/internal/usecase/commands"
)

// BalanceView is a user's spendable balance with its upcoming expirations.
type BalanceView struct {
	TotalPoints int64
	Expiring    []loyalty.Lot
}

type LoyaltyQueries interface {
	// Balance reports the swept total; a user with no ledger at all gets
	// ErrLedgerNotFound so callers can tell "never participated" from
	// "zero points".
	Balance(ctx context.Context, userID string) (*BalanceView, error)
	// History lists entries newest-first. Unknown users get an empty
	// history rather than an error.
	History(ctx context.Context, userID string) ([]loyalty.Entry, error)
}

type loyaltyQueriesImpl struct {
	ledgers commands.LedgerRepository
	clock   clock.Clock
}

func NewLoyaltyQueries(ledgers commands.LedgerRepository, clk clock.Clock) LoyaltyQueries {
	return &loyaltyQueriesImpl{ledgers: ledgers, clock: clk}
}

func (q *loyaltyQueriesImpl) Balance(ctx context.Context, userID string) (*BalanceView, error) {
	ledger, _, err := q.ledgers.FindByUser(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrLedgerNotFound)
		}
		return nil, errs.Mark(err, errs.ErrStoreFailure)
	}

	now := q.clock.Now()
	return &BalanceView{
		TotalPoints: ledger.TotalPoints(now),
		Expiring:    ledger.ExpiringLots(now),
	}, nil
}

func (q *loyaltyQueriesImpl) History(ctx context.Context, userID string) ([]loyalty.Entry, error) {
	ledger, _, err := q.ledgers.FindByUser(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return []loyalty.Entry{}, nil
		}
		return nil, errs.Mark(err, errs.ErrStoreFailure)
	}
	return ledger.SortedHistory(q.clock.Now()), nil
}
