//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"payments-service/internal/infra/memstore"
	"payments-service/internal/pkg/clock"
	"payments-service/internal/pkg/config"
	"payments-service/internal/pkg/errs"
	"payments-service/internal/usecase/commands"
	"payments-service/internal/usecase/queries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalance(t *testing.T) {
	ledgers := memstore.NewLedgerStore()
	clk := clock.NewMockClock(testTime)
	cfg := config.NewTestConfig().Loyalty
	cmd := commands.NewLoyaltyCommands(ledgers, clk, cfg)
	q := queries.NewLoyaltyQueries(ledgers, clk)

	t.Run("user with no ledger is distinguished from zero points", func(t *testing.T) {
		_, err := q.Balance(context.Background(), "ghost")
		require.ErrorIs(t, err, errs.ErrLedgerNotFound)
	})

	t.Run("reports the swept total with upcoming expirations", func(t *testing.T) {
		require.NoError(t, cmd.CreditPoints(context.Background(), "user-1", 100, "a"))
		clk.Add(24 * time.Hour)
		require.NoError(t, cmd.CreditPoints(context.Background(), "user-1", 50, "b"))

		view, err := q.Balance(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(150), view.TotalPoints)
		require.Len(t, view.Expiring, 2)
		assert.True(t, view.Expiring[0].ExpiresAt.Before(view.Expiring[1].ExpiresAt))
	})

	t.Run("expired lots drop from the balance without a write", func(t *testing.T) {
		require.NoError(t, cmd.CreditPoints(context.Background(), "user-2", 100, "a"))
		_, before, err := ledgers.FindByUser(context.Background(), "user-2")
		require.NoError(t, err)

		clk.Add(cfg.PointsHorizon + time.Hour)
		view, err := q.Balance(context.Background(), "user-2")
		require.NoError(t, err)
		assert.Equal(t, int64(0), view.TotalPoints)

		_, after, err := ledgers.FindByUser(context.Background(), "user-2")
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestHistory(t *testing.T) {
	ledgers := memstore.NewLedgerStore()
	clk := clock.NewMockClock(testTime)
	cmd := commands.NewLoyaltyCommands(ledgers, clk, config.NewTestConfig().Loyalty)
	q := queries.NewLoyaltyQueries(ledgers, clk)

	t.Run("unknown user gets an empty history", func(t *testing.T) {
		entries, err := q.History(context.Background(), "ghost")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("entries come back newest first", func(t *testing.T) {
		require.NoError(t, cmd.CreditPoints(context.Background(), "user-1", 100, "first"))
		clk.Add(time.Hour)
		require.NoError(t, cmd.RegisterCashTransaction(context.Background(), "user-1", 50, "second"))
		clk.Add(time.Hour)
		require.NoError(t, cmd.RegisterCouponUse(context.Background(), "user-1", "CODE", "third"))

		entries, err := q.History(context.Background(), "user-1")
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "third", entries[0].Description)
		assert.Equal(t, "second", entries[1].Description)
		assert.Equal(t, "first", entries[2].Description)
	})
}
