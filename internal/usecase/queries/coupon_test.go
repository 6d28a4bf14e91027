//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"payments-service/internal/domain/coupon"
	"payments-service/internal/infra/memstore"
	"payments-service/internal/pkg/clock"
	"payments-service/internal/pkg/errs"
	"payments-service/internal/pkg/geo"
	"payments-service/internal/usecase/queries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func mustInsert(t *testing.T, store *memstore.CouponStore, spec coupon.Spec) *coupon.Coupon {
	t.Helper()
	cp, err := coupon.New(spec, testTime)
	require.NoError(t, err)
	require.NoError(t, store.Insert(context.Background(), cp))
	return cp
}

func TestGetCoupon(t *testing.T) {
	store := memstore.NewCouponStore()
	q := queries.NewCouponQueries(store, clock.NewMockClock(testTime))
	mustInsert(t, store, coupon.Spec{
		Code:            "WELCOME",
		DiscountPercent: 10,
		ExpiresAt:       testTime.Add(24 * time.Hour),
		CategoryRules:   coupon.RuleList{"beauty"},
	})

	t.Run("returns a stored coupon", func(t *testing.T) {
		cp, err := q.Get(context.Background(), "WELCOME")
		require.NoError(t, err)
		assert.Equal(t, 10.0, cp.DiscountPercent)
	})

	t.Run("unknown code reports not found", func(t *testing.T) {
		_, err := q.Get(context.Background(), "NOPE")
		require.ErrorIs(t, err, errs.ErrCouponNotFound)
	})
}

func TestListAvailable(t *testing.T) {
	newStore := func(t *testing.T) *memstore.CouponStore {
		store := memstore.NewCouponStore()
		mustInsert(t, store, coupon.Spec{
			Code:            "BEAUTY10",
			DiscountPercent: 10,
			ExpiresAt:       testTime.Add(24 * time.Hour),
			CategoryRules:   coupon.RuleList{"beauty"},
		})
		mustInsert(t, store, coupon.Spec{
			Code:            "PLUMBING5",
			DiscountPercent: 5,
			ExpiresAt:       testTime.Add(24 * time.Hour),
			CategoryRules:   coupon.RuleList{"plumbing"},
		})
		mustInsert(t, store, coupon.Spec{
			Code:            "EXPIRED",
			DiscountPercent: 50,
			ExpiresAt:       testTime.Add(-time.Hour),
			CategoryRules:   coupon.RuleList{"beauty"},
		})
		mustInsert(t, store, coupon.Spec{
			Code:            "PERSONAL",
			DiscountPercent: 15,
			ExpiresAt:       testTime.Add(24 * time.Hour),
			UserRules:       coupon.RuleList{"user-9"},
		})
		return store
	}

	t.Run("filters by eligibility", func(t *testing.T) {
		q := queries.NewCouponQueries(newStore(t), clock.NewMockClock(testTime))
		out, err := q.ListAvailable(context.Background(), coupon.EligibilityRequest{
			UserID:   "user-1",
			Category: "beauty",
		}, nil)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "BEAUTY10", out[0].Code)
	})

	t.Run("personal coupons only show for their user", func(t *testing.T) {
		q := queries.NewCouponQueries(newStore(t), clock.NewMockClock(testTime))
		out, err := q.ListAvailable(context.Background(), coupon.EligibilityRequest{
			UserID:   "user-9",
			Category: "beauty",
		}, nil)
		require.NoError(t, err)
		require.Len(t, out, 2)
		codes := []string{out[0].Code, out[1].Code}
		assert.ElementsMatch(t, []string{"BEAUTY10", "PERSONAL"}, codes)
	})

	t.Run("geofenced coupons need a caller location", func(t *testing.T) {
		store := memstore.NewCouponStore()
		center := geo.Point{Longitude: -58.4, Latitude: -34.6}
		maxKm := 10.0
		mustInsert(t, store, coupon.Spec{
			Code:            "LOCAL",
			DiscountPercent: 10,
			ExpiresAt:       testTime.Add(24 * time.Hour),
			Center:          &center,
			MaxDistanceKm:   &maxKm,
		})
		q := queries.NewCouponQueries(store, clock.NewMockClock(testTime))

		out, err := q.ListAvailable(context.Background(), coupon.EligibilityRequest{UserID: "u"}, nil)
		require.NoError(t, err)
		assert.Empty(t, out)

		near := geo.Point{Longitude: -58.41, Latitude: -34.61}
		out, err = q.ListAvailable(context.Background(), coupon.EligibilityRequest{UserID: "u"}, &near)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "LOCAL", out[0].Code)
	})
}
