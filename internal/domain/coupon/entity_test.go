//go:build unit

package coupon_test

import (
	"errors"
	"testing"
	"time"

	"payments-service/internal/domain/coupon"
	"payments-service/internal/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func validSpec() coupon.Spec {
	return coupon.Spec{
		Code:            "SUMMER20",
		DiscountPercent: 20,
		ExpiresAt:       baseTime.Add(30 * 24 * time.Hour),
		CategoryRules:   coupon.RuleList{"food"},
	}
}

func eligibleRequest() coupon.EligibilityRequest {
	return coupon.EligibilityRequest{
		UserID:     "user-1",
		Category:   "food",
		ServiceID:  "svc-1",
		ProviderID: "prov-1",
		Location:   geo.Point{Longitude: 0, Latitude: 0},
	}
}

func TestNew(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*coupon.Spec)
		errIs  error
	}{
		{
			name:   "valid spec",
			mutate: func(*coupon.Spec) {},
		},
		{
			name:   "empty code",
			mutate: func(s *coupon.Spec) { s.Code = "" },
			errIs:  coupon.ErrEmptyCode,
		},
		{
			name:   "zero discount",
			mutate: func(s *coupon.Spec) { s.DiscountPercent = 0 },
			errIs:  coupon.ErrInvalidDiscountPercent,
		},
		{
			name:   "discount above 100",
			mutate: func(s *coupon.Spec) { s.DiscountPercent = 100.5 },
			errIs:  coupon.ErrInvalidDiscountPercent,
		},
		{
			name:   "full discount is allowed",
			mutate: func(s *coupon.Spec) { s.DiscountPercent = 100 },
		},
		{
			name:   "no rules at all",
			mutate: func(s *coupon.Spec) { s.CategoryRules = nil },
			errIs:  coupon.ErrRuleRequired,
		},
		{
			name: "geofence alone satisfies the rule requirement",
			mutate: func(s *coupon.Spec) {
				s.CategoryRules = nil
				s.Center = &geo.Point{Longitude: 1, Latitude: 1}
				dist := 5.0
				s.MaxDistanceKm = &dist
			},
		},
		{
			name: "center without max distance",
			mutate: func(s *coupon.Spec) {
				s.Center = &geo.Point{Longitude: 1, Latitude: 1}
			},
			errIs: coupon.ErrGeofenceIncomplete,
		},
		{
			name: "max distance without center",
			mutate: func(s *coupon.Spec) {
				dist := 5.0
				s.MaxDistanceKm = &dist
			},
			errIs: coupon.ErrGeofenceIncomplete,
		},
		{
			name: "invalid center coordinates",
			mutate: func(s *coupon.Spec) {
				s.Center = &geo.Point{Longitude: 500, Latitude: 0}
				dist := 5.0
				s.MaxDistanceKm = &dist
			},
			errIs: geo.ErrInvalidCoordinate,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			spec := validSpec()
			tc.mutate(&spec)

			c, err := coupon.New(spec, baseTime)
			if tc.errIs != nil {
				require.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.NotNil(t, c.UsedBy, "used_by must be initialized so conditional updates have a map to extend")
			assert.Empty(t, c.UsedBy)
			assert.Equal(t, baseTime, c.CreatedAt)
		})
	}
}

func TestRuleListAllows(t *testing.T) {
	assert.True(t, coupon.RuleList(nil).Allows("anything"), "nil list is unrestricted")
	assert.True(t, coupon.RuleList{}.Allows("anything"), "empty list is unrestricted")
	assert.True(t, coupon.RuleList{"a", "b"}.Allows("b"))
	assert.False(t, coupon.RuleList{"a", "b"}.Allows("c"))
}

func TestCheckEligibility(t *testing.T) {
	t.Run("passes when every axis allows", func(t *testing.T) {
		c, err := coupon.New(validSpec(), baseTime)
		require.NoError(t, err)
		require.NoError(t, c.CheckEligibility(eligibleRequest(), baseTime))
	})

	t.Run("already used wins over every other failure", func(t *testing.T) {
		spec := validSpec()
		spec.ExpiresAt = baseTime.Add(-time.Hour) // also expired
		c, err := coupon.New(spec, baseTime.Add(-2*time.Hour))
		require.NoError(t, err)
		c.UsedBy["user-1"] = baseTime.Add(-time.Hour)

		req := eligibleRequest()
		req.Category = "not-food" // and rule-violating
		err = c.CheckEligibility(req, baseTime)
		require.ErrorIs(t, err, coupon.ErrAlreadyUsed)
	})

	t.Run("expired", func(t *testing.T) {
		spec := validSpec()
		spec.ExpiresAt = baseTime.Add(-time.Minute)
		c, err := coupon.New(spec, baseTime.Add(-time.Hour))
		require.NoError(t, err)

		require.ErrorIs(t, c.CheckEligibility(eligibleRequest(), baseTime), coupon.ErrExpired)
	})

	t.Run("category rule violation reports its axis", func(t *testing.T) {
		c, err := coupon.New(validSpec(), baseTime)
		require.NoError(t, err)

		req := eligibleRequest()
		req.Category = "electronics"
		err = c.CheckEligibility(req, baseTime)
		require.ErrorIs(t, err, coupon.ErrRuleViolation)

		var violation *coupon.RuleViolationError
		require.True(t, errors.As(err, &violation))
		assert.Equal(t, coupon.AxisCategory, violation.Axis)
	})

	t.Run("service and provider axes", func(t *testing.T) {
		spec := validSpec()
		spec.ServiceRules = coupon.RuleList{"svc-1"}
		spec.ProviderRules = coupon.RuleList{"prov-1"}
		c, err := coupon.New(spec, baseTime)
		require.NoError(t, err)

		req := eligibleRequest()
		req.ServiceID = "svc-2"
		var violation *coupon.RuleViolationError
		require.True(t, errors.As(c.CheckEligibility(req, baseTime), &violation))
		assert.Equal(t, coupon.AxisService, violation.Axis)

		req = eligibleRequest()
		req.ProviderID = "prov-2"
		require.True(t, errors.As(c.CheckEligibility(req, baseTime), &violation))
		assert.Equal(t, coupon.AxisProvider, violation.Axis)
	})

	t.Run("geofence", func(t *testing.T) {
		spec := validSpec()
		spec.Center = &geo.Point{Longitude: 0, Latitude: 0}
		dist := 10.0
		spec.MaxDistanceKm = &dist
		c, err := coupon.New(spec, baseTime)
		require.NoError(t, err)

		// ~0.135 degrees of latitude is ~15 km.
		req := eligibleRequest()
		req.Location = geo.Point{Longitude: 0, Latitude: 0.135}
		require.ErrorIs(t, c.CheckEligibility(req, baseTime), coupon.ErrOutOfRange)

		// ~5 km away passes.
		req.Location = geo.Point{Longitude: 0, Latitude: 0.045}
		require.NoError(t, c.CheckEligibility(req, baseTime))
	})

	t.Run("invalid client location surfaces coordinate error", func(t *testing.T) {
		spec := validSpec()
		spec.Center = &geo.Point{Longitude: 0, Latitude: 0}
		dist := 10.0
		spec.MaxDistanceKm = &dist
		c, err := coupon.New(spec, baseTime)
		require.NoError(t, err)

		req := eligibleRequest()
		req.Location = geo.Point{Longitude: 0, Latitude: 95}
		require.ErrorIs(t, c.CheckEligibility(req, baseTime), geo.ErrInvalidCoordinate)
	})

	t.Run("user allow-list is checked last", func(t *testing.T) {
		spec := validSpec()
		spec.UserRules = coupon.RuleList{"user-2"}
		c, err := coupon.New(spec, baseTime)
		require.NoError(t, err)

		err = c.CheckEligibility(eligibleRequest(), baseTime)
		var violation *coupon.RuleViolationError
		require.True(t, errors.As(err, &violation))
		assert.Equal(t, coupon.AxisUser, violation.Axis)
	})
}

func TestClone(t *testing.T) {
	spec := validSpec()
	spec.UserRules = coupon.RuleList{"user-1"}
	c, err := coupon.New(spec, baseTime)
	require.NoError(t, err)
	c.UsedBy["user-9"] = baseTime

	clone := c.Clone()
	clone.UsedBy["user-1"] = baseTime
	clone.CategoryRules[0] = "changed"

	assert.NotContains(t, c.UsedBy, "user-1")
	assert.Equal(t, "food", string(c.CategoryRules[0]))
}
