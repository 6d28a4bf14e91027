// Package memstore provides in-memory repository implementations honoring
// the same atomicity contract as the Postgres-backed ones. They back the
// unit tests and are safe for concurrent use.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"payments-service/internal/domain/coupon"
	"payments-service/internal/infra"
	"payments-service/internal/pkg/geo"
)

type CouponStore struct {
	mu      sync.Mutex
	coupons map[string]*coupon.Coupon
}

func NewCouponStore() *CouponStore {
	return &CouponStore{coupons: make(map[string]*coupon.Coupon)}
}

func (s *CouponStore) Insert(_ context.Context, c *coupon.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.coupons[c.Code]; exists {
		return infra.WrapRepoErr(infra.KindDuplicateKey, "coupon code already exists", nil)
	}
	s.coupons[c.Code] = c.Clone()
	return nil
}

func (s *CouponStore) FindByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.coupons[code]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "coupon not found", nil)
	}
	return c.Clone(), nil
}

func (s *CouponStore) Delete(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.coupons[code]; !ok {
		return false, nil
	}
	delete(s.coupons, code)
	return true, nil
}

// MarkUsed performs the conditional update under the store lock: the check
// for prior use and the write are one atomic step.
func (s *CouponStore) MarkUsed(_ context.Context, code, userID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.coupons[code]
	if !ok {
		return false, nil
	}
	if _, used := c.UsedBy[userID]; used {
		return false, nil
	}
	c.UsedBy[userID] = at
	c.UpdatedAt = at
	return true, nil
}

func (s *CouponStore) ListActive(_ context.Context, near *geo.Point, now time.Time) ([]*coupon.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*coupon.Coupon
	for _, c := range s.coupons {
		if c.IsExpired(now) {
			continue
		}
		out = append(out, c.Clone())
	}

	if near != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return distanceOrZero(out[i], *near) < distanceOrZero(out[j], *near)
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out, nil
}

func distanceOrZero(c *coupon.Coupon, near geo.Point) float64 {
	if c.Center == nil {
		return 0
	}
	d, err := geo.DistanceKm(near, *c.Center)
	if err != nil {
		return 0
	}
	return d
}
