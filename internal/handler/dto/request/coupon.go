package request

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"payments-service/internal/domain/coupon"
	"payments-service/internal/pkg/geo"
)

type PointRequest struct {
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
}

type CreateCouponRequest struct {
	Code            string        `json:"code" binding:"required,max=64"`
	DiscountPercent float64       `json:"discount_percent" binding:"required,gt=0,lte=100"`
	MaxDiscount     *float64      `json:"max_discount" binding:"omitempty,gt=0"`
	ExpiresAt       time.Time     `json:"expires_at" binding:"required"`
	CategoryRules   []string      `json:"category_rules"`
	ServiceRules    []string      `json:"service_rules"`
	ProviderRules   []string      `json:"provider_rules"`
	UserRules       []string      `json:"user_rules"`
	Center          *PointRequest `json:"center"`
	MaxDistanceKm   *float64      `json:"max_distance_km" binding:"omitempty,gt=0"`
}

func (r *CreateCouponRequest) ToSpec() coupon.Spec {
	spec := coupon.Spec{
		Code:            r.Code,
		DiscountPercent: r.DiscountPercent,
		MaxDiscount:     r.MaxDiscount,
		ExpiresAt:       r.ExpiresAt,
		CategoryRules:   r.CategoryRules,
		ServiceRules:    r.ServiceRules,
		ProviderRules:   r.ProviderRules,
		UserRules:       r.UserRules,
		MaxDistanceKm:   r.MaxDistanceKm,
	}
	if r.Center != nil {
		spec.Center = &geo.Point{Longitude: r.Center.Longitude, Latitude: r.Center.Latitude}
	}
	return spec
}

type RedeemCouponRequest struct {
	Category   string        `json:"category"`
	ServiceID  string        `json:"service_id"`
	ProviderID string        `json:"provider_id"`
	Location   *PointRequest `json:"location"`
}

func (r *RedeemCouponRequest) ToEligibility(userID string) coupon.EligibilityRequest {
	req := coupon.EligibilityRequest{
		UserID:     userID,
		Category:   r.Category,
		ServiceID:  r.ServiceID,
		ProviderID: r.ProviderID,
	}
	if r.Location != nil {
		req.Location = geo.Point{Longitude: r.Location.Longitude, Latitude: r.Location.Latitude}
	}
	return req
}

type PurchaseCashCouponRequest struct {
	UserID string  `json:"user_id" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type PurchaseDiscountCouponRequest struct {
	UserID  string  `json:"user_id" binding:"required"`
	Percent float64 `json:"percent" binding:"required,gt=0,lte=100"`
}

// ParseLocation reads a "longitude,latitude" query value.
func ParseLocation(raw string) (*geo.Point, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("location must be \"longitude,latitude\", got %q", raw)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q", parts[0])
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q", parts[1])
	}
	p, err := geo.NewPoint(lon, lat)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
