package response

import (
	"payments-service/internal/domain/coupon"
	"payments-service/internal/usecase/commands"
)

type PointResponse struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

type CouponResponse struct {
	Code            string         `json:"code"`
	DiscountPercent float64        `json:"discount_percent"`
	MaxDiscount     *float64       `json:"max_discount,omitempty"`
	ExpiresAt       int64          `json:"expires_at"`
	CategoryRules   []string       `json:"category_rules,omitempty"`
	ServiceRules    []string       `json:"service_rules,omitempty"`
	ProviderRules   []string       `json:"provider_rules,omitempty"`
	UserRules       []string       `json:"user_rules,omitempty"`
	Center          *PointResponse `json:"center,omitempty"`
	MaxDistanceKm   *float64       `json:"max_distance_km,omitempty"`
	CreatedAt       int64          `json:"created_at"`
}

func FromCoupon(c *coupon.Coupon) *CouponResponse {
	resp := &CouponResponse{
		Code:            c.Code,
		DiscountPercent: c.DiscountPercent,
		MaxDiscount:     c.MaxDiscount,
		ExpiresAt:       c.ExpiresAt.Unix(),
		CategoryRules:   c.CategoryRules,
		ServiceRules:    c.ServiceRules,
		ProviderRules:   c.ProviderRules,
		UserRules:       c.UserRules,
		MaxDistanceKm:   c.MaxDistanceKm,
		CreatedAt:       c.CreatedAt.Unix(),
	}
	if c.Center != nil {
		resp.Center = &PointResponse{Longitude: c.Center.Longitude, Latitude: c.Center.Latitude}
	}
	return resp
}

func FromCouponList(items []*coupon.Coupon) []*CouponResponse {
	res := make([]*CouponResponse, len(items))
	for i, c := range items {
		res[i] = FromCoupon(c)
	}
	return res
}

type RedeemResponse struct {
	Code            string   `json:"code"`
	DiscountPercent float64  `json:"discount_percent"`
	MaxDiscount     *float64 `json:"max_discount,omitempty"`
}

func FromRedeemResult(r *commands.RedeemResult) *RedeemResponse {
	return &RedeemResponse{
		Code:            r.Code,
		DiscountPercent: r.DiscountPercent,
		MaxDiscount:     r.MaxDiscount,
	}
}
