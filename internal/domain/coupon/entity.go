package coupon

import (
	"time"

	"payments-service/internal/pkg/errs"
	"payments-service/internal/pkg/geo"
)

var (
	ErrInvalidDiscountPercent = errs.New("discount percent must be in (0, 100]")
	ErrInvalidMaxDiscount     = errs.New("max discount must be positive")
	ErrEmptyCode              = errs.New("coupon code is required")
	ErrRuleRequired           = errs.New("at least one rule is needed")
	ErrGeofenceIncomplete     = errs.New("geofence needs both a center point and a max distance")

	ErrAlreadyUsed   = errs.New("coupon already used by this user")
	ErrExpired       = errs.New("coupon expired")
	ErrOutOfRange    = errs.New("client location outside coupon area")
	ErrRuleViolation = errs.New("coupon rule not satisfied")
)

// Coupon is the stored document for one promotional coupon. UsedBy maps each
// redeeming user to the redemption time; a user appears there at most once.
type Coupon struct {
	Code            string               `json:"code"`
	DiscountPercent float64              `json:"discount_percent"`
	MaxDiscount     *float64             `json:"max_discount,omitempty"`
	ExpiresAt       time.Time            `json:"expires_at"`
	CategoryRules   RuleList             `json:"category_rules,omitempty"`
	ServiceRules    RuleList             `json:"service_rules,omitempty"`
	ProviderRules   RuleList             `json:"provider_rules,omitempty"`
	UserRules       RuleList             `json:"user_rules,omitempty"`
	Center          *geo.Point           `json:"center,omitempty"`
	MaxDistanceKm   *float64             `json:"max_distance_km,omitempty"`
	UsedBy          map[string]time.Time `json:"used_by"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// Spec carries the caller-provided fields of a new coupon.
type Spec struct {
	Code            string
	DiscountPercent float64
	MaxDiscount     *float64
	ExpiresAt       time.Time
	CategoryRules   RuleList
	ServiceRules    RuleList
	ProviderRules   RuleList
	UserRules       RuleList
	Center          *geo.Point
	MaxDistanceKm   *float64
}

func New(spec Spec, now time.Time) (*Coupon, error) {
	if spec.Code == "" {
		return nil, ErrEmptyCode
	}
	if spec.DiscountPercent <= 0 || spec.DiscountPercent > 100 {
		return nil, ErrInvalidDiscountPercent
	}
	if spec.MaxDiscount != nil && *spec.MaxDiscount <= 0 {
		return nil, ErrInvalidMaxDiscount
	}
	if (spec.Center == nil) != (spec.MaxDistanceKm == nil) {
		return nil, ErrGeofenceIncomplete
	}
	if spec.Center != nil {
		if err := spec.Center.Validate(); err != nil {
			return nil, err
		}
	}
	if !spec.CategoryRules.IsRestricted() && !spec.ServiceRules.IsRestricted() &&
		!spec.ProviderRules.IsRestricted() && !spec.UserRules.IsRestricted() &&
		spec.Center == nil {
		return nil, ErrRuleRequired
	}

	return &Coupon{
		Code:            spec.Code,
		DiscountPercent: spec.DiscountPercent,
		MaxDiscount:     spec.MaxDiscount,
		ExpiresAt:       spec.ExpiresAt,
		CategoryRules:   spec.CategoryRules,
		ServiceRules:    spec.ServiceRules,
		ProviderRules:   spec.ProviderRules,
		UserRules:       spec.UserRules,
		Center:          spec.Center,
		MaxDistanceKm:   spec.MaxDistanceKm,
		UsedBy:          map[string]time.Time{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (c *Coupon) HasGeofence() bool {
	return c.Center != nil && c.MaxDistanceKm != nil
}

func (c *Coupon) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

func (c *Coupon) UsedAt(userID string) (time.Time, bool) {
	t, ok := c.UsedBy[userID]
	return t, ok
}

// EligibilityRequest is the redemption context evaluated against a coupon's
// rules.
type EligibilityRequest struct {
	UserID     string
	Category   string
	ServiceID  string
	ProviderID string
	Location   geo.Point
}

// CheckEligibility evaluates the rule axes in a fixed order so that a single
// failure reason is reported deterministically: prior use, expiry, the
// category/service/provider allow-lists, the geofence, then the user
// allow-list. Every check must pass for redemption to proceed.
func (c *Coupon) CheckEligibility(req EligibilityRequest, now time.Time) error {
	if _, used := c.UsedBy[req.UserID]; used {
		return ErrAlreadyUsed
	}
	if c.IsExpired(now) {
		return ErrExpired
	}
	if !c.CategoryRules.Allows(req.Category) {
		return &RuleViolationError{Axis: AxisCategory}
	}
	if !c.ServiceRules.Allows(req.ServiceID) {
		return &RuleViolationError{Axis: AxisService}
	}
	if !c.ProviderRules.Allows(req.ProviderID) {
		return &RuleViolationError{Axis: AxisProvider}
	}
	if c.HasGeofence() {
		distance, err := geo.DistanceKm(req.Location, *c.Center)
		if err != nil {
			return err
		}
		if distance > *c.MaxDistanceKm {
			return ErrOutOfRange
		}
	}
	if !c.UserRules.Allows(req.UserID) {
		return &RuleViolationError{Axis: AxisUser}
	}
	return nil
}

// Clone returns a deep copy, used by stores that must not leak shared state.
func (c *Coupon) Clone() *Coupon {
	clone := *c
	clone.CategoryRules = slicesClone(c.CategoryRules)
	clone.ServiceRules = slicesClone(c.ServiceRules)
	clone.ProviderRules = slicesClone(c.ProviderRules)
	clone.UserRules = slicesClone(c.UserRules)
	if c.MaxDiscount != nil {
		v := *c.MaxDiscount
		clone.MaxDiscount = &v
	}
	if c.Center != nil {
		p := *c.Center
		clone.Center = &p
	}
	if c.MaxDistanceKm != nil {
		v := *c.MaxDistanceKm
		clone.MaxDistanceKm = &v
	}
	clone.UsedBy = make(map[string]time.Time, len(c.UsedBy))
	for k, v := range c.UsedBy {
		clone.UsedBy[k] = v
	}
	return &clone
}

func slicesClone(r RuleList) RuleList {
	if r == nil {
		return nil
	}
	out := make(RuleList, len(r))
	copy(out, r)
	return out
}
