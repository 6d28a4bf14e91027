package coupon

import "slices"

type RuleAxis string

const (
	AxisCategory RuleAxis = "category"
	AxisService  RuleAxis = "service"
	AxisProvider RuleAxis = "provider"
	AxisUser     RuleAxis = "user"
)

// RuleList is an optional allow-list for one rule axis. A nil or empty list
// places no restriction on that axis.
type RuleList []string

func (r RuleList) Allows(item string) bool {
	if len(r) == 0 {
		return true
	}
	return slices.Contains(r, item)
}

func (r RuleList) IsRestricted() bool {
	return len(r) > 0
}

// RuleViolationError reports which axis rejected the request. It unwraps to
// ErrRuleViolation so callers can match the whole family with errors.Is.
type RuleViolationError struct {
	Axis RuleAxis
}

func (e *RuleViolationError) Error() string {
	return string(e.Axis) + " rule not satisfied"
}

func (e *RuleViolationError) Unwrap() error {
	return ErrRuleViolation
}
