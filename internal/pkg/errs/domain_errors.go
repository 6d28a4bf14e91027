package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Coupon errors
	ErrCouponNotFound = errors.New("coupon not found")
	ErrDuplicateCode  = errors.New("coupon code already exists")

	// Loyalty errors
	ErrLedgerNotFound = errors.New("loyalty ledger not found")

	// Purchase errors
	ErrPurchaseFailed = errors.New("coupon purchase failed")

	// Validation errors
	ErrValidation = errors.New("validation error")

	// Operation errors
	ErrStoreFailure = errors.New("store operation failed")
)
