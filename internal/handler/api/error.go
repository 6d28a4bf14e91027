package api

import (
	"errors"
	"net/http"

	"payments-service/internal/domain/coupon"
	"payments-service/internal/domain/loyalty"
	"payments-service/internal/handler/httperr"
	"payments-service/internal/pkg/errs"
	"payments-service/internal/pkg/geo"

	"github.com/gin-gonic/gin"
)

// abortDomainError translates usecase and domain errors into HTTP responses.
// Sentinels decide the status; everything unrecognized is a 500 so store
// failures never leak as client errors.
func abortDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrCouponNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Coupon not found", nil)
	case errors.Is(err, errs.ErrLedgerNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "User has no loyalty account", nil)
	case errors.Is(err, errs.ErrDuplicateCode):
		httperr.AbortWithError(c, http.StatusConflict, err, "Coupon code already exists", nil)
	case errors.Is(err, coupon.ErrAlreadyUsed):
		httperr.AbortWithError(c, http.StatusConflict, err, "Coupon already used by this user", nil)
	case errors.Is(err, coupon.ErrExpired):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Coupon expired", nil)
	case errors.Is(err, coupon.ErrOutOfRange):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Location outside coupon area", nil)
	case errors.Is(err, coupon.ErrRuleViolation):
		var rv *coupon.RuleViolationError
		detail := any(nil)
		if errors.As(err, &rv) {
			detail = gin.H{"axis": string(rv.Axis)}
		}
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Coupon rules not satisfied", detail)
	case errors.Is(err, loyalty.ErrInsufficientPoints):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Insufficient points", nil)
	case errors.Is(err, loyalty.ErrInvalidPointAmount),
		errors.Is(err, errs.ErrValidation),
		errors.Is(err, geo.ErrInvalidCoordinate):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
	case errors.Is(err, errs.ErrPurchaseFailed):
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Purchase failed", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
	}
}
