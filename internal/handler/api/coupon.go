package api

import (
	"net/http"

	"payments-service/internal/domain/coupon"
	reqdto "payments-service/internal/handler/dto/request"
	resdto "payments-service/internal/handler/dto/response"
	"payments-service/internal/handler/httperr"
	"payments-service/internal/pkg/geo"
	"payments-service/internal/usecase/commands"
	"payments-service/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type CouponHandler struct {
	cmds commands.CouponCommands
	q    queries.CouponQueries
}

func NewCouponHandler(cmds commands.CouponCommands, q queries.CouponQueries) *CouponHandler {
	return &CouponHandler{cmds: cmds, q: q}
}

func (h *CouponHandler) Create(c *gin.Context) {
	var req reqdto.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	cp, err := h.cmds.CreateCoupon(c.Request.Context(), req.ToSpec())
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromCoupon(cp))
}

func (h *CouponHandler) Get(c *gin.Context) {
	cp, err := h.q.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCoupon(cp))
}

func (h *CouponHandler) Delete(c *gin.Context) {
	if err := h.cmds.DeleteCoupon(c.Request.Context(), c.Param("code")); err != nil {
		abortDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CouponHandler) List(c *gin.Context) {
	var near *geo.Point
	if raw := c.Query("location"); raw != "" {
		p, err := reqdto.ParseLocation(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid location", nil)
			return
		}
		near = p
	}
	req := coupon.EligibilityRequest{
		UserID:     c.Query("user_id"),
		Category:   c.Query("category"),
		ServiceID:  c.Query("service_id"),
		ProviderID: c.Query("provider_id"),
	}
	items, err := h.q.ListAvailable(c.Request.Context(), req, near)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": resdto.FromCouponList(items)})
}

func (h *CouponHandler) Redeem(c *gin.Context) {
	var req reqdto.RedeemCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	userID := c.Param("user_id")
	result, err := h.cmds.RedeemCoupon(c.Request.Context(), c.Param("code"), req.ToEligibility(userID))
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRedeemResult(result))
}

type PurchaseHandler struct {
	cmds commands.PurchaseCommands
}

func NewPurchaseHandler(cmds commands.PurchaseCommands) *PurchaseHandler {
	return &PurchaseHandler{cmds: cmds}
}

func (h *PurchaseHandler) BuyCash(c *gin.Context) {
	var req reqdto.PurchaseCashCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	cp, err := h.cmds.BuyCashCoupon(c.Request.Context(), req.UserID, req.Amount)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromCoupon(cp))
}

func (h *PurchaseHandler) BuyDiscount(c *gin.Context) {
	var req reqdto.PurchaseDiscountCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	cp, err := h.cmds.BuyDiscountCoupon(c.Request.Context(), req.UserID, req.Percent)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromCoupon(cp))
}
