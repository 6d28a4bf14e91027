package api

import (
	"net/http"

	reqdto "payments-service/internal/handler/dto/request"
	resdto "payments-service/internal/handler/dto/response"
	"payments-service/internal/handler/httperr"
	"payments-service/internal/usecase/commands"
	"payments-service/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type LoyaltyHandler struct {
	cmds commands.LoyaltyCommands
	q    queries.LoyaltyQueries
}

func NewLoyaltyHandler(cmds commands.LoyaltyCommands, q queries.LoyaltyQueries) *LoyaltyHandler {
	return &LoyaltyHandler{cmds: cmds, q: q}
}

func (h *LoyaltyHandler) Credit(c *gin.Context) {
	var req reqdto.CreditPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	userID := c.Param("user_id")
	if err := h.cmds.CreditPoints(c.Request.Context(), userID, req.Points, req.Description); err != nil {
		abortDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LoyaltyHandler) Debit(c *gin.Context) {
	var req reqdto.DebitPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	userID := c.Param("user_id")
	if err := h.cmds.DebitPoints(c.Request.Context(), userID, req.Points, req.Description); err != nil {
		abortDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LoyaltyHandler) RegisterTransaction(c *gin.Context) {
	var req reqdto.CashTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	userID := c.Param("user_id")
	if err := h.cmds.RegisterCashTransaction(c.Request.Context(), userID, req.Amount, req.Description); err != nil {
		abortDomainError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *LoyaltyHandler) Points(c *gin.Context) {
	userID := c.Param("user_id")
	view, err := h.q.Balance(c.Request.Context(), userID)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBalanceView(userID, view))
}

func (h *LoyaltyHandler) History(c *gin.Context) {
	userID := c.Param("user_id")
	entries, err := h.q.History(c.Request.Context(), userID)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromHistory(userID, entries))
}
