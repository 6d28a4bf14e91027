//go:build unit

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"payments-service/internal/handler/api"
	"payments-service/internal/infra/memstore"
	"payments-service/internal/pkg/clock"
	"payments-service/internal/pkg/config"
	"payments-service/internal/usecase/commands"
	"payments-service/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

var handlerTestTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type CouponHandlerTestSuite struct {
	suite.Suite
	router  *gin.Engine
	coupons *memstore.CouponStore
	ledgers *memstore.LedgerStore
	clock   *clock.MockClock
	loyalty commands.LoyaltyCommands
}

func (s *CouponHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.coupons = memstore.NewCouponStore()
	s.ledgers = memstore.NewLedgerStore()
	s.clock = clock.NewMockClock(handlerTestTime)
	cfg := config.NewTestConfig().Loyalty

	s.loyalty = commands.NewLoyaltyCommands(s.ledgers, s.clock, cfg)
	couponCmds := commands.NewCouponCommands(s.coupons, s.loyalty, s.clock)
	purchaseCmds := commands.NewPurchaseCommands(s.coupons, s.ledgers, s.loyalty, s.clock, cfg)
	couponQueries := queries.NewCouponQueries(s.coupons, s.clock)

	couponHandler := api.NewCouponHandler(couponCmds, couponQueries)
	purchaseHandler := api.NewPurchaseHandler(purchaseCmds)

	s.router.POST("/api/coupons", couponHandler.Create)
	s.router.GET("/api/coupons", couponHandler.List)
	s.router.GET("/api/coupons/:code", couponHandler.Get)
	s.router.DELETE("/api/coupons/:code", couponHandler.Delete)
	s.router.PUT("/api/coupons/:code/redeem/:user_id", couponHandler.Redeem)
	s.router.POST("/api/purchases/cash", purchaseHandler.BuyCash)
	s.router.POST("/api/purchases/discount", purchaseHandler.BuyDiscount)
}

func TestCouponHandlerSuite(t *testing.T) {
	suite.Run(t, new(CouponHandlerTestSuite))
}

func (s *CouponHandlerTestSuite) perform(method, url string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *CouponHandlerTestSuite) createBody() map[string]any {
	return map[string]any{
		"code":             "SUMMER20",
		"discount_percent": 20,
		"expires_at":       handlerTestTime.Add(30 * 24 * time.Hour).Format(time.RFC3339),
		"category_rules":   []string{"beauty"},
	}
}

func (s *CouponHandlerTestSuite) TestCreate() {
	s.Run("returns 201 for a valid coupon", func() {
		rec := s.perform(http.MethodPost, "/api/coupons", s.createBody())
		s.Equal(http.StatusCreated, rec.Code)

		var resp map[string]any
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("SUMMER20", resp["code"])
	})

	s.Run("returns 409 for a duplicate code", func() {
		s.Equal(http.StatusCreated, s.perform(http.MethodPost, "/api/coupons", s.createBody()).Code)
		s.Equal(http.StatusConflict, s.perform(http.MethodPost, "/api/coupons", s.createBody()).Code)
	})

	s.Run("returns 400 when the discount is out of range", func() {
		body := s.createBody()
		body["discount_percent"] = 150
		s.Equal(http.StatusBadRequest, s.perform(http.MethodPost, "/api/coupons", body).Code)
	})

	s.Run("returns 400 when no rule restricts the coupon", func() {
		body := s.createBody()
		delete(body, "category_rules")
		s.Equal(http.StatusBadRequest, s.perform(http.MethodPost, "/api/coupons", body).Code)
	})
}

func (s *CouponHandlerTestSuite) TestGetAndDelete() {
	s.Run("round-trips a coupon", func() {
		s.Equal(http.StatusCreated, s.perform(http.MethodPost, "/api/coupons", s.createBody()).Code)
		s.Equal(http.StatusOK, s.perform(http.MethodGet, "/api/coupons/SUMMER20", nil).Code)
		s.Equal(http.StatusNoContent, s.perform(http.MethodDelete, "/api/coupons/SUMMER20", nil).Code)
		s.Equal(http.StatusNotFound, s.perform(http.MethodGet, "/api/coupons/SUMMER20", nil).Code)
	})

	s.Run("delete of an unknown code returns 404", func() {
		s.Equal(http.StatusNotFound, s.perform(http.MethodDelete, "/api/coupons/NOPE", nil).Code)
	})
}

func (s *CouponHandlerTestSuite) TestList() {
	s.Run("filters to what the caller can redeem", func() {
		s.Equal(http.StatusCreated, s.perform(http.MethodPost, "/api/coupons", s.createBody()).Code)

		rec := s.perform(http.MethodGet, "/api/coupons?user_id=user-1&category=beauty", nil)
		s.Equal(http.StatusOK, rec.Code)
		var resp struct {
			Coupons []map[string]any `json:"coupons"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Len(resp.Coupons, 1)

		rec = s.perform(http.MethodGet, "/api/coupons?user_id=user-1&category=plumbing", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Empty(resp.Coupons)
	})

	s.Run("rejects a malformed location", func() {
		rec := s.perform(http.MethodGet, "/api/coupons?location=not-a-point", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *CouponHandlerTestSuite) TestRedeem() {
	redeemBody := map[string]any{"category": "beauty"}

	s.Run("returns the discount terms", func() {
		s.Equal(http.StatusCreated, s.perform(http.MethodPost, "/api/coupons", s.createBody()).Code)

		rec := s.perform(http.MethodPut, "/api/coupons/SUMMER20/redeem/user-1", redeemBody)
		s.Equal(http.StatusOK, rec.Code)

		var resp map[string]any
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(20.0, resp["discount_percent"])
	})

	s.Run("second redemption by the same user returns 409", func() {
		s.Equal(http.StatusCreated, s.perform(http.MethodPost, "/api/coupons", s.createBody()).Code)
		s.Equal(http.StatusOK, s.perform(http.MethodPut, "/api/coupons/SUMMER20/redeem/user-1", redeemBody).Code)
		s.Equal(http.StatusConflict, s.perform(http.MethodPut, "/api/coupons/SUMMER20/redeem/user-1", redeemBody).Code)
	})

	s.Run("expired coupon returns 400", func() {
		s.Equal(http.StatusCreated, s.perform(http.MethodPost, "/api/coupons", s.createBody()).Code)
		s.clock.Add(31 * 24 * time.Hour)
		s.Equal(http.StatusBadRequest, s.perform(http.MethodPut, "/api/coupons/SUMMER20/redeem/user-1", redeemBody).Code)
	})

	s.Run("rule violation reports the failing axis", func() {
		s.Equal(http.StatusCreated, s.perform(http.MethodPost, "/api/coupons", s.createBody()).Code)

		rec := s.perform(http.MethodPut, "/api/coupons/SUMMER20/redeem/user-1", map[string]any{"category": "plumbing"})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), `"axis":"category"`)
	})

	s.Run("unknown coupon returns 404", func() {
		s.Equal(http.StatusNotFound, s.perform(http.MethodPut, "/api/coupons/NOPE/redeem/user-1", redeemBody).Code)
	})
}

func (s *CouponHandlerTestSuite) TestPurchase() {
	ctx := context.Background()

	s.Run("cash purchase issues a personal coupon", func() {
		s.Require().NoError(s.loyalty.CreditPoints(ctx, "user-1", 500, "signup"))

		rec := s.perform(http.MethodPost, "/api/purchases/cash", map[string]any{
			"user_id": "user-1",
			"amount":  30,
		})
		s.Equal(http.StatusCreated, rec.Code)

		var resp map[string]any
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(100.0, resp["discount_percent"])
		s.Equal(30.0, resp["max_discount"])
		s.Equal([]any{"user-1"}, resp["user_rules"])
	})

	s.Run("discount purchase without funds returns 400", func() {
		rec := s.perform(http.MethodPost, "/api/purchases/discount", map[string]any{
			"user_id": "user-2",
			"percent": 20,
		})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "Insufficient points")
	})

	s.Run("missing body fields return 400", func() {
		rec := s.perform(http.MethodPost, "/api/purchases/cash", map[string]any{"amount": 10})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
