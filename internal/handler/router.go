package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"payments-service/internal/handler/api"
	"payments-service/internal/handler/middleware"
	"payments-service/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	couponHandler *api.CouponHandler,
	purchaseHandler *api.PurchaseHandler,
	loyaltyHandler *api.LoyaltyHandler,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, couponHandler, purchaseHandler, loyaltyHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	couponHandler *api.CouponHandler,
	purchaseHandler *api.PurchaseHandler,
	loyaltyHandler *api.LoyaltyHandler,
) {
	engine.GET("/health", healthCheck)

	apiGroup := engine.Group("/api")
	{
		coupons := apiGroup.Group("/coupons")
		{
			addRoutes(coupons, []route{
				{Method: http.MethodPost, Path: "", Handler: couponHandler.Create},
				{Method: http.MethodGet, Path: "", Handler: couponHandler.List},
				{Method: http.MethodGet, Path: "/:code", Handler: couponHandler.Get},
				{Method: http.MethodDelete, Path: "/:code", Handler: couponHandler.Delete},
				{Method: http.MethodPut, Path: "/:code/redeem/:user_id", Handler: couponHandler.Redeem},
			})
		}

		// Purchases live outside /coupons because the router tree cannot
		// mix a static "purchase" segment with the ":code" parameter.
		purchases := apiGroup.Group("/purchases")
		{
			addRoutes(purchases, []route{
				{Method: http.MethodPost, Path: "/cash", Handler: purchaseHandler.BuyCash},
				{Method: http.MethodPost, Path: "/discount", Handler: purchaseHandler.BuyDiscount},
			})
		}

		loyalty := apiGroup.Group("/loyalty")
		{
			addRoutes(loyalty, []route{
				{Method: http.MethodPost, Path: "/:user_id/credit", Handler: loyaltyHandler.Credit},
				{Method: http.MethodPost, Path: "/:user_id/debit", Handler: loyaltyHandler.Debit},
				{Method: http.MethodPost, Path: "/:user_id/transactions", Handler: loyaltyHandler.RegisterTransaction},
				{Method: http.MethodGet, Path: "/:user_id/points", Handler: loyaltyHandler.Points},
				{Method: http.MethodGet, Path: "/:user_id/history", Handler: loyaltyHandler.History},
			})
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, r.Handler)
		case http.MethodPost:
			g.POST(r.Path, r.Handler)
		case http.MethodPut:
			g.PUT(r.Path, r.Handler)
		case http.MethodPatch:
			g.PATCH(r.Path, r.Handler)
		case http.MethodDelete:
			g.DELETE(r.Path, r.Handler)
		default:
			g.Any(r.Path, r.Handler)
		}
	}
}
