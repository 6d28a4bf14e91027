package components

import (
	"payments-service/internal/handler"
	"payments-service/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCouponHandler,
		api.NewPurchaseHandler,
		api.NewLoyaltyHandler,
	),
	fx.Invoke(handler.NewRouter),
)
