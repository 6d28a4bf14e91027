package components

import (
	"payments-service/internal/infra/repository"
	"payments-service/internal/usecase/commands"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repository.NewCouponRepository,
			fx.As(new(commands.CouponRepository)),
		),
		fx.Annotate(
			repository.NewLedgerRepository,
			fx.As(new(commands.LedgerRepository)),
		),
	),
)
