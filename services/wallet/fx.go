package wallet

import "go.uber.org/fx"

var Module = fx.Module("wallet.calculator",
	fx.Provide(NewCalculator),
)
