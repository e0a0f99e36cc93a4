package account

import "go.uber.org/fx"

var Module = fx.Module("account.directory",
	fx.Provide(
		NewStore,
		func(s *Store) Directory { return s },
	),
)
