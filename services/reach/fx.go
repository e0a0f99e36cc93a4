package reach

import "go.uber.org/fx"

var Module = fx.Module("reach.source",
	fx.Provide(
		NewStore,
		func(s *Store) Source { return s },
	),
)
