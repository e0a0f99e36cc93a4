package airdrop

import "go.uber.org/fx"

var Module = fx.Module("airdrop.orchestrator",
	fx.Provide(NewOrchestrator),
)

// HTTPModule mounts the public routes on the shared gin engine.
var HTTPModule = fx.Module("airdrop.http",
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)

// SchedulerModule runs the daily content-reach sweep in this process.
var SchedulerModule = fx.Module("airdrop.scheduler",
	fx.Provide(NewScheduler),
	fx.Invoke(StartScheduler),
)
