package featureflags

import (
	"context"

	"airdrop-ledger/pkg/config"

	"github.com/Flagsmith/flagsmith-go-client/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("featureflags", fx.Provide(ProvideFeatureFlag))

// Flag names
const (
	ContentReachSweep = "airdrop_content_reach_sweep"
)

type FeatureFlag interface {
	// IsEnabled reports the environment flag, or fallback when no flag
	// service is configured or it cannot be reached.
	IsEnabled(ctx context.Context, name string, fallback bool) bool
}

type featureflag struct {
	client *flagsmith.Client
}

type FeatureParams struct {
	fx.In
	Config *config.Config
}

func ProvideFeatureFlag(p FeatureParams) FeatureFlag {
	if p.Config.Flagsmith.ApiKey == "" {
		return &featureflag{}
	}

	opts := []flagsmith.Option{
		flagsmith.WithAnalytics(),
	}
	if p.Config.Flagsmith.Addr != "" {
		opts = append(opts, flagsmith.WithBaseURL(p.Config.Flagsmith.Addr))
	}

	return &featureflag{
		client: flagsmith.NewClient(p.Config.Flagsmith.ApiKey, opts...),
	}
}

func (s *featureflag) IsEnabled(ctx context.Context, name string, fallback bool) bool {
	if s.client == nil {
		return fallback
	}

	flags, err := s.client.GetEnvironmentFlags()
	if err != nil {
		zap.L().Warn("[FeatureFlag] failed to fetch flags, using fallback",
			zap.String("flag", name),
			zap.Bool("fallback", fallback),
			zap.Error(err),
		)
		return fallback
	}

	enabled, err := flags.IsFeatureEnabled(name)
	if err != nil {
		return fallback
	}
	return enabled
}
