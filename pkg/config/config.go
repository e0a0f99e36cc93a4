package config

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/vault-client-go"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	AppName    string `mapstructure:"APP_NAME"`
	AppVersion string `mapstructure:"APP_VERSION"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	NodeID     int64  `mapstructure:"NODE_ID"`
	TLS        struct {
		Enable   bool   `mapstructure:"ENABLE"`
		CertPath string `mapstructure:"CERT_PATH"`
		KeyPath  string `mapstructure:"KEY_PATH"`
	} `mapstructure:"TLS"`
	Otel struct {
		Addr     string `mapstructure:"ADDR"`
		Protocol string `mapstructure:"PROTOCOL"`
	} `mapstructure:"OTEL"`
	Pyroscope struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"PYROSCOPE"`
	Server struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
	Grpc struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"GRPC_SERVER"`
	Database struct {
		Type           string `mapstructure:"TYPE"`
		Host           string `mapstructure:"HOST"`
		Port           string `mapstructure:"PORT"`
		DBNAME         string `mapstructure:"DBNAME"`
		User           string `mapstructure:"USER"`
		Password       string `mapstructure:"PASSWORD"`
		SSLMode        string `mapstructure:"SSLMODE"`
		Timezone       string `mapstructure:"TIMEZONE"`
		Metrics        bool   `mapstructure:"METRICS"`
		ConnectionPool struct {
			MaxIdleConn     int           `mapstructure:"MAX_IDLE_CONN"`
			MaxOpenConns    int           `mapstructure:"MAX_OPEN_CONNS"`
			ConnMaxLifetime time.Duration `mapstructure:"CONN_MAX_LIFETIME"`
			ConnMaxIdleTime time.Duration `mapstructure:"CONN_MAX_IDLE_TIME"`
		} `mapstructure:"CONNECTION_POOL"`
	} `mapstructure:"DATABASE"`
	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`
	Flagsmith struct {
		Addr   string `mapstructure:"ADDR"`
		ApiKey string `mapstructure:"API_KEY"`
	} `mapstructure:"FLAGSMITH"`
	Airdrop Airdrop `mapstructure:"AIRDROP"`
}

// Airdrop holds the claim engine, sweep and reconciliation settings.
type Airdrop struct {
	Decimals          int32         `mapstructure:"DECIMALS"`
	ScheduleHour      int           `mapstructure:"SCHEDULE_HOUR"`
	ScheduleMinute    int           `mapstructure:"SCHEDULE_MINUTE"`
	SweepLockTTL      time.Duration `mapstructure:"SWEEP_LOCK_TTL"`
	ReconcileAfter    time.Duration `mapstructure:"RECONCILE_AFTER"`
	ReconcileCron     string        `mapstructure:"RECONCILE_CRON"`
	ReconcileBatch    int           `mapstructure:"RECONCILE_BATCH"`
	MaxVerifyAttempts int64         `mapstructure:"MAX_VERIFY_ATTEMPTS"`
}

func (a *Airdrop) applyDefaults() {
	if a.Decimals <= 0 {
		a.Decimals = 8
	}
	if a.ScheduleHour < 0 || a.ScheduleHour > 23 {
		a.ScheduleHour = 0
	}
	if a.ScheduleMinute < 0 || a.ScheduleMinute > 59 {
		a.ScheduleMinute = 0
	}
	if a.SweepLockTTL <= 0 {
		a.SweepLockTTL = time.Hour
	}
	if a.ReconcileAfter <= 0 {
		a.ReconcileAfter = 10 * time.Minute
	}
	if a.ReconcileCron == "" {
		a.ReconcileCron = "@every 5m"
	}
	if a.ReconcileBatch <= 0 {
		a.ReconcileBatch = 100
	}
	if a.MaxVerifyAttempts <= 0 {
		a.MaxVerifyAttempts = 10
	}
}

// Default returns a config with the airdrop defaults filled in. Used by tests
// and tools that run without a config file.
func Default() *Config {
	var cfg Config
	cfg.AppEnv = "development"
	cfg.AppName = "airdrop-ledger"
	cfg.Airdrop.applyDefaults()
	return &cfg
}

var Module = fx.Module("config", fx.Provide(LoadConfig))

type Params struct {
	fx.In
	Vault *vault.Client `optional:"true"`
}

func LoadConfig(p Params) *Config {
	config := viper.New()
	config.SetConfigName("config")
	config.SetConfigType("yaml")
	config.AddConfigPath(".")

	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	if err := config.ReadInConfig(); err != nil {
		zap.L().Error("failed to read config", zap.Error(err))
		os.Exit(1)
	}

	var cfg Config
	if err := config.Unmarshal(&cfg); err != nil {
		zap.L().Error("failed to unmarshal config", zap.Error(err))
		os.Exit(1)
	}

	cfg.Airdrop.applyDefaults()

	if p.Vault != nil {
		if err := overlaySecrets(context.Background(), p.Vault, &cfg); err != nil {
			zap.L().Error("failed get secret from vault", zap.Error(err))
			os.Exit(1)
		}
	}

	return &cfg
}

func overlaySecrets(ctx context.Context, client *vault.Client, cfg *Config) error {
	zap.L().Info("Starting Get Secrets", zap.String("path", cfg.AppEnv))
	secret, err := client.Secrets.KvV2Read(ctx, cfg.AppEnv, vault.WithMountPath("secret"))
	if err != nil {
		return err
	}
	zap.L().Info("Success Get Secret")

	get := func(key, fallback string) string {
		if val, ok := secret.Data.Data[key].(string); ok && val != "" {
			return val
		}
		return fallback
	}

	cfg.Database.User = get("postgres_user", cfg.Database.User)
	cfg.Database.Password = get("postgres_password", cfg.Database.Password)
	cfg.Redis.Password = get("redis_password", cfg.Redis.Password)
	cfg.Flagsmith.ApiKey = get("flagsmith_api_key", cfg.Flagsmith.ApiKey)

	return nil
}
