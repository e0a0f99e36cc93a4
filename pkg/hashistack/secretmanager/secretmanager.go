package secretmanager

import (
	"os"
	"time"

	vault "github.com/hashicorp/vault-client-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("secretmanager", fx.Provide(ProvideVault))

// Enabled reports whether a vault address is configured in the environment.
func Enabled() bool {
	return os.Getenv("VAULT_ADDR") != ""
}

// Options returns Module when vault is configured, otherwise nothing, so the
// config loader falls back to plain config values.
func Options() fx.Option {
	if !Enabled() {
		return fx.Options()
	}
	return Module
}

func ProvideVault() (*vault.Client, error) {
	client, err := vault.New(
		vault.WithEnvironment(),
		vault.WithRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, err
	}

	zap.L().Info("[Vault] client configured", zap.String("addr", os.Getenv("VAULT_ADDR")))

	return client, nil
}
