package ioc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
telegram:
  token: ""
  send_interval: 1s
exchange:
  binance:
    enabled: true
    api_key: file-key
    api_secret: ""
`

func writeConfig(t *testing.T) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(testConfig), 0o644))
	t.Cleanup(viper.Reset)
	return file
}

func TestInitViper_EnvOverride(t *testing.T) {
	t.Setenv("OI_TELEGRAM_TOKEN", "secret-from-env")
	t.Setenv("OI_EXCHANGE_BINANCE_API_SECRET", "env-secret")
	InitViper(writeConfig(t))

	tg := InitTelegramConfig()
	assert.Equal(t, "secret-from-env", tg.Token)
	assert.Equal(t, "1s", tg.SendInterval.String())

	var cfg exchangeConfig
	require.NoError(t, unmarshalKey("exchange", &cfg))
	assert.Equal(t, "file-key", cfg.Binance.ApiKey)
	assert.Equal(t, "env-secret", cfg.Binance.ApiSecret)
}

func TestInitViper_FileValue(t *testing.T) {
	InitViper(writeConfig(t))

	assert.Empty(t, InitTelegramConfig().Token)
	assert.Panics(t, func() { InitTelegramCli(InitTelegramConfig()) })
}
