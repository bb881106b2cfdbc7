package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "activation")
	t.Setenv("DB_NAME", "activation")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 60*time.Second, cfg.Chat.TicketTTL)
	assert.Equal(t, "Asia/Seoul", cfg.Timezone.String())
	assert.Equal(t, []string{"customerEmail"}, cfg.Carriers.RequiredFields("LGU"))
}

func TestLoad_MissingDatabase(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_CarrierSettingsFile(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "carriers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"KT":["customerEmail","desiredNumber"]}`), 0o600))
	t.Setenv("CARRIER_SETTINGS_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"customerEmail", "desiredNumber"}, cfg.Carriers.RequiredFields("KT"))
	assert.Empty(t, cfg.Carriers.RequiredFields("SKT"))
}

func TestLoad_SplitsAllowedOrigins(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CHAT_ALLOWED_ORIGINS", "app.example.com, admin.example.com ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"app.example.com", "admin.example.com"}, cfg.Chat.AllowedOrigins)
}
