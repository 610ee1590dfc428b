package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("OTP_RESEND_COOLDOWN_SECONDS", "45")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, 45*time.Second, cfg.OTP.ResendCooldown)
	assert.Equal(t, 24*time.Hour, cfg.OTP.Retention)
	assert.Equal(t, 15, cfg.JWT.AccessTokenMins)
	assert.False(t, cfg.SMTP.Enabled())
	assert.False(t, cfg.Twilio.Enabled())
	assert.Equal(t, "*", cfg.GetAllowedOrigins())
}

func TestLoadRejectsInvalidMode(t *testing.T) {
	t.Setenv("APP_MODE", "staging")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidDriver(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("DB_DRIVER", "oracle")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadProdRequiresSecrets(t *testing.T) {
	t.Setenv("APP_MODE", "prod")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("PROD_JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PROD_JWT_SECRET", "s1")
	t.Setenv("PROD_JWT_REFRESH_SECRET", "s2")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
	assert.False(t, cfg.Seed.DemoUsers)
}

func TestDSNBuilders(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "swadhrama", SSLMode: "disable"}
	assert.Contains(t, buildPostgresDSN(d), "host=db port=5432")
	assert.Contains(t, buildMySQLDSN(d), "u:p@tcp(db:5432)/swadhrama")

	_, err := openDialector(DatabaseConfig{Driver: "sqlserver"})
	assert.Error(t, err)
}
