package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

// baseValidConfig returns a fully-valid configuration object that callers
// can tweak inside table tests.
func baseValidConfig() Config {
	return Config{
		AppPort:                 8080,
		BcryptCost:              12,
		SignInRatePerMin:        5,
		LogLevel:                "info",
		LogFormat:               "json",
		MongoURI:                "mongodb://localhost:27017",
		MongoDBName:             "test",
		JWTSecret:               "this-is-a-super-secret-jwt-key-with-32-plus-chars",
		JWTAlgorithm:            "HS256",
		JWTExpiryMinutes:        60,
		RegistrationMaxAttempts: 5,
		BodyLimitMB:             25,
		CORSAllowOrigins:        "*",
		WSMaxSessionSec:         900,
		WSOutboxBuffer:          256,
	}
}

// clearConfigEnvVars removes every environment variable that the Config loader
// consumes so each test starts with a clean slate.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()

	for _, k := range []string{
		"APP_PORT",
		"BCRYPT_COST",
		"SIGNIN_RATE_PER_MIN",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"MONGO_URI",
		"MONGO_DB_NAME",
		"JWT_SECRET",
		"JWT_ALGORITHM",
		"JWT_EXPIRY_MINUTES",
		"REGISTRATION_MAX_ATTEMPTS",
		"BODY_LIMIT_MB",
		"CORS_ALLOW_ORIGINS",
		"WS_MAX_SESSION_SEC",
		"WS_OUTBOX_BUFFER",
		"ROUTE_METRICS_ENABLED",
		"REQUEST_LOGGING_ENABLED",
		"REDIS_URL",
		"REDIS_EVENTS_CHANNEL",
		"PYROSCOPE_SERVER_ADDRESS",
	} {
		if err := os.Unsetenv(k); err != nil {
			t.Logf("warning: failed to unset %s: %v", k, err)
		}
	}
}

func TestConfigLoadDefaults(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.AppPort)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 5, cfg.SignInRatePerMin)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "mongodb://mongo:27017", cfg.MongoURI)
	assert.Equal(t, "auctionhouse", cfg.MongoDBName)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 1440, cfg.JWTExpiryMinutes)
	assert.Equal(t, 5, cfg.RegistrationMaxAttempts)
	assert.Equal(t, 25, cfg.BodyLimitMB)
	assert.Equal(t, "*", cfg.CORSAllowOrigins)
	assert.Equal(t, 900, cfg.WSMaxSessionSec)
	assert.Equal(t, 256, cfg.WSOutboxBuffer)
	assert.True(t, cfg.RouteMetricsEnabled)
	assert.True(t, cfg.RequestLoggingEnabled)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "auctionhouse:product-events", cfg.RedisEventsChannel)
	assert.Empty(t, cfg.PyroscopeServerAddress)
}

func TestConfigLoadWithOverride(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	t.Setenv("APP_PORT", "9999")
	t.Setenv("REGISTRATION_MAX_ATTEMPTS", "9")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.AppPort)
	assert.Equal(t, 9, cfg.RegistrationMaxAttempts)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "auctionhouse", cfg.MongoDBName)
}

func TestConfigCaching(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	cfg1, err := Load()
	require.NoError(t, err)

	// a changed env var must not leak in until the cache is reset
	t.Setenv("APP_PORT", "7777")

	cfg2, err := Load()
	require.NoError(t, err)

	assert.Equal(t, cfg1, cfg2)
}

func TestConfigLoadRejectsInvalidEnv(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	t.Setenv("BCRYPT_COST", "4")

	_, err := Load()
	require.ErrorIs(t, err, ErrBcryptCostRange)
}

func TestConfigRequestLoggingDisabled(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	t.Setenv("REQUEST_LOGGING_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.RequestLoggingEnabled)
}

// -----------------------------------------------------------------------------
// Validate() unit tests (table-driven)
// -----------------------------------------------------------------------------

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:   "valid config",
			modify: func(*Config) {},
		},
		{
			name:    "invalid port - zero",
			modify:  func(c *Config) { c.AppPort = 0 },
			wantErr: ErrAppPortRange,
		},
		{
			name:    "invalid port - too high",
			modify:  func(c *Config) { c.AppPort = 70000 },
			wantErr: ErrAppPortRange,
		},
		{
			name:    "empty log level",
			modify:  func(c *Config) { c.LogLevel = "" },
			wantErr: ErrLogLevelEmpty,
		},
		{
			name:    "empty mongo uri",
			modify:  func(c *Config) { c.MongoURI = "" },
			wantErr: ErrMongoURIEmpty,
		},
		{
			name:    "empty JWT secret",
			modify:  func(c *Config) { c.JWTSecret = "" },
			wantErr: ErrJWTSecretRequired,
		},
		{
			name:    "JWT secret too short for HS256",
			modify:  func(c *Config) { c.JWTSecret = "short" },
			wantErr: ErrJWTSecretTooShort,
		},
		{
			name:    "unsupported JWT algorithm",
			modify:  func(c *Config) { c.JWTAlgorithm = "RS256" },
			wantErr: ErrJWTAlgorithmUnsupported,
		},
		{
			name:    "bcrypt cost too low",
			modify:  func(c *Config) { c.BcryptCost = 7 },
			wantErr: ErrBcryptCostRange,
		},
		{
			name:    "signin rate too low",
			modify:  func(c *Config) { c.SignInRatePerMin = 0 },
			wantErr: ErrSignInRatePerMin,
		},
		{
			name:    "zero token expiry",
			modify:  func(c *Config) { c.JWTExpiryMinutes = 0 },
			wantErr: ErrJWTExpiryMinutes,
		},
		{
			name:    "zero registration attempts",
			modify:  func(c *Config) { c.RegistrationMaxAttempts = 0 },
			wantErr: ErrRegistrationMaxAttempts,
		},
		{
			name:    "zero body limit",
			modify:  func(c *Config) { c.BodyLimitMB = 0 },
			wantErr: ErrBodyLimitMB,
		},
		{
			name:    "redis without channel",
			modify:  func(c *Config) { c.RedisURL = "redis://localhost:6379"; c.RedisEventsChannel = "" },
			wantErr: ErrRedisEventsChannelEmpty,
		},
		{
			name:   "channel may be empty without redis",
			modify: func(c *Config) { c.RedisEventsChannel = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseValidConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
