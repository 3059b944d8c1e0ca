package config

import (
	"errors"
	"sync"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	AppPort                 int    `mapstructure:"APP_PORT"`
	BcryptCost              int    `mapstructure:"BCRYPT_COST"`
	SignInRatePerMin        int    `mapstructure:"SIGNIN_RATE_PER_MIN"`
	LogLevel                string `mapstructure:"LOG_LEVEL"`
	LogFormat               string `mapstructure:"LOG_FORMAT"`
	MongoURI                string `mapstructure:"MONGO_URI"`
	MongoDBName             string `mapstructure:"MONGO_DB_NAME"`
	JWTSecret               string `mapstructure:"JWT_SECRET"`
	JWTAlgorithm            string `mapstructure:"JWT_ALGORITHM"`
	JWTExpiryMinutes        int    `mapstructure:"JWT_EXPIRY_MINUTES"`
	RegistrationMaxAttempts int    `mapstructure:"REGISTRATION_MAX_ATTEMPTS"`
	BodyLimitMB             int    `mapstructure:"BODY_LIMIT_MB"`
	CORSAllowOrigins        string `mapstructure:"CORS_ALLOW_ORIGINS"`
	WSMaxSessionSec         int    `mapstructure:"WS_MAX_SESSION_SEC"`
	WSOutboxBuffer          int    `mapstructure:"WS_OUTBOX_BUFFER"`
	RouteMetricsEnabled     bool   `mapstructure:"ROUTE_METRICS_ENABLED"`
	RequestLoggingEnabled   bool   `mapstructure:"REQUEST_LOGGING_ENABLED"`
	RedisURL                string `mapstructure:"REDIS_URL"`
	RedisEventsChannel      string `mapstructure:"REDIS_EVENTS_CHANNEL"`
	PyroscopeServerAddress  string `mapstructure:"PYROSCOPE_SERVER_ADDRESS"`
}

var (
	cachedConfig *Config
	configMutex  sync.RWMutex
)

// Load loads configuration from environment variables and .env file
// It caches the result for subsequent calls
func Load() (Config, error) {
	configMutex.RLock()
	if cachedConfig != nil {
		defer configMutex.RUnlock()
		return *cachedConfig, nil
	}
	configMutex.RUnlock()

	configMutex.Lock()
	defer configMutex.Unlock()

	// Double-check in case another goroutine loaded it while we waited for the lock
	if cachedConfig != nil {
		return *cachedConfig, nil
	}

	v := viper.New()

	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SIGNIN_RATE_PER_MIN", 5)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MONGO_URI", "mongodb://mongo:27017")
	v.SetDefault("MONGO_DB_NAME", "auctionhouse")
	v.SetDefault("JWT_SECRET", "this-is-a-default-jwt-secret-key-with-32-plus-characters")
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("JWT_EXPIRY_MINUTES", 1440)
	v.SetDefault("REGISTRATION_MAX_ATTEMPTS", 5)
	v.SetDefault("BODY_LIMIT_MB", 25) // base64 images travel inline
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("WS_MAX_SESSION_SEC", 900)
	v.SetDefault("WS_OUTBOX_BUFFER", 256)
	v.SetDefault("ROUTE_METRICS_ENABLED", true)
	v.SetDefault("REQUEST_LOGGING_ENABLED", true)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_EVENTS_CHANNEL", "auctionhouse:product-events")
	v.SetDefault("PYROSCOPE_SERVER_ADDRESS", "")

	// Configure Viper to read from .env file (if present)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// Try to read .env file (it's okay if it doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	// Override with OS environment variables
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	cachedConfig = &cfg

	return cfg, nil
}

// ResetCache clears the cached configuration (for testing purposes)
func ResetCache() {
	configMutex.Lock()
	defer configMutex.Unlock()
	cachedConfig = nil
}

// Validation errors returned by Validate
var (
	ErrAppPortRange            = errors.New("APP_PORT must be between 1 and 65535")
	ErrBcryptCostRange         = errors.New("BCRYPT_COST must be between 10 and 16")
	ErrSignInRatePerMin        = errors.New("SIGNIN_RATE_PER_MIN must be greater than or equal to 1")
	ErrLogLevelEmpty           = errors.New("LOG_LEVEL cannot be empty")
	ErrLogFormatEmpty          = errors.New("LOG_FORMAT cannot be empty")
	ErrMongoURIEmpty           = errors.New("MONGO_URI cannot be empty")
	ErrMongoDBNameEmpty        = errors.New("MONGO_DB_NAME cannot be empty")
	ErrJWTSecretRequired       = errors.New("JWT_SECRET cannot be empty")
	ErrJWTSecretTooShort       = errors.New("JWT_SECRET must be at least 32 characters for HS256")
	ErrJWTAlgorithmUnsupported = errors.New("JWT_ALGORITHM must be HS256")
	ErrJWTExpiryMinutes        = errors.New("JWT_EXPIRY_MINUTES must be greater than 0")
	ErrRegistrationMaxAttempts = errors.New("REGISTRATION_MAX_ATTEMPTS must be greater than or equal to 1")
	ErrBodyLimitMB             = errors.New("BODY_LIMIT_MB must be greater than or equal to 1")
	ErrCORSAllowOriginsEmpty   = errors.New("CORS_ALLOW_ORIGINS cannot be empty")
	ErrWSMaxSessionSec         = errors.New("WS_MAX_SESSION_SEC must be greater than 0")
	ErrWSOutboxBuffer          = errors.New("WS_OUTBOX_BUFFER must be greater than 0")
	ErrRedisEventsChannelEmpty = errors.New("REDIS_EVENTS_CHANNEL cannot be empty when REDIS_URL is set")
)

// Validate checks if required configuration fields are properly set
func (c Config) Validate() error {
	if c.AppPort <= 0 || c.AppPort > 65535 {
		return ErrAppPortRange
	}
	if c.BcryptCost < 10 || c.BcryptCost > 16 {
		return ErrBcryptCostRange
	}
	if c.SignInRatePerMin < 1 {
		return ErrSignInRatePerMin
	}
	if c.LogLevel == "" {
		return ErrLogLevelEmpty
	}
	if c.LogFormat == "" {
		return ErrLogFormatEmpty
	}
	if c.MongoURI == "" {
		return ErrMongoURIEmpty
	}
	if c.MongoDBName == "" {
		return ErrMongoDBNameEmpty
	}
	if c.JWTSecret == "" {
		return ErrJWTSecretRequired
	}
	if c.JWTAlgorithm != "HS256" {
		return ErrJWTAlgorithmUnsupported
	}
	if len(c.JWTSecret) < 32 {
		return ErrJWTSecretTooShort
	}
	if c.JWTExpiryMinutes <= 0 {
		return ErrJWTExpiryMinutes
	}
	if c.RegistrationMaxAttempts < 1 {
		return ErrRegistrationMaxAttempts
	}
	if c.BodyLimitMB < 1 {
		return ErrBodyLimitMB
	}
	if c.CORSAllowOrigins == "" {
		return ErrCORSAllowOriginsEmpty
	}
	if c.WSMaxSessionSec <= 0 {
		return ErrWSMaxSessionSec
	}
	if c.WSOutboxBuffer <= 0 {
		return ErrWSOutboxBuffer
	}
	if c.RedisURL != "" && c.RedisEventsChannel == "" {
		return ErrRedisEventsChannelEmpty
	}
	return nil
}
