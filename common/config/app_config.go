package config

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// AppConfig holds the process-wide configuration for the donor registry.
// Loaded once at startup and injected into the services that need it;
// nothing reads the environment after Load has run.
type AppConfig struct {
	// Admin credentials (static, compared as-is - there is no admin table)
	AdminUsername string
	AdminPassword string

	// Token signing
	JWTSecret            string
	JWTExpirationSeconds int

	// OTP issuance
	OTPLength            int
	OTPExpirationMinutes int
	OTPSweepMinutes      int

	// OTPFailClosed controls what happens when the OTP email cannot be
	// delivered: true fails the request, false logs and keeps the stored
	// code valid.
	OTPFailClosed bool
}

var (
	appConfig *AppConfig
	loadOnce  sync.Once
)

// Load reads configuration from the environment. Safe to call from any
// goroutine; only the first call reads the environment.
func Load() *AppConfig {
	loadOnce.Do(func() {
		appConfig = &AppConfig{
			AdminUsername:        getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword:        getEnv("ADMIN_PASSWORD", ""),
			JWTSecret:            getEnv("JWT_SECRET", ""),
			JWTExpirationSeconds: getEnvInt("JWT_EXPIRATION_SECONDS", 86400),
			OTPLength:            getEnvInt("OTP_LENGTH", 6),
			OTPExpirationMinutes: getEnvInt("OTP_EXPIRATION_MINUTES", 10),
			OTPSweepMinutes:      getEnvInt("OTP_SWEEP_MINUTES", 15),
			OTPFailClosed:        getEnv("OTP_FAIL_CLOSED", "false") == "true",
		}

		// Keep OTP settings inside sane bounds
		if appConfig.OTPLength < 4 || appConfig.OTPLength > 10 {
			appConfig.OTPLength = 6
		}
		if appConfig.OTPExpirationMinutes <= 0 {
			appConfig.OTPExpirationMinutes = 10
		}
		if appConfig.OTPSweepMinutes <= 0 {
			appConfig.OTPSweepMinutes = 15
		}
	})
	return appConfig
}

// TokenTTL returns the configured token lifetime.
func (c *AppConfig) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpirationSeconds) * time.Second
}

// OTPTTL returns the configured OTP lifetime.
func (c *AppConfig) OTPTTL() time.Duration {
	return time.Duration(c.OTPExpirationMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
