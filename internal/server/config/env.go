package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from the environment. A .env file in the
// working directory is loaded first if present; variables already exported
// keep precedence over the file, per godotenv semantics.
//
// Recognized variables: ADDRESS, DATABASE_DSN, SECRET_KEY,
// SIGNING_ALGORITHM, ACCESS_TOKEN_TTL, REFRESH_TOKEN_TTL,
// PASSWORD_RESET_TTL, BCRYPT_COST, REVOCATION_BACKEND, REDIS_ADDR,
// SWEEP_INTERVAL, SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD,
// SENDER_EMAIL, APP_BASE_URL. TTL values use Go duration syntax ("15m").
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString("ADDRESS", &config.EndpointAddr)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("SECRET_KEY", &config.SecretKey)
	setString("SIGNING_ALGORITHM", &config.SigningAlgorithm)
	setDuration("ACCESS_TOKEN_TTL", &config.AccessTokenTTL)
	setDuration("REFRESH_TOKEN_TTL", &config.RefreshTokenTTL)
	setDuration("PASSWORD_RESET_TTL", &config.PasswordResetTTL)
	setInt("BCRYPT_COST", &config.BcryptCost)
	setString("REVOCATION_BACKEND", &config.RevocationBackend)
	setString("REDIS_ADDR", &config.RedisAddr)
	setDuration("SWEEP_INTERVAL", &config.SweepInterval)
	setString("SMTP_HOST", &config.SMTPHost)
	setInt("SMTP_PORT", &config.SMTPPort)
	setString("SMTP_USER", &config.SMTPUser)
	setString("SMTP_PASSWORD", &config.SMTPPassword)
	setString("SENDER_EMAIL", &config.SenderEmail)
	setString("APP_BASE_URL", &config.AppBaseURL)
}
