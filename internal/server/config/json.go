package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for lifetime fields, which parses both
// string values such as "15m" and integer nanoseconds. After unmarshalling,
// its non-zero fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr      string         `json:"endpoint_addr"`
	DatabaseDSN       string         `json:"database_dsn"`
	SecretKey         string         `json:"secret_key"`
	SigningAlgorithm  string         `json:"signing_algorithm"`
	AccessTokenTTL    timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL   timex.Duration `json:"refresh_token_ttl"`
	PasswordResetTTL  timex.Duration `json:"password_reset_ttl"`
	BcryptCost        int            `json:"bcrypt_cost"`
	RevocationBackend string         `json:"revocation_backend"`
	RedisAddr         string         `json:"redis_addr"`
	SweepInterval     timex.Duration `json:"sweep_interval"`
	SMTPHost          string         `json:"smtp_host"`
	SMTPPort          int            `json:"smtp_port"`
	SMTPUser          string         `json:"smtp_user"`
	SMTPPassword      string         `json:"smtp_password"`
	SenderEmail       string         `json:"sender_email"`
	AppBaseURL        string         `json:"app_base_url"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. An unreadable or
// invalid file panics: a deployment that points at a broken config file
// should not start.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.SigningAlgorithm != "" {
		config.SigningAlgorithm = c.SigningAlgorithm
	}
	if c.AccessTokenTTL.Duration != 0 {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshTokenTTL.Duration != 0 {
		config.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	}
	if c.PasswordResetTTL.Duration != 0 {
		config.PasswordResetTTL = c.PasswordResetTTL.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.RevocationBackend != "" {
		config.RevocationBackend = c.RevocationBackend
	}
	if c.RedisAddr != "" {
		config.RedisAddr = c.RedisAddr
	}
	if c.SweepInterval.Duration != 0 {
		config.SweepInterval = c.SweepInterval.Duration
	}
	if c.SMTPHost != "" {
		config.SMTPHost = c.SMTPHost
	}
	if c.SMTPPort != 0 {
		config.SMTPPort = c.SMTPPort
	}
	if c.SMTPUser != "" {
		config.SMTPUser = c.SMTPUser
	}
	if c.SMTPPassword != "" {
		config.SMTPPassword = c.SMTPPassword
	}
	if c.SenderEmail != "" {
		config.SenderEmail = c.SenderEmail
	}
	if c.AppBaseURL != "" {
		config.AppBaseURL = c.AppBaseURL
	}
}
