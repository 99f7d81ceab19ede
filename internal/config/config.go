// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath         = "config.toml"
	DefaultHTTPAddr           = ":8080"
	DefaultJWTExpiresIn       = "24h"
	DefaultPGHost             = "127.0.0.1"
	DefaultPGPort             = 5432
	DefaultPGUser             = "postgres"
	DefaultPGDatabase         = "crosspost"
	DefaultPGSSLMode          = "disable"
	DefaultTelegramBaseURL    = "https://t.me"
	DefaultTelegramRPS        = 2.0
	DefaultStorageRoot        = "data"
	DefaultMaxPublications    = 1000
	DefaultRefresherSchedule  = "@every 15m"
	DefaultRefresherLookahead = "30m"
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log          LogConfig          `toml:"log"`
	Server       ServerConfig       `toml:"server"`
	Admin        AdminConfig        `toml:"admin"`
	Auth         AuthConfig         `toml:"auth"`
	Postgres     PostgresConfig     `toml:"postgres"`
	Google       GoogleConfig       `toml:"google"`
	Telegram     TelegramConfig     `toml:"telegram"`
	Secrets      SecretsConfig      `toml:"secrets"`
	Storage      StorageConfig      `toml:"storage"`
	Publications PublicationsConfig `toml:"publications"`
	Refresher    RefresherConfig    `toml:"refresher"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AdminConfig holds the initial admin account (username, password).
type AdminConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// AuthConfig holds JWT secret and token expiry (e.g. 24h).
type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	JWTExpiresIn string `toml:"jwt_expires_in"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// GoogleConfig holds the OAuth client used to link YouTube channels.
// TokenURL, AuthURL and APIEndpoint are only set to point at fakes.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
	AuthURL      string `toml:"auth_url"`
	TokenURL     string `toml:"token_url"`
	APIEndpoint  string `toml:"api_endpoint"`
}

// TelegramConfig holds the public preview base URL, the scrape rate, and an optional bot token.
type TelegramConfig struct {
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	BotToken          string  `toml:"bot_token"`
}

// SecretsConfig holds the master key used to seal stored credentials.
type SecretsConfig struct {
	Key string `toml:"key"`
}

// StorageConfig holds the root directory for uploaded objects (watermarks).
type StorageConfig struct {
	Root string `toml:"root"`
}

// PublicationsConfig holds the publication ledger retention bound.
type PublicationsConfig struct {
	MaxRecords int `toml:"max_records"`
}

// RefresherConfig holds the credential refresh cron schedule and lookahead window.
// An empty schedule disables the job.
type RefresherConfig struct {
	Schedule  string `toml:"schedule"`
	Lookahead string `toml:"lookahead"`
}

// Load reads and parses the TOML config file at path and applies default values for missing fields.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: "change-your-password-here",
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Telegram: TelegramConfig{
			BaseURL:           DefaultTelegramBaseURL,
			RequestsPerSecond: DefaultTelegramRPS,
		},
		Storage: StorageConfig{
			Root: DefaultStorageRoot,
		},
		Publications: PublicationsConfig{
			MaxRecords: DefaultMaxPublications,
		},
		Refresher: RefresherConfig{
			Schedule:  DefaultRefresherSchedule,
			Lookahead: DefaultRefresherLookahead,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
