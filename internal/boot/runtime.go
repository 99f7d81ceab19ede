// Package boot provides runtime configuration derived from the loaded config.
package boot

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/memohai/crosspost/internal/config"
)

// RuntimeConfig holds parsed runtime settings (JWT, server address, secrets key, refresher timing).
// Values may be overridden by environment variables (HTTP_ADDR, SECRETS_KEY).
type RuntimeConfig struct {
	JwtSecret          string
	JwtExpiresIn       time.Duration
	ServerAddr         string
	SecretsKey         string
	RefresherSchedule  string
	RefresherLookahead time.Duration
	MaxPublications    int
}

// ProvideRuntimeConfig builds RuntimeConfig from the given config and applies env overrides.
func ProvideRuntimeConfig(cfg config.Config) (*RuntimeConfig, error) {
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("jwt secret is required")
	}

	jwtExpiresIn, err := time.ParseDuration(cfg.Auth.JWTExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("invalid jwt expires in: %w", err)
	}

	ret := &RuntimeConfig{
		JwtSecret:         cfg.Auth.JWTSecret,
		JwtExpiresIn:      jwtExpiresIn,
		ServerAddr:        cfg.Server.Addr,
		SecretsKey:        cfg.Secrets.Key,
		RefresherSchedule: strings.TrimSpace(cfg.Refresher.Schedule),
		MaxPublications:   cfg.Publications.MaxRecords,
	}
	if ret.MaxPublications <= 0 {
		ret.MaxPublications = config.DefaultMaxPublications
	}

	lookahead := strings.TrimSpace(cfg.Refresher.Lookahead)
	if lookahead == "" {
		lookahead = config.DefaultRefresherLookahead
	}
	ret.RefresherLookahead, err = time.ParseDuration(lookahead)
	if err != nil {
		return nil, fmt.Errorf("invalid refresher lookahead: %w", err)
	}

	if value := os.Getenv("HTTP_ADDR"); value != "" {
		ret.ServerAddr = value
	}
	if value := os.Getenv("SECRETS_KEY"); value != "" {
		ret.SecretsKey = value
	}
	if strings.TrimSpace(ret.SecretsKey) == "" {
		return nil, errors.New("secrets key is required")
	}
	return ret, nil
}
