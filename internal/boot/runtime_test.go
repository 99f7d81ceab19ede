package boot

import (
	"testing"
	"time"

	"github.com/memohai/crosspost/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Server:       config.ServerConfig{Addr: ":8080"},
		Auth:         config.AuthConfig{JWTSecret: "secret", JWTExpiresIn: "2h"},
		Secrets:      config.SecretsConfig{Key: "master-key"},
		Refresher:    config.RefresherConfig{Schedule: " @every 5m ", Lookahead: "10m"},
		Publications: config.PublicationsConfig{MaxRecords: 0},
	}
}

func TestProvideRuntimeConfig(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("SECRETS_KEY", "")

	rc, err := ProvideRuntimeConfig(validConfig())
	if err != nil {
		t.Fatalf("ProvideRuntimeConfig() error = %v", err)
	}
	if rc.JwtExpiresIn != 2*time.Hour {
		t.Errorf("JwtExpiresIn = %v", rc.JwtExpiresIn)
	}
	if rc.RefresherSchedule != "@every 5m" {
		t.Errorf("RefresherSchedule = %q", rc.RefresherSchedule)
	}
	if rc.RefresherLookahead != 10*time.Minute {
		t.Errorf("RefresherLookahead = %v", rc.RefresherLookahead)
	}
	if rc.MaxPublications != config.DefaultMaxPublications {
		t.Errorf("MaxPublications = %d, want default", rc.MaxPublications)
	}
}

func TestProvideRuntimeConfigEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("SECRETS_KEY", "from-env")

	rc, err := ProvideRuntimeConfig(validConfig())
	if err != nil {
		t.Fatalf("ProvideRuntimeConfig() error = %v", err)
	}
	if rc.ServerAddr != ":9999" {
		t.Errorf("ServerAddr = %q", rc.ServerAddr)
	}
	if rc.SecretsKey != "from-env" {
		t.Errorf("SecretsKey = %q", rc.SecretsKey)
	}
}

func TestProvideRuntimeConfigErrors(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("SECRETS_KEY", "")

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"missing jwt secret", func(c *config.Config) { c.Auth.JWTSecret = " " }},
		{"bad expiry", func(c *config.Config) { c.Auth.JWTExpiresIn = "soon" }},
		{"bad lookahead", func(c *config.Config) { c.Refresher.Lookahead = "x" }},
		{"missing secrets key", func(c *config.Config) { c.Secrets.Key = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if _, err := ProvideRuntimeConfig(cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
