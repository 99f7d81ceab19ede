package modules

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"github.com/memohai/crosspost/internal/boot"
	"github.com/memohai/crosspost/internal/config"
	"github.com/memohai/crosspost/internal/db"
	dbsqlc "github.com/memohai/crosspost/internal/db/sqlc"
	"github.com/memohai/crosspost/internal/logger"
	"github.com/memohai/crosspost/internal/secrets"
	"github.com/memohai/crosspost/internal/storage"
)

var InfraModule = fx.Module(
	"infra",
	fx.Provide(
		provideConfig,
		provideLogger,
		boot.ProvideRuntimeConfig,
		provideDBConn,
		provideDBQueries,
		provideVault,
		fx.Annotate(provideStorage, fx.As(new(storage.Provider))),
	),
)

// ---------------------------------------------------------------------------
// infrastructure providers
// ---------------------------------------------------------------------------

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			conn.Close()
			return nil
		},
	})
	return conn, nil
}

func provideDBQueries(conn *pgxpool.Pool) *dbsqlc.Queries {
	return dbsqlc.New(conn)
}

func provideVault(rc *boot.RuntimeConfig) (*secrets.Vault, error) {
	sealer, err := secrets.NewSealer(rc.SecretsKey)
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}
	return secrets.NewVault(sealer), nil
}

func provideStorage(cfg config.Config) (*storage.LocalProvider, error) {
	root := cfg.Storage.Root
	if root == "" {
		root = config.DefaultStorageRoot
	}
	provider, err := storage.NewLocalProvider(root)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return provider, nil
}
