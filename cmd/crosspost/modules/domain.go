package modules

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"github.com/memohai/crosspost/internal/accounts"
	"github.com/memohai/crosspost/internal/boot"
	"github.com/memohai/crosspost/internal/channels"
	"github.com/memohai/crosspost/internal/config"
	dbsqlc "github.com/memohai/crosspost/internal/db/sqlc"
	"github.com/memohai/crosspost/internal/linking"
	"github.com/memohai/crosspost/internal/publications"
	"github.com/memohai/crosspost/internal/refresher"
	"github.com/memohai/crosspost/internal/secrets"
	"github.com/memohai/crosspost/internal/settings"
	"github.com/memohai/crosspost/internal/storage"
	"github.com/memohai/crosspost/internal/telegram"
	"github.com/memohai/crosspost/internal/youtube"
)

var DomainModule = fx.Module(
	"domain",
	fx.Provide(
		provideAccountService,
		provideYouTubeClient,
		provideTelegramFetcher,
		provideChannelService,
		provideLinkingService,
		providePublicationService,
		provideSettingsService,
		provideRefresher,
	),
)

// ---------------------------------------------------------------------------
// domain service providers (interface adapters)
// ---------------------------------------------------------------------------

func provideAccountService(log *slog.Logger, queries *dbsqlc.Queries) *accounts.Service {
	return accounts.NewService(log, queries)
}

func provideYouTubeClient(log *slog.Logger, cfg config.Config) *youtube.Client {
	return youtube.NewClient(log, cfg.Google, nil)
}

func provideTelegramFetcher(log *slog.Logger, cfg config.Config) *telegram.Fetcher {
	return telegram.NewFetcher(log, telegram.Config{
		BaseURL:           cfg.Telegram.BaseURL,
		RequestsPerSecond: cfg.Telegram.RequestsPerSecond,
		BotToken:          cfg.Telegram.BotToken,
	}, nil)
}

func provideChannelService(log *slog.Logger, pool *pgxpool.Pool, queries *dbsqlc.Queries, vault *secrets.Vault, fetcher *telegram.Fetcher) *channels.Service {
	return channels.NewService(log, pool, queries, vault, fetcher)
}

func provideLinkingService(log *slog.Logger, client *youtube.Client, store *channels.Service) *linking.Service {
	return linking.NewService(log, client, store)
}

func providePublicationService(log *slog.Logger, queries *dbsqlc.Queries, rc *boot.RuntimeConfig) *publications.Service {
	return publications.NewService(log, queries, rc.MaxPublications)
}

func provideSettingsService(log *slog.Logger, queries *dbsqlc.Queries, provider storage.Provider) *settings.Service {
	return settings.NewService(log, queries, provider)
}

func provideRefresher(log *slog.Logger, store *channels.Service, client *youtube.Client, pruner *publications.Service, rc *boot.RuntimeConfig) *refresher.Service {
	return refresher.NewService(log, store, client, pruner, rc.RefresherLookahead)
}
