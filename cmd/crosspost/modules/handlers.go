package modules

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"github.com/memohai/crosspost/internal/accounts"
	"github.com/memohai/crosspost/internal/boot"
	"github.com/memohai/crosspost/internal/handlers"
	"github.com/memohai/crosspost/internal/linking"
	"github.com/memohai/crosspost/internal/server"
	"github.com/memohai/crosspost/internal/telegram"
)

var HandlersModule = fx.Module(
	"handlers",
	fx.Provide(
		provideServerHandler(providePingHandler),
		provideServerHandler(provideAuthHandler),
		provideServerHandler(provideLinkHandler),
		provideServerHandler(handlers.NewPublicationsHandler),
		provideServerHandler(handlers.NewChannelsHandler),
		provideServerHandler(provideTelegramHandler),
		provideServerHandler(handlers.NewYouTubeHandler),
		provideServerHandler(handlers.NewSettingsHandler),
	),
)

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func providePingHandler(log *slog.Logger, pool *pgxpool.Pool) *handlers.PingHandler {
	return handlers.NewPingHandler(log, pool)
}

func provideAuthHandler(log *slog.Logger, accountService *accounts.Service, rc *boot.RuntimeConfig) *handlers.AuthHandler {
	return handlers.NewAuthHandler(log, accountService, rc.JwtSecret, rc.JwtExpiresIn)
}

func provideLinkHandler(log *slog.Logger, service *linking.Service, rc *boot.RuntimeConfig) *handlers.LinkHandler {
	return handlers.NewLinkHandler(log, service, rc.JwtSecret)
}

func provideTelegramHandler(log *slog.Logger, fetcher *telegram.Fetcher) *handlers.TelegramHandler {
	return handlers.NewTelegramHandler(log, fetcher)
}
