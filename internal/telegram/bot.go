package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotMemberCounter reads channel member counts through the Bot API.
// The bot is created lazily because construction performs a getMe call.
type BotMemberCounter struct {
	token    string
	endpoint string
	client   *http.Client

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

var setBotLoggerOnce sync.Once

// NewBotMemberCounter creates a counter for token. An empty endpoint uses tgbotapi.APIEndpoint.
func NewBotMemberCounter(log *slog.Logger, token, endpoint string, client *http.Client) *BotMemberCounter {
	if log != nil {
		setBotLoggerOnce.Do(func() {
			_ = tgbotapi.SetLogger(&slogBotLogger{log: log.With(slog.String("component", "tgbotapi"))})
		})
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &BotMemberCounter{token: strings.TrimSpace(token), endpoint: endpoint, client: client}
}

// MemberCount returns the number of members of @username.
func (c *BotMemberCounter) MemberCount(ctx context.Context, username string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	bot, err := c.getBot()
	if err != nil {
		return 0, err
	}
	count, err := bot.GetChatMembersCount(tgbotapi.ChatMemberCountConfig{
		ChatConfig: tgbotapi.ChatConfig{SuperGroupUsername: "@" + strings.TrimPrefix(username, "@")},
	})
	if err != nil {
		return 0, fmt.Errorf("telegram get chat member count: %w", err)
	}
	return count, nil
}

func (c *BotMemberCounter) getBot() (*tgbotapi.BotAPI, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bot != nil {
		return c.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(c.token, c.endpoint, c.client)
	if err != nil {
		return nil, fmt.Errorf("telegram create bot: %w", err)
	}
	c.bot = bot
	return bot, nil
}

// slogBotLogger adapts slog.Logger to tgbotapi.BotLogger so library logs go through slog.
type slogBotLogger struct {
	log *slog.Logger
}

func (s *slogBotLogger) Println(v ...any) {
	s.log.Warn(fmt.Sprint(v...))
}

func (s *slogBotLogger) Printf(format string, v ...any) {
	s.log.Warn(fmt.Sprintf(format, v...))
}
