package telegram

import "errors"

// ErrChannelNotFound is returned when the public preview page has no channel metadata.
var ErrChannelNotFound = errors.New("telegram channel not found")

// ChannelInfo is the public metadata of a Telegram channel.
type ChannelInfo struct {
	Username    string `json:"username"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	MemberCount int    `json:"member_count,omitempty"`
}

// Config configures the public profile fetcher.
type Config struct {
	BaseURL           string
	RequestsPerSecond float64
	BotToken          string
	// BotAPIEndpoint overrides the Bot API endpoint format (tgbotapi.APIEndpoint).
	BotAPIEndpoint string
}
