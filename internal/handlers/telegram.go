package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/memohai/crosspost/internal/handle"
	"github.com/memohai/crosspost/internal/telegram"
)

// ChannelInfoFetcher loads public channel metadata; *telegram.Fetcher implements it.
type ChannelInfoFetcher interface {
	FetchChannelInfo(ctx context.Context, username string) (telegram.ChannelInfo, error)
}

// TelegramHandler serves public Telegram channel lookups.
type TelegramHandler struct {
	fetcher ChannelInfoFetcher
	logger  *slog.Logger
}

// TelegramChannelRequest accepts a channel URL or bare handle.
type TelegramChannelRequest struct {
	URL string `json:"url"`
}

// TelegramValidateResponse is the body of a successful validation.
type TelegramValidateResponse struct {
	Username string `json:"username"`
	Title    string `json:"title"`
}

func NewTelegramHandler(log *slog.Logger, fetcher ChannelInfoFetcher) *TelegramHandler {
	return &TelegramHandler{
		fetcher: fetcher,
		logger:  log.With(slog.String("handler", "telegram")),
	}
}

func (h *TelegramHandler) Register(e *echo.Echo) {
	group := e.Group("/telegram")
	group.POST("/channel-info", h.ChannelInfo)
	group.POST("/channel-validate", h.Validate)
}

// ChannelInfo godoc
// @Summary Telegram channel metadata
// @Description Extract the channel handle and load its public preview metadata
// @Tags telegram
// @Param payload body TelegramChannelRequest true "Channel URL or handle"
// @Success 200 {object} telegram.ChannelInfo
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /telegram/channel-info [post]
func (h *TelegramHandler) ChannelInfo(c echo.Context) error {
	info, err := h.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

// Validate godoc
// @Summary Validate a Telegram channel
// @Tags telegram
// @Param payload body TelegramChannelRequest true "Channel URL or handle"
// @Success 200 {object} TelegramValidateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /telegram/channel-validate [post]
func (h *TelegramHandler) Validate(c echo.Context) error {
	info, err := h.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, TelegramValidateResponse{Username: info.Username, Title: info.Title})
}

func (h *TelegramHandler) lookup(c echo.Context) (telegram.ChannelInfo, error) {
	var req TelegramChannelRequest
	if err := bindJSON(c, &req); err != nil {
		return telegram.ChannelInfo{}, apiError(http.StatusBadRequest, CodeInvalidInput, "Invalid request body", err)
	}
	if strings.TrimSpace(req.URL) == "" {
		return telegram.ChannelInfo{}, apiError(http.StatusBadRequest, CodeMissingInput, "Channel URL is required", nil)
	}
	username, ok := handle.ExtractHandle(req.URL)
	if !ok {
		return telegram.ChannelInfo{}, apiError(http.StatusBadRequest, CodeInvalidInput, "Could not extract channel username from URL", nil)
	}
	info, err := h.fetcher.FetchChannelInfo(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, telegram.ErrChannelNotFound) {
			return telegram.ChannelInfo{}, apiError(http.StatusNotFound, CodeChannelNotFound, "Channel not found or not public", nil)
		}
		h.logger.Warn("telegram lookup failed", slog.String("username", username), slog.Any("error", err))
		return telegram.ChannelInfo{}, apiError(http.StatusBadGateway, CodeUpstreamError, "Failed to load channel info", nil)
	}
	return info, nil
}
