package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memohai/crosspost/internal/youtube"
)

// YouTubeHandler serves the OAuth consent URL for linking YouTube channels.
type YouTubeHandler struct {
	client *youtube.Client
	logger *slog.Logger
}

// AuthURLResponse carries the consent URL and the state embedded in it.
type AuthURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

func NewYouTubeHandler(log *slog.Logger, client *youtube.Client) *YouTubeHandler {
	return &YouTubeHandler{
		client: client,
		logger: log.With(slog.String("handler", "youtube")),
	}
}

func (h *YouTubeHandler) Register(e *echo.Echo) {
	e.GET("/youtube/auth-url", h.AuthURL)
}

// AuthURL godoc
// @Summary YouTube consent URL
// @Description Build the Google OAuth consent URL; the code it yields is posted to /link-channels
// @Tags youtube
// @Success 200 {object} AuthURLResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /youtube/auth-url [get]
func (h *YouTubeHandler) AuthURL(c echo.Context) error {
	state, err := youtube.NewState()
	if err != nil {
		return apiError(http.StatusInternalServerError, CodeInternalError, "Internal server error", err)
	}
	url, err := h.client.AuthURL(state)
	if err != nil {
		if errors.Is(err, youtube.ErrNotConfigured) {
			return apiError(http.StatusInternalServerError, CodeInternalError, "Google OAuth is not configured", nil)
		}
		return apiError(http.StatusInternalServerError, CodeInternalError, "Internal server error", err)
	}
	return c.JSON(http.StatusOK, AuthURLResponse{URL: url, State: state})
}
