// Package linking turns an OAuth authorization code into linked channel records.
package linking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/memohai/crosspost/internal/youtube"
)

// Service links the caller's YouTube channels.
type Service struct {
	provider Provider
	store    Store
	logger   *slog.Logger
}

// NewService creates a linking service.
func NewService(log *slog.Logger, provider Provider, store Store) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		provider: provider,
		store:    store,
		logger:   log.With(slog.String("service", "linking")),
	}
}

// LinkChannels exchanges code, lists the channels behind it and links them all to callerID.
// callerID is resolved by the caller; empty means the request was not authenticated.
// The batch is written in one transaction: on any failure no channel is linked.
func (s *Service) LinkChannels(ctx context.Context, code, callerID string) (Result, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Result{}, ErrMissingInput
	}

	creds, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("code exchange failed", slog.Any("error", err))
		return Result{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	channels, err := s.provider.ListMine(ctx, creds)
	if err != nil {
		s.logger.Warn("list channels failed", slog.Any("error", err))
		return Result{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if len(channels) == 0 {
		return Result{}, ErrNoChannelsFound
	}

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return Result{}, ErrUnauthenticated
	}

	batch := make([]LinkedChannel, 0, len(channels))
	titles := make([]string, 0, len(channels))
	for _, ch := range channels {
		batch = append(batch, LinkedChannel{
			OwnerID:           callerID,
			Platform:          youtube.Platform,
			ExternalChannelID: ch.ID,
			Title:             ch.Title,
			Credentials:       creds,
		})
		titles = append(titles, ch.Title)
	}

	if err := s.store.UpsertLinked(ctx, batch); err != nil {
		if errors.Is(err, ErrOwnershipConflict) {
			s.logger.Warn("link rejected: ownership conflict", slog.String("user_id", callerID), slog.Any("error", err))
			return Result{}, fmt.Errorf("%w: %v", ErrChannelOwnershipConflict, err)
		}
		s.logger.Error("link write failed", slog.String("user_id", callerID), slog.Any("error", err))
		return Result{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.logger.Info("channels linked", slog.String("user_id", callerID), slog.Int("count", len(batch)))
	return Result{Titles: titles}, nil
}
