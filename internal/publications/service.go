// Package publications keeps the bounded, idempotent ledger of published content.
package publications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/memohai/crosspost/internal/db"
	"github.com/memohai/crosspost/internal/db/sqlc"
)

// Queries is the subset of sqlc queries used by the service.
type Queries interface {
	InsertPublication(ctx context.Context, arg sqlc.InsertPublicationParams) (sqlc.Publication, error)
	ListPublications(ctx context.Context, arg sqlc.ListPublicationsParams) ([]sqlc.Publication, error)
	PrunePublications(ctx context.Context, keep int32) (int64, error)
}

// Service records publications and enforces retention.
type Service struct {
	queries    Queries
	maxRecords int
	now        func() time.Time
	logger     *slog.Logger
}

// NewService creates a publication service. maxRecords <= 0 uses DefaultMaxRecords.
func NewService(log *slog.Logger, queries Queries, maxRecords int) *Service {
	if log == nil {
		log = slog.Default()
	}
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &Service{
		queries:    queries,
		maxRecords: maxRecords,
		now:        time.Now,
		logger:     log.With(slog.String("service", "publications")),
	}
}

// MaxRecords returns the retention bound.
func (s *Service) MaxRecords() int {
	return s.maxRecords
}

// Record stores req unless (platform, content_id) is already recorded.
// It reports whether a new entry was created. Retention runs afterwards and never fails the call.
func (s *Service) Record(ctx context.Context, req RecordRequest) (bool, error) {
	req = normalize(req)
	if req.Platform == "" || req.ChannelID == "" || req.ContentID == "" || req.ContentURL == "" {
		return false, ErrMissingInput
	}

	_, err := s.queries.InsertPublication(ctx, sqlc.InsertPublicationParams{
		Platform:    req.Platform,
		ChannelID:   req.ChannelID,
		ContentID:   req.ContentID,
		ContentUrl:  req.ContentURL,
		PublishedAt: db.Timestamptz(s.now()),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		s.logger.Error("insert publication failed", slog.String("platform", req.Platform), slog.Any("error", err))
		return false, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if _, err := s.Prune(ctx); err != nil {
		s.logger.Warn("prune publications failed", slog.Any("error", err))
	}
	return true, nil
}

// Prune deletes all but the newest MaxRecords entries and returns how many were removed.
func (s *Service) Prune(ctx context.Context) (int64, error) {
	removed, err := s.queries.PrunePublications(ctx, clampInt32(s.maxRecords))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Debug("pruned publications", slog.Int64("removed", removed))
	}
	return removed, nil
}

// List returns up to limit entries, newest first. An empty platform lists all platforms.
func (s *Service) List(ctx context.Context, platform string, limit int) ([]Publication, error) {
	if limit <= 0 || limit > s.maxRecords {
		limit = s.maxRecords
	}
	rows, err := s.queries.ListPublications(ctx, sqlc.ListPublicationsParams{
		Platform: db.Text(platform),
		MaxRows:  clampInt32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	items := make([]Publication, 0, len(rows))
	for _, row := range rows {
		items = append(items, Publication{
			ID:          row.ID,
			Platform:    row.Platform,
			ChannelID:   row.ChannelID,
			ContentID:   row.ContentID,
			ContentURL:  row.ContentUrl,
			PublishedAt: db.TimeFromPg(row.PublishedAt),
		})
	}
	return items, nil
}

func normalize(req RecordRequest) RecordRequest {
	return RecordRequest{
		Platform:   strings.TrimSpace(req.Platform),
		ChannelID:  strings.TrimSpace(req.ChannelID),
		ContentID:  strings.TrimSpace(req.ContentID),
		ContentURL: strings.TrimSpace(req.ContentURL),
	}
}

func clampInt32(n int) int32 {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(n)
}
