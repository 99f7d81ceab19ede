// Package settings stores per-user preferences such as the watermark overlay.
package settings

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"path"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/memohai/crosspost/internal/db"
	"github.com/memohai/crosspost/internal/db/sqlc"
	"github.com/memohai/crosspost/internal/storage"
)

// Queries is the subset of sqlc queries used by the service.
type Queries interface {
	GetUserSettings(ctx context.Context, userID pgtype.UUID) (sqlc.UserSetting, error)
	UpsertUserSettings(ctx context.Context, arg sqlc.UpsertUserSettingsParams) (sqlc.UserSetting, error)
}

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

type Service struct {
	queries  Queries
	provider storage.Provider
	logger   *slog.Logger
}

func NewService(log *slog.Logger, queries Queries, provider storage.Provider) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		queries:  queries,
		provider: provider,
		logger:   log.With(slog.String("service", "settings")),
	}
}

func (s *Service) Get(ctx context.Context, userID string) (Settings, error) {
	pgID, err := db.ParseUUID(userID)
	if err != nil {
		return Settings{}, err
	}
	return s.load(ctx, pgID)
}

func (s *Service) Upsert(ctx context.Context, userID string, req UpsertRequest) (Settings, error) {
	pgID, err := db.ParseUUID(userID)
	if err != nil {
		return Settings{}, err
	}
	current, err := s.load(ctx, pgID)
	if err != nil {
		return Settings{}, err
	}

	if req.WatermarkPosition != nil {
		pos := strings.ToLower(strings.TrimSpace(*req.WatermarkPosition))
		if !validPosition(pos) {
			return Settings{}, fmt.Errorf("%w: unknown watermark position %q", ErrInvalidSettings, *req.WatermarkPosition)
		}
		current.WatermarkPosition = pos
	}
	if req.WatermarkOpacity != nil {
		if *req.WatermarkOpacity < 0 || *req.WatermarkOpacity > 1 {
			return Settings{}, fmt.Errorf("%w: watermark opacity must be between 0 and 1", ErrInvalidSettings)
		}
		current.WatermarkOpacity = *req.WatermarkOpacity
	}
	if req.WatermarkEnabled != nil {
		if *req.WatermarkEnabled && current.WatermarkKey == "" {
			return Settings{}, fmt.Errorf("%w: upload a watermark before enabling it", ErrInvalidSettings)
		}
		current.WatermarkEnabled = *req.WatermarkEnabled
	}
	return s.save(ctx, pgID, current)
}

// SetWatermark stores a new watermark image and enables it. The previous image is removed.
func (s *Service) SetWatermark(ctx context.Context, userID string, r io.Reader) (Settings, error) {
	if s.provider == nil {
		return Settings{}, ErrStorageUnavailable
	}
	pgID, err := db.ParseUUID(userID)
	if err != nil {
		return Settings{}, err
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxWatermarkBytes+1))
	if err != nil {
		return Settings{}, fmt.Errorf("read watermark: %w", err)
	}
	if len(data) > MaxWatermarkBytes {
		return Settings{}, ErrWatermarkTooLarge
	}
	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return Settings{}, ErrUnsupportedImage
	}

	current, err := s.load(ctx, pgID)
	if err != nil {
		return Settings{}, err
	}
	sum := sha256.Sum256(data)
	key := path.Join("watermarks", db.UUIDToString(pgID), hex.EncodeToString(sum[:8])+ext)
	if err := s.provider.Put(ctx, key, bytes.NewReader(data)); err != nil {
		return Settings{}, fmt.Errorf("store watermark: %w", err)
	}

	previous := current.WatermarkKey
	current.WatermarkKey = key
	current.WatermarkEnabled = true
	saved, err := s.save(ctx, pgID, current)
	if err != nil {
		return Settings{}, err
	}
	if previous != "" && previous != key {
		s.deleteObject(ctx, previous)
	}
	return saved, nil
}

// OpenWatermark returns the stored watermark image and its content type.
func (s *Service) OpenWatermark(ctx context.Context, userID string) (io.ReadCloser, string, error) {
	if s.provider == nil {
		return nil, "", ErrStorageUnavailable
	}
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if current.WatermarkKey == "" {
		return nil, "", ErrWatermarkNotFound
	}
	rc, err := s.provider.Open(ctx, current.WatermarkKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrWatermarkNotFound
		}
		return nil, "", err
	}
	return rc, contentTypeForKey(current.WatermarkKey), nil
}

// RemoveWatermark deletes the stored image and disables the overlay.
func (s *Service) RemoveWatermark(ctx context.Context, userID string) (Settings, error) {
	pgID, err := db.ParseUUID(userID)
	if err != nil {
		return Settings{}, err
	}
	current, err := s.load(ctx, pgID)
	if err != nil {
		return Settings{}, err
	}
	previous := current.WatermarkKey
	current.WatermarkKey = ""
	current.WatermarkEnabled = false
	saved, err := s.save(ctx, pgID, current)
	if err != nil {
		return Settings{}, err
	}
	if previous != "" {
		s.deleteObject(ctx, previous)
	}
	return saved, nil
}

func (s *Service) load(ctx context.Context, pgID pgtype.UUID) (Settings, error) {
	row, err := s.queries.GetUserSettings(ctx, pgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return defaults(), nil
		}
		return Settings{}, err
	}
	return normalizeUserSetting(row), nil
}

func (s *Service) save(ctx context.Context, pgID pgtype.UUID, current Settings) (Settings, error) {
	row, err := s.queries.UpsertUserSettings(ctx, sqlc.UpsertUserSettingsParams{
		UserID:            pgID,
		WatermarkEnabled:  current.WatermarkEnabled,
		WatermarkKey:      db.Text(current.WatermarkKey),
		WatermarkPosition: current.WatermarkPosition,
		WatermarkOpacity:  float32(current.WatermarkOpacity),
	})
	if err != nil {
		return Settings{}, err
	}
	return normalizeUserSetting(row), nil
}

func (s *Service) deleteObject(ctx context.Context, key string) {
	if s.provider == nil {
		return
	}
	if err := s.provider.Delete(ctx, key); err != nil {
		s.logger.Warn("delete old watermark failed", slog.String("key", key), slog.Any("error", err))
	}
}

func normalizeUserSetting(row sqlc.UserSetting) Settings {
	settings := Settings{
		WatermarkEnabled:  row.WatermarkEnabled,
		WatermarkKey:      db.TextToString(row.WatermarkKey),
		WatermarkPosition: strings.TrimSpace(row.WatermarkPosition),
		WatermarkOpacity:  math.Round(float64(row.WatermarkOpacity)*1000) / 1000,
	}
	if !validPosition(settings.WatermarkPosition) {
		settings.WatermarkPosition = DefaultWatermarkPosition
	}
	if settings.WatermarkOpacity < 0 || settings.WatermarkOpacity > 1 {
		settings.WatermarkOpacity = DefaultWatermarkOpacity
	}
	if settings.WatermarkKey == "" {
		settings.WatermarkEnabled = false
	}
	return settings
}

func contentTypeForKey(key string) string {
	for mime, ext := range imageExtensions {
		if strings.HasSuffix(key, ext) {
			return mime
		}
	}
	return "application/octet-stream"
}
