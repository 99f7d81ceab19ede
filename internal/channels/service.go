// Package channels stores the linked and source channels of each user.
package channels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/memohai/crosspost/internal/db"
	"github.com/memohai/crosspost/internal/db/sqlc"
	"github.com/memohai/crosspost/internal/handle"
	"github.com/memohai/crosspost/internal/linking"
	"github.com/memohai/crosspost/internal/secrets"
	"github.com/memohai/crosspost/internal/telegram"
)

// Queries is the subset of sqlc queries used outside transactions.
type Queries interface {
	ListLinkedChannelsByOwner(ctx context.Context, arg sqlc.ListLinkedChannelsByOwnerParams) ([]sqlc.LinkedChannel, error)
	ListLinkedChannelsExpiringBefore(ctx context.Context, arg sqlc.ListLinkedChannelsExpiringBeforeParams) ([]sqlc.LinkedChannel, error)
	UpdateLinkedChannelCredentials(ctx context.Context, arg sqlc.UpdateLinkedChannelCredentialsParams) (int64, error)
	DeleteLinkedChannel(ctx context.Context, arg sqlc.DeleteLinkedChannelParams) (int64, error)
	CreateSourceChannel(ctx context.Context, arg sqlc.CreateSourceChannelParams) (sqlc.SourceChannel, error)
	ListSourceChannelsByOwner(ctx context.Context, arg sqlc.ListSourceChannelsByOwnerParams) ([]sqlc.SourceChannel, error)
	DeleteSourceChannel(ctx context.Context, arg sqlc.DeleteSourceChannelParams) (int64, error)
}

// TxBeginner starts transactions; *pgxpool.Pool satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// InfoFetcher loads public channel metadata.
type InfoFetcher interface {
	FetchChannelInfo(ctx context.Context, username string) (telegram.ChannelInfo, error)
}

// Service manages linked and source channels.
type Service struct {
	pool    TxBeginner
	queries Queries
	vault   *secrets.Vault
	fetcher InfoFetcher
	logger  *slog.Logger
}

// NewService creates a channel service.
func NewService(log *slog.Logger, pool TxBeginner, queries Queries, vault *secrets.Vault, fetcher InfoFetcher) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:    pool,
		queries: queries,
		vault:   vault,
		fetcher: fetcher,
		logger:  log.With(slog.String("service", "channels")),
	}
}

// UpsertLinked writes a link batch in one transaction.
// If any channel is owned by another user the transaction is rolled back and
// linking.ErrOwnershipConflict is returned. A bundle without a refresh token keeps the stored one.
func (s *Service) UpsertLinked(ctx context.Context, batch []linking.LinkedChannel) error {
	if s.pool == nil {
		return errors.New("channel store not configured")
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin link tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	qtx := sqlc.New(tx)

	for _, ch := range batch {
		ownerID, err := db.ParseUUID(ch.OwnerID)
		if err != nil {
			return fmt.Errorf("owner id: %w", err)
		}
		creds := ch.Credentials
		if creds.RefreshToken == "" {
			creds.RefreshToken = s.storedRefreshToken(ctx, qtx, ownerID, ch)
		}
		sealed, err := s.vault.Seal(creds)
		if err != nil {
			return fmt.Errorf("seal credentials: %w", err)
		}
		_, err = qtx.UpsertLinkedChannel(ctx, sqlc.UpsertLinkedChannelParams{
			OwnerID:           ownerID,
			Platform:          ch.Platform,
			ExternalChannelID: ch.ExternalChannelID,
			Title:             ch.Title,
			Credentials:       sealed,
			TokenExpiry:       db.Timestamptz(creds.Expiry),
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("channel %s: %w", ch.ExternalChannelID, linking.ErrOwnershipConflict)
			}
			return fmt.Errorf("upsert linked channel: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit link tx: %w", err)
	}
	return nil
}

func (s *Service) storedRefreshToken(ctx context.Context, q *sqlc.Queries, ownerID pgtype.UUID, ch linking.LinkedChannel) string {
	existing, err := q.GetLinkedChannelByExternalID(ctx, sqlc.GetLinkedChannelByExternalIDParams{
		Platform:          ch.Platform,
		ExternalChannelID: ch.ExternalChannelID,
	})
	if err != nil || existing.OwnerID != ownerID {
		return ""
	}
	prev, err := s.vault.Open(existing.Credentials)
	if err != nil {
		s.logger.Warn("stored credentials unreadable", slog.String("channel_id", ch.ExternalChannelID), slog.Any("error", err))
		return ""
	}
	return prev.RefreshToken
}

// ListLinked returns the owner's linked channels, optionally filtered by platform.
func (s *Service) ListLinked(ctx context.Context, ownerID, platform string) ([]LinkedChannel, error) {
	pgOwner, err := db.ParseUUID(ownerID)
	if err != nil {
		return nil, err
	}
	rows, err := s.queries.ListLinkedChannelsByOwner(ctx, sqlc.ListLinkedChannelsByOwnerParams{
		OwnerID:  pgOwner,
		Platform: db.Text(strings.ToLower(platform)),
	})
	if err != nil {
		return nil, fmt.Errorf("list linked channels: %w", err)
	}
	items := make([]LinkedChannel, 0, len(rows))
	for _, row := range rows {
		items = append(items, toLinkedChannel(row))
	}
	return items, nil
}

// DeleteLinked removes a linked channel owned by ownerID.
func (s *Service) DeleteLinked(ctx context.Context, ownerID, id string) error {
	pgOwner, err := db.ParseUUID(ownerID)
	if err != nil {
		return err
	}
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return ErrChannelNotFound
	}
	n, err := s.queries.DeleteLinkedChannel(ctx, sqlc.DeleteLinkedChannelParams{ID: pgID, OwnerID: pgOwner})
	if err != nil {
		return fmt.Errorf("delete linked channel: %w", err)
	}
	if n == 0 {
		return ErrChannelNotFound
	}
	return nil
}

// ListExpiring returns linked channels on platform whose token expires before the given time.
// Rows whose credentials cannot be opened are skipped.
func (s *Service) ListExpiring(ctx context.Context, platform string, before time.Time) ([]ExpiringChannel, error) {
	rows, err := s.queries.ListLinkedChannelsExpiringBefore(ctx, sqlc.ListLinkedChannelsExpiringBeforeParams{
		Platform:    platform,
		TokenExpiry: db.Timestamptz(before),
	})
	if err != nil {
		return nil, fmt.Errorf("list expiring channels: %w", err)
	}
	items := make([]ExpiringChannel, 0, len(rows))
	for _, row := range rows {
		creds, err := s.vault.Open(row.Credentials)
		if err != nil {
			s.logger.Warn("skip channel with unreadable credentials",
				slog.String("id", db.UUIDToString(row.ID)), slog.Any("error", err))
			continue
		}
		items = append(items, ExpiringChannel{
			ID:                db.UUIDToString(row.ID),
			OwnerID:           db.UUIDToString(row.OwnerID),
			ExternalChannelID: row.ExternalChannelID,
			Credentials:       creds,
			UpdatedAt:         db.TimeFromPg(row.UpdatedAt),
		})
	}
	return items, nil
}

// UpdateCredentials replaces the sealed bundle of ch, provided the row is unchanged since ListExpiring.
// A concurrent rewrite yields ErrCredentialsChanged and leaves the newer bundle in place.
func (s *Service) UpdateCredentials(ctx context.Context, ch ExpiringChannel, creds secrets.Credentials) error {
	pgID, err := db.ParseUUID(ch.ID)
	if err != nil {
		return err
	}
	sealed, err := s.vault.Seal(creds)
	if err != nil {
		return fmt.Errorf("seal credentials: %w", err)
	}
	n, err := s.queries.UpdateLinkedChannelCredentials(ctx, sqlc.UpdateLinkedChannelCredentialsParams{
		ID:          pgID,
		Credentials: sealed,
		TokenExpiry: db.Timestamptz(creds.Expiry),
		UpdatedAt:   db.Timestamptz(ch.UpdatedAt),
	})
	if err != nil {
		return fmt.Errorf("update credentials: %w", err)
	}
	if n == 0 {
		return ErrCredentialsChanged
	}
	return nil
}

// AddSource extracts the handle from req.URL, loads public metadata and stores the channel.
func (s *Service) AddSource(ctx context.Context, ownerID string, req AddSourceRequest) (SourceChannel, error) {
	pgOwner, err := db.ParseUUID(ownerID)
	if err != nil {
		return SourceChannel{}, err
	}
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if platform == "" {
		platform = handle.Telegram
	}
	name, ok := handle.Extract(platform, req.URL)
	if !ok {
		return SourceChannel{}, ErrInvalidInput
	}
	if platform == handle.Telegram {
		// Telegram usernames are case-insensitive.
		name = strings.ToLower(name)
	}

	params := sqlc.CreateSourceChannelParams{
		OwnerID:  pgOwner,
		Platform: platform,
		Handle:   name,
		Url:      strings.TrimSpace(req.URL),
		Title:    name,
	}
	if platform == handle.Telegram && s.fetcher != nil {
		info, err := s.fetcher.FetchChannelInfo(ctx, name)
		if err != nil {
			if errors.Is(err, telegram.ErrChannelNotFound) {
				return SourceChannel{}, ErrChannelNotFound
			}
			return SourceChannel{}, fmt.Errorf("fetch channel info: %w", err)
		}
		params.Url = "https://t.me/" + name
		if info.Title != "" {
			params.Title = info.Title
		}
		params.Description = db.Text(info.Description)
		params.ImageUrl = db.Text(info.Image)
		if info.MemberCount > 0 {
			params.MemberCount = pgtype.Int4{Int32: int32(info.MemberCount), Valid: true}
		}
	}

	row, err := s.queries.CreateSourceChannel(ctx, params)
	if err != nil {
		if db.IsUniqueViolation(err, "source_channels_owner_handle_unique") {
			return SourceChannel{}, ErrSourceExists
		}
		return SourceChannel{}, fmt.Errorf("create source channel: %w", err)
	}
	return toSourceChannel(row), nil
}

// ListSources returns the owner's source channels, optionally filtered by platform.
func (s *Service) ListSources(ctx context.Context, ownerID, platform string) ([]SourceChannel, error) {
	pgOwner, err := db.ParseUUID(ownerID)
	if err != nil {
		return nil, err
	}
	rows, err := s.queries.ListSourceChannelsByOwner(ctx, sqlc.ListSourceChannelsByOwnerParams{
		OwnerID:  pgOwner,
		Platform: db.Text(strings.ToLower(platform)),
	})
	if err != nil {
		return nil, fmt.Errorf("list source channels: %w", err)
	}
	items := make([]SourceChannel, 0, len(rows))
	for _, row := range rows {
		items = append(items, toSourceChannel(row))
	}
	return items, nil
}

// DeleteSource removes a source channel owned by ownerID.
func (s *Service) DeleteSource(ctx context.Context, ownerID, id string) error {
	pgOwner, err := db.ParseUUID(ownerID)
	if err != nil {
		return err
	}
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return ErrChannelNotFound
	}
	n, err := s.queries.DeleteSourceChannel(ctx, sqlc.DeleteSourceChannelParams{ID: pgID, OwnerID: pgOwner})
	if err != nil {
		return fmt.Errorf("delete source channel: %w", err)
	}
	if n == 0 {
		return ErrChannelNotFound
	}
	return nil
}

func toLinkedChannel(row sqlc.LinkedChannel) LinkedChannel {
	return LinkedChannel{
		ID:                db.UUIDToString(row.ID),
		Platform:          row.Platform,
		ExternalChannelID: row.ExternalChannelID,
		Title:             row.Title,
		TokenExpiry:       db.TimeFromPg(row.TokenExpiry),
		CreatedAt:         db.TimeFromPg(row.CreatedAt),
		UpdatedAt:         db.TimeFromPg(row.UpdatedAt),
	}
}

func toSourceChannel(row sqlc.SourceChannel) SourceChannel {
	out := SourceChannel{
		ID:          db.UUIDToString(row.ID),
		Platform:    row.Platform,
		Handle:      row.Handle,
		URL:         row.Url,
		Title:       row.Title,
		Description: db.TextToString(row.Description),
		ImageURL:    db.TextToString(row.ImageUrl),
		CreatedAt:   db.TimeFromPg(row.CreatedAt),
	}
	if row.MemberCount.Valid {
		out.MemberCount = int(row.MemberCount.Int32)
	}
	return out
}
