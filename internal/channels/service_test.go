package channels

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/crosspost/internal/db"
	"github.com/memohai/crosspost/internal/db/sqlc"
	"github.com/memohai/crosspost/internal/logger"
	"github.com/memohai/crosspost/internal/secrets"
	"github.com/memohai/crosspost/internal/telegram"
)

type fakeQueries struct {
	linked  []sqlc.LinkedChannel
	sources []sqlc.SourceChannel
	updates []sqlc.UpdateLinkedChannelCredentialsParams
}

func (f *fakeQueries) ListLinkedChannelsByOwner(_ context.Context, arg sqlc.ListLinkedChannelsByOwnerParams) ([]sqlc.LinkedChannel, error) {
	var out []sqlc.LinkedChannel
	for _, row := range f.linked {
		if row.OwnerID == arg.OwnerID && (!arg.Platform.Valid || row.Platform == arg.Platform.String) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeQueries) ListLinkedChannelsExpiringBefore(_ context.Context, arg sqlc.ListLinkedChannelsExpiringBeforeParams) ([]sqlc.LinkedChannel, error) {
	var out []sqlc.LinkedChannel
	for _, row := range f.linked {
		if row.Platform == arg.Platform && row.TokenExpiry.Valid && row.TokenExpiry.Time.Before(arg.TokenExpiry.Time) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeQueries) UpdateLinkedChannelCredentials(_ context.Context, arg sqlc.UpdateLinkedChannelCredentialsParams) (int64, error) {
	for i, row := range f.linked {
		if row.ID != arg.ID {
			continue
		}
		if !row.UpdatedAt.Time.Equal(arg.UpdatedAt.Time) {
			return 0, nil
		}
		f.linked[i].Credentials = arg.Credentials
		f.linked[i].TokenExpiry = arg.TokenExpiry
		f.linked[i].UpdatedAt = db.Timestamptz(time.Now())
		f.updates = append(f.updates, arg)
		return 1, nil
	}
	return 0, nil
}

func (f *fakeQueries) DeleteLinkedChannel(_ context.Context, arg sqlc.DeleteLinkedChannelParams) (int64, error) {
	for i, row := range f.linked {
		if row.ID == arg.ID && row.OwnerID == arg.OwnerID {
			f.linked = append(f.linked[:i], f.linked[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeQueries) CreateSourceChannel(_ context.Context, arg sqlc.CreateSourceChannelParams) (sqlc.SourceChannel, error) {
	for _, row := range f.sources {
		if row.OwnerID == arg.OwnerID && row.Platform == arg.Platform && row.Handle == arg.Handle {
			return sqlc.SourceChannel{}, &pgconn.PgError{Code: "23505", ConstraintName: "source_channels_owner_handle_unique"}
		}
	}
	row := sqlc.SourceChannel{
		ID:          newPgUUID(),
		OwnerID:     arg.OwnerID,
		Platform:    arg.Platform,
		Handle:      arg.Handle,
		Url:         arg.Url,
		Title:       arg.Title,
		Description: arg.Description,
		ImageUrl:    arg.ImageUrl,
		MemberCount: arg.MemberCount,
		CreatedAt:   db.Timestamptz(time.Now()),
	}
	f.sources = append(f.sources, row)
	return row, nil
}

func (f *fakeQueries) ListSourceChannelsByOwner(_ context.Context, arg sqlc.ListSourceChannelsByOwnerParams) ([]sqlc.SourceChannel, error) {
	var out []sqlc.SourceChannel
	for _, row := range f.sources {
		if row.OwnerID == arg.OwnerID && (!arg.Platform.Valid || row.Platform == arg.Platform.String) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeQueries) DeleteSourceChannel(_ context.Context, arg sqlc.DeleteSourceChannelParams) (int64, error) {
	for i, row := range f.sources {
		if row.ID == arg.ID && row.OwnerID == arg.OwnerID {
			f.sources = append(f.sources[:i], f.sources[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type fakeFetcher struct {
	infos map[string]telegram.ChannelInfo
	err   error
}

func (f *fakeFetcher) FetchChannelInfo(_ context.Context, username string) (telegram.ChannelInfo, error) {
	if f.err != nil {
		return telegram.ChannelInfo{}, f.err
	}
	info, ok := f.infos[username]
	if !ok {
		return telegram.ChannelInfo{}, telegram.ErrChannelNotFound
	}
	return info, nil
}

func newPgUUID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

func testVault(t *testing.T) *secrets.Vault {
	t.Helper()
	sealer, err := secrets.NewSealer("channels-test-key")
	require.NoError(t, err)
	return secrets.NewVault(sealer)
}

func newTestService(t *testing.T, q *fakeQueries, f InfoFetcher) *Service {
	t.Helper()
	return NewService(logger.Discard(), nil, q, testVault(t), f)
}

func TestAddSourceTelegram(t *testing.T) {
	q := &fakeQueries{}
	f := &fakeFetcher{infos: map[string]telegram.ChannelInfo{
		"coolchannel": {Username: "coolchannel", Title: "Cool", Description: "desc", Image: "https://img", MemberCount: 10},
	}}
	svc := newTestService(t, q, f)
	owner := uuid.NewString()
	ctx := context.Background()

	got, err := svc.AddSource(ctx, owner, AddSourceRequest{URL: "https://t.me/s/coolchannel"})
	require.NoError(t, err)
	assert.Equal(t, "telegram", got.Platform)
	assert.Equal(t, "coolchannel", got.Handle)
	assert.Equal(t, "https://t.me/coolchannel", got.URL)
	assert.Equal(t, "Cool", got.Title)
	assert.Equal(t, "desc", got.Description)
	assert.Equal(t, "https://img", got.ImageURL)
	assert.Equal(t, 10, got.MemberCount)

	_, err = svc.AddSource(ctx, owner, AddSourceRequest{Platform: "telegram", URL: "@coolchannel"})
	assert.ErrorIs(t, err, ErrSourceExists)

	_, err = svc.AddSource(ctx, uuid.NewString(), AddSourceRequest{URL: "@coolchannel"})
	assert.NoError(t, err, "another owner may add the same channel")
}

func TestAddSourceTelegramHandleIgnoresCase(t *testing.T) {
	q := &fakeQueries{}
	f := &fakeFetcher{infos: map[string]telegram.ChannelInfo{
		"coolchannel": {Username: "CoolChannel", Title: "Cool"},
	}}
	svc := newTestService(t, q, f)
	owner := uuid.NewString()
	ctx := context.Background()

	got, err := svc.AddSource(ctx, owner, AddSourceRequest{URL: "https://t.me/CoolChannel"})
	require.NoError(t, err)
	assert.Equal(t, "coolchannel", got.Handle)
	assert.Equal(t, "https://t.me/coolchannel", got.URL)

	_, err = svc.AddSource(ctx, owner, AddSourceRequest{URL: "@COOLCHANNEL"})
	assert.ErrorIs(t, err, ErrSourceExists)
	assert.Len(t, q.sources, 1)
}

func TestAddSourceErrors(t *testing.T) {
	svc := newTestService(t, &fakeQueries{}, &fakeFetcher{})
	owner := uuid.NewString()
	ctx := context.Background()

	_, err := svc.AddSource(ctx, owner, AddSourceRequest{URL: "https://example.com/x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddSource(ctx, owner, AddSourceRequest{URL: "https://t.me/missing_one"})
	assert.ErrorIs(t, err, ErrChannelNotFound)

	failing := newTestService(t, &fakeQueries{}, &fakeFetcher{err: errors.New("timeout")})
	_, err = failing.AddSource(ctx, owner, AddSourceRequest{URL: "@coolchannel"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrChannelNotFound)
}

func TestAddSourceOtherPlatformSkipsFetch(t *testing.T) {
	q := &fakeQueries{}
	svc := newTestService(t, q, &fakeFetcher{err: errors.New("must not be called")})
	got, err := svc.AddSource(context.Background(), uuid.NewString(), AddSourceRequest{Platform: "TikTok", URL: "https://www.tiktok.com/@dancer"})
	require.NoError(t, err)
	assert.Equal(t, "tiktok", got.Platform)
	assert.Equal(t, "dancer", got.Handle)
	assert.Equal(t, "dancer", got.Title)
}

func TestListAndDeleteSources(t *testing.T) {
	q := &fakeQueries{}
	f := &fakeFetcher{infos: map[string]telegram.ChannelInfo{"one_chan": {Title: "One"}, "two_chan": {Title: "Two"}}}
	svc := newTestService(t, q, f)
	owner := uuid.NewString()
	ctx := context.Background()

	first, err := svc.AddSource(ctx, owner, AddSourceRequest{URL: "@one_chan"})
	require.NoError(t, err)
	_, err = svc.AddSource(ctx, owner, AddSourceRequest{URL: "@two_chan"})
	require.NoError(t, err)

	items, err := svc.ListSources(ctx, owner, "telegram")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	assert.ErrorIs(t, svc.DeleteSource(ctx, uuid.NewString(), first.ID), ErrChannelNotFound)
	require.NoError(t, svc.DeleteSource(ctx, owner, first.ID))
	assert.ErrorIs(t, svc.DeleteSource(ctx, owner, first.ID), ErrChannelNotFound)
	assert.ErrorIs(t, svc.DeleteSource(ctx, owner, "not-a-uuid"), ErrChannelNotFound)

	items, err = svc.ListSources(ctx, owner, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Two", items[0].Title)
}

func TestLinkedChannelsListDeleteAndRefreshHelpers(t *testing.T) {
	q := &fakeQueries{}
	svc := newTestService(t, q, nil)
	vault := svc.vault
	owner := newPgUUID()
	ctx := context.Background()

	sealed, err := vault.Seal(secrets.Credentials{AccessToken: "at", RefreshToken: "rt", Expiry: time.Now().Add(10 * time.Minute)})
	require.NoError(t, err)
	soon := newPgUUID()
	readAt := db.Timestamptz(time.Now().Add(-time.Hour))
	q.linked = append(q.linked,
		sqlc.LinkedChannel{ID: soon, OwnerID: owner, Platform: "youtube", ExternalChannelID: "UC1", Title: "One", Credentials: sealed, TokenExpiry: db.Timestamptz(time.Now().Add(10 * time.Minute)), UpdatedAt: readAt},
		sqlc.LinkedChannel{ID: newPgUUID(), OwnerID: owner, Platform: "youtube", ExternalChannelID: "UC2", Title: "Two", Credentials: "garbage", TokenExpiry: db.Timestamptz(time.Now().Add(5 * time.Minute))},
		sqlc.LinkedChannel{ID: newPgUUID(), OwnerID: owner, Platform: "youtube", ExternalChannelID: "UC3", Title: "Three", Credentials: sealed, TokenExpiry: db.Timestamptz(time.Now().Add(24 * time.Hour))},
	)

	items, err := svc.ListLinked(ctx, db.UUIDToString(owner), "YouTube")
	require.NoError(t, err)
	assert.Len(t, items, 3)

	expiring, err := svc.ListExpiring(ctx, "youtube", time.Now().Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, expiring, 1, "unreadable credentials are skipped")
	assert.Equal(t, "UC1", expiring[0].ExternalChannelID)
	assert.Equal(t, "rt", expiring[0].Credentials.RefreshToken)

	assert.True(t, expiring[0].UpdatedAt.Equal(readAt.Time))

	newExpiry := time.Now().Add(time.Hour).UTC()
	require.NoError(t, svc.UpdateCredentials(ctx, expiring[0], secrets.Credentials{AccessToken: "at-2", RefreshToken: "rt", Expiry: newExpiry}))
	require.Len(t, q.updates, 1)
	opened, err := vault.Open(q.updates[0].Credentials)
	require.NoError(t, err)
	assert.Equal(t, "at-2", opened.AccessToken)
	assert.True(t, q.updates[0].TokenExpiry.Time.Equal(newExpiry))

	// The row moved on after the read above; a second write from the same snapshot is rejected.
	err = svc.UpdateCredentials(ctx, expiring[0], secrets.Credentials{AccessToken: "at-stale", RefreshToken: "rt"})
	assert.ErrorIs(t, err, ErrCredentialsChanged)
	assert.Len(t, q.updates, 1)

	assert.ErrorIs(t, svc.DeleteLinked(ctx, uuid.NewString(), db.UUIDToString(soon)), ErrChannelNotFound)
	require.NoError(t, svc.DeleteLinked(ctx, db.UUIDToString(owner), db.UUIDToString(soon)))
	items, err = svc.ListLinked(ctx, db.UUIDToString(owner), "")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
