package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/memohai/crosspost/internal/auth"
	"github.com/memohai/crosspost/internal/linking"
	"github.com/memohai/crosspost/internal/logger"
	"github.com/memohai/crosspost/internal/secrets"
	"github.com/memohai/crosspost/internal/youtube"
)

const testJWTSecret = "handlers-secret"

type stubProvider struct {
	channels    []youtube.Channel
	exchangeErr error
}

func (s stubProvider) Exchange(context.Context, string) (secrets.Credentials, error) {
	if s.exchangeErr != nil {
		return secrets.Credentials{}, s.exchangeErr
	}
	return secrets.Credentials{AccessToken: "at", RefreshToken: "rt"}, nil
}

func (s stubProvider) ListMine(context.Context, secrets.Credentials) ([]youtube.Channel, error) {
	return s.channels, nil
}

type stubStore struct {
	err   error
	saved []linking.LinkedChannel
}

func (s *stubStore) UpsertLinked(_ context.Context, batch []linking.LinkedChannel) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, batch...)
	return nil
}

func bearer(t *testing.T, userID string) map[string]string {
	t.Helper()
	tok, _, err := auth.GenerateToken(userID, testJWTSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return map[string]string{"Authorization": "Bearer " + tok}
}

func TestLinkChannelsSuccess(t *testing.T) {
	store := &stubStore{}
	provider := stubProvider{channels: []youtube.Channel{{ID: "UC1", Title: "One"}, {ID: "UC2", Title: "Two"}}}
	svc := linking.NewService(logger.Discard(), provider, store)
	e := newTestEcho(NewLinkHandler(logger.Discard(), svc, testJWTSecret))

	rec := doJSON(t, e, http.MethodPost, "/link-channels", `{"code":"abc"}`, bearer(t, "user-1"))
	expectStatus(t, rec, http.StatusOK)
	var body LinkChannelsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Channels != "One, Two" || body.Message == "" {
		t.Fatalf("unexpected body %#v", body)
	}
	if len(store.saved) != 2 || store.saved[0].OwnerID != "user-1" {
		t.Fatalf("unexpected saved batch %#v", store.saved)
	}
}

func TestLinkChannelsWithoutJSONContentType(t *testing.T) {
	for _, contentType := range []string{"", "text/plain;charset=UTF-8"} {
		store := &stubStore{}
		provider := stubProvider{channels: []youtube.Channel{{ID: "UC1", Title: "One"}}}
		svc := linking.NewService(logger.Discard(), provider, store)
		e := newTestEcho(NewLinkHandler(logger.Discard(), svc, testJWTSecret))

		rec := doRaw(t, e, http.MethodPost, "/link-channels", `{"code":"abc"}`, contentType, bearer(t, "user-1"))
		expectStatus(t, rec, http.StatusOK)
		if len(store.saved) != 1 {
			t.Fatalf("content type %q: unexpected saved batch %#v", contentType, store.saved)
		}
	}
}

func TestLinkChannelsErrors(t *testing.T) {
	channels := []youtube.Channel{{ID: "UC1", Title: "One"}}
	tests := []struct {
		name     string
		body     string
		headers  map[string]string
		provider stubProvider
		storeErr error
		status   int
		code     string
		details  string
	}{
		{
			name:   "missing code",
			body:   `{}`,
			status: http.StatusBadRequest,
			code:   CodeMissingInput,
		},
		{
			name:     "exchange failure",
			body:     `{"code":"abc"}`,
			provider: stubProvider{exchangeErr: errors.New("invalid_grant")},
			status:   http.StatusInternalServerError,
			code:     CodeExchangeFailed,
			details:  "invalid_grant",
		},
		{
			name:     "no channels",
			body:     `{"code":"abc"}`,
			provider: stubProvider{},
			status:   http.StatusNotFound,
			code:     CodeNoChannelsFound,
		},
		{
			name:     "no bearer",
			body:     `{"code":"abc"}`,
			provider: stubProvider{channels: channels},
			status:   http.StatusUnauthorized,
			code:     CodeUnauthenticated,
		},
		{
			name:     "bad bearer",
			body:     `{"code":"abc"}`,
			headers:  map[string]string{"Authorization": "Bearer nope"},
			provider: stubProvider{channels: channels},
			status:   http.StatusUnauthorized,
			code:     CodeUnauthenticated,
		},
		{
			name:     "ownership conflict",
			body:     `{"code":"abc"}`,
			provider: stubProvider{channels: channels},
			storeErr: fmt.Errorf("channel UC1: %w", linking.ErrOwnershipConflict),
			status:   http.StatusConflict,
			code:     CodeChannelOwnershipConflict,
		},
		{
			name:     "storage failure",
			body:     `{"code":"abc"}`,
			provider: stubProvider{channels: channels},
			storeErr: errors.New("connection reset"),
			status:   http.StatusInternalServerError,
			code:     CodeStorageError,
			details:  "connection reset",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := linking.NewService(logger.Discard(), tt.provider, &stubStore{err: tt.storeErr})
			e := newTestEcho(NewLinkHandler(logger.Discard(), svc, testJWTSecret))
			headers := tt.headers
			if headers == nil && tt.code != CodeUnauthenticated {
				headers = bearer(t, "user-1")
			}
			rec := doJSON(t, e, http.MethodPost, "/link-channels", tt.body, headers)
			expectStatus(t, rec, tt.status)
			body := decodeError(t, rec)
			if body.Error != tt.code {
				t.Fatalf("error code = %q, want %q", body.Error, tt.code)
			}
			if body.Details != tt.details {
				t.Fatalf("details = %q, want %q", body.Details, tt.details)
			}
		})
	}
}
