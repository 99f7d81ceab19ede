package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"

	"github.com/memohai/crosspost/internal/accounts"
	"github.com/memohai/crosspost/internal/auth"
	"github.com/memohai/crosspost/internal/db/sqlc"
	"github.com/memohai/crosspost/internal/logger"
)

type stubUserQueries struct {
	users map[string]sqlc.User
}

func (s *stubUserQueries) CountUsers(context.Context) (int64, error) {
	return int64(len(s.users)), nil
}

func (s *stubUserQueries) CreateUser(_ context.Context, arg sqlc.CreateUserParams) (sqlc.User, error) {
	u := sqlc.User{
		ID:           pgtype.UUID{Bytes: uuid.New(), Valid: true},
		Username:     arg.Username,
		PasswordHash: arg.PasswordHash,
		Role:         arg.Role,
		DisplayName:  arg.DisplayName,
		IsActive:     arg.IsActive,
	}
	s.users[arg.Username] = u
	return u, nil
}

func (s *stubUserQueries) GetUserByID(_ context.Context, id pgtype.UUID) (sqlc.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return sqlc.User{}, pgx.ErrNoRows
}

func (s *stubUserQueries) GetUserByUsername(_ context.Context, username string) (sqlc.User, error) {
	u, ok := s.users[username]
	if !ok {
		return sqlc.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (s *stubUserQueries) UpdateUserLastLogin(context.Context, pgtype.UUID) error {
	return nil
}

func newAuthTestEcho(t *testing.T) (*echo.Echo, *stubUserQueries, accounts.Account) {
	t.Helper()
	queries := &stubUserQueries{users: map[string]sqlc.User{}}
	svc := accounts.NewService(logger.Discard(), queries)
	account, err := svc.Create(context.Background(), accounts.CreateAccountRequest{Username: "editor", Password: "s3cret"})
	if err != nil {
		t.Fatal(err)
	}
	e := newAuthedEcho(NewAuthHandler(logger.Discard(), svc, testJWTSecret, time.Hour))
	return e, queries, account
}

func TestLoginAndMe(t *testing.T) {
	e, _, account := newAuthTestEcho(t)

	rec := doJSON(t, e, http.MethodPost, "/auth/login", `{"username":" editor ","password":"s3cret"}`, nil)
	expectStatus(t, rec, http.StatusOK)
	var login LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatal(err)
	}
	if login.TokenType != "Bearer" || login.UserID != account.ID || login.Username != "editor" {
		t.Fatalf("unexpected login response %#v", login)
	}
	if _, err := time.Parse(time.RFC3339, login.ExpiresAt); err != nil {
		t.Fatalf("expires_at %q: %v", login.ExpiresAt, err)
	}
	subject, err := auth.ParseToken(login.AccessToken, testJWTSecret)
	if err != nil || subject != account.ID {
		t.Fatalf("token subject = %q, err = %v", subject, err)
	}

	rec = doJSON(t, e, http.MethodGet, "/auth/me", "", map[string]string{"Authorization": "Bearer " + login.AccessToken})
	expectStatus(t, rec, http.StatusOK)
	var me accounts.Account
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatal(err)
	}
	if me.ID != account.ID || me.Username != "editor" || !me.IsActive {
		t.Fatalf("unexpected account %#v", me)
	}
}

func TestLoginErrors(t *testing.T) {
	e, queries, _ := newAuthTestEcho(t)
	inactive := queries.users["editor"]
	inactive.Username = "retired"
	inactive.ID = pgtype.UUID{Bytes: uuid.New(), Valid: true}
	inactive.IsActive = false
	queries.users["retired"] = inactive

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{name: "blank password", body: `{"username":"editor","password":"  "}`, status: http.StatusBadRequest, code: CodeMissingInput},
		{name: "malformed body", body: `{"username":`, status: http.StatusBadRequest, code: CodeInvalidInput},
		{name: "wrong password", body: `{"username":"editor","password":"nope"}`, status: http.StatusUnauthorized, code: CodeUnauthenticated},
		{name: "unknown user", body: `{"username":"ghost","password":"s3cret"}`, status: http.StatusUnauthorized, code: CodeUnauthenticated},
		{name: "inactive user", body: `{"username":"retired","password":"s3cret"}`, status: http.StatusUnauthorized, code: CodeUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, e, http.MethodPost, "/auth/login", tt.body, nil)
			expectStatus(t, rec, tt.status)
			if body := decodeError(t, rec); body.Error != tt.code {
				t.Fatalf("error code = %q, want %q", body.Error, tt.code)
			}
		})
	}
}

func TestMeRejectsMissingOrUnknownUser(t *testing.T) {
	e, _, _ := newAuthTestEcho(t)

	rec := doJSON(t, e, http.MethodGet, "/auth/me", "", nil)
	expectStatus(t, rec, http.StatusUnauthorized)
	if body := decodeError(t, rec); body.Error != CodeUnauthenticated {
		t.Fatalf("unexpected body %#v", body)
	}

	rec = doJSON(t, e, http.MethodGet, "/auth/me", "", bearer(t, uuid.NewString()))
	expectStatus(t, rec, http.StatusUnauthorized)
	if body := decodeError(t, rec); body.Error != CodeUnauthenticated {
		t.Fatalf("unexpected body %#v", body)
	}
}
