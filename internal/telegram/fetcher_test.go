package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/memohai/crosspost/internal/logger"
)

const previewPage = `<!DOCTYPE html>
<html><head>
<meta property="og:title" content="Канал: Cool Channel">
<meta property="og:description" content="News every day">
<meta property="og:image" content="https://cdn.example/cool.jpg">
</head><body></body></html>`

func newPreviewServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/s/coolchannel":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, previewPage)
		case "/s/emptychannel":
			fmt.Fprint(w, `<html><head><meta property="og:description" content="x"></head></html>`)
		case "/s/brokenchannel":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type fakeCounter struct {
	count int
	err   error
	calls []string
}

func (f *fakeCounter) MemberCount(_ context.Context, username string) (int, error) {
	f.calls = append(f.calls, username)
	return f.count, f.err
}

func TestFetchChannelInfo(t *testing.T) {
	srv := newPreviewServer(t)
	f := NewFetcher(logger.Discard(), Config{BaseURL: srv.URL + "/", RequestsPerSecond: 100}, srv.Client())

	info, err := f.FetchChannelInfo(context.Background(), "@coolchannel")
	if err != nil {
		t.Fatalf("FetchChannelInfo() error = %v", err)
	}
	want := ChannelInfo{
		Username:    "coolchannel",
		Title:       "Cool Channel",
		Description: "News every day",
		Image:       "https://cdn.example/cool.jpg",
	}
	if info != want {
		t.Fatalf("FetchChannelInfo() = %+v, want %+v", info, want)
	}
}

func TestFetchChannelInfoNotFound(t *testing.T) {
	srv := newPreviewServer(t)
	f := NewFetcher(logger.Discard(), Config{BaseURL: srv.URL, RequestsPerSecond: 100}, srv.Client())

	for _, name := range []string{"missing", "emptychannel", ""} {
		if _, err := f.FetchChannelInfo(context.Background(), name); !errors.Is(err, ErrChannelNotFound) {
			t.Errorf("FetchChannelInfo(%q) error = %v, want ErrChannelNotFound", name, err)
		}
	}
	_, err := f.FetchChannelInfo(context.Background(), "brokenchannel")
	if err == nil || errors.Is(err, ErrChannelNotFound) || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected upstream status error, got %v", err)
	}
}

func TestFetchChannelInfoMemberCount(t *testing.T) {
	srv := newPreviewServer(t)
	counter := &fakeCounter{count: 1234}
	f := NewFetcher(logger.Discard(), Config{BaseURL: srv.URL, RequestsPerSecond: 100}, srv.Client()).WithMemberCounter(counter)

	info, err := f.FetchChannelInfo(context.Background(), "coolchannel")
	if err != nil {
		t.Fatal(err)
	}
	if info.MemberCount != 1234 || len(counter.calls) != 1 || counter.calls[0] != "coolchannel" {
		t.Fatalf("member count not applied: %+v calls=%v", info, counter.calls)
	}

	counter.err = errors.New("bot down")
	info, err = f.FetchChannelInfo(context.Background(), "coolchannel")
	if err != nil {
		t.Fatalf("member count failure must not fail the fetch: %v", err)
	}
	if info.MemberCount != 0 || info.Title != "Cool Channel" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestFetchChannelInfoContextCanceled(t *testing.T) {
	srv := newPreviewServer(t)
	f := NewFetcher(logger.Discard(), Config{BaseURL: srv.URL, RequestsPerSecond: 100}, srv.Client())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.FetchChannelInfo(ctx, "coolchannel"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestParsePreviewTitlePrefixes(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Канал: Новости", "Новости"},
		{"Channel: News", "News"},
		{"Plain", "Plain"},
	}
	for _, tt := range tests {
		page := fmt.Sprintf(`<html><head><meta property="og:title" content="%s"></head></html>`, tt.title)
		info, err := parsePreview(strings.NewReader(page))
		if err != nil {
			t.Fatalf("parsePreview(%q) error = %v", tt.title, err)
		}
		if info.Title != tt.want {
			t.Errorf("parsePreview(%q) title = %q, want %q", tt.title, info.Title, tt.want)
		}
	}
}

func TestBotMemberCounter(t *testing.T) {
	var gotChatID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"bot","username":"test_bot"}}`)
		case strings.HasSuffix(r.URL.Path, "/getChatMembersCount"):
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse form: %v", err)
			}
			gotChatID = r.PostForm.Get("chat_id")
			fmt.Fprint(w, `{"ok":true,"result":42}`)
		default:
			fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
		}
	}))
	defer srv.Close()

	c := NewBotMemberCounter(logger.Discard(), "123:abc", srv.URL+"/bot%s/%s", srv.Client())
	count, err := c.MemberCount(context.Background(), "coolchannel")
	if err != nil {
		t.Fatalf("MemberCount() error = %v", err)
	}
	if count != 42 {
		t.Fatalf("MemberCount() = %d", count)
	}
	if gotChatID != "@coolchannel" {
		t.Fatalf("chat_id = %q", gotChatID)
	}
}
