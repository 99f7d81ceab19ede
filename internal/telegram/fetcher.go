// Package telegram reads public channel metadata from Telegram preview pages.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://t.me"
	defaultRPS     = 2.0
	defaultTimeout = 10 * time.Second
	maxPageBytes   = 2 << 20
	userAgent      = "Mozilla/5.0 (compatible; crosspost/1.0)"
)

// Localized prefixes Telegram prepends to og:title on channel previews.
var titlePrefixes = []string{"Канал: ", "Channel: "}

// MemberCounter returns the subscriber count of a public channel.
type MemberCounter interface {
	MemberCount(ctx context.Context, username string) (int, error)
}

// Fetcher loads channel previews from t.me/s/<username>.
type Fetcher struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	members MemberCounter
	logger  *slog.Logger
}

// NewFetcher creates a fetcher. A nil client uses a client with a 10s timeout.
// When cfg.BotToken is set, results are enriched with the member count from the Bot API.
func NewFetcher(log *slog.Logger, cfg Config, client *http.Client) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}
	f := &Fetcher{
		baseURL: baseURL,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  log.With(slog.String("service", "telegram")),
	}
	if strings.TrimSpace(cfg.BotToken) != "" {
		f.members = NewBotMemberCounter(log, cfg.BotToken, cfg.BotAPIEndpoint, client)
	}
	return f
}

// WithMemberCounter replaces the member count source; nil disables enrichment.
func (f *Fetcher) WithMemberCounter(m MemberCounter) *Fetcher {
	f.members = m
	return f
}

// FetchChannelInfo returns the public metadata of username.
// A missing page or a page without og:title yields ErrChannelNotFound.
func (f *Fetcher) FetchChannelInfo(ctx context.Context, username string) (ChannelInfo, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return ChannelInfo{}, ErrChannelNotFound
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return ChannelInfo{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/s/"+url.PathEscape(username), nil)
	if err != nil {
		return ChannelInfo{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return ChannelInfo{}, fmt.Errorf("fetch channel page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ChannelInfo{}, ErrChannelNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ChannelInfo{}, fmt.Errorf("fetch channel page: unexpected status %d", resp.StatusCode)
	}

	info, err := parsePreview(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return ChannelInfo{}, err
	}
	info.Username = username

	if f.members != nil {
		count, err := f.members.MemberCount(ctx, username)
		if err != nil {
			f.logger.Warn("member count failed", slog.String("username", username), slog.Any("error", err))
		} else {
			info.MemberCount = count
		}
	}
	return info, nil
}

func parsePreview(r io.Reader) (ChannelInfo, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ChannelInfo{}, fmt.Errorf("parse channel page: %w", err)
	}
	title := metaContent(doc, "og:title")
	if title == "" {
		return ChannelInfo{}, ErrChannelNotFound
	}
	for _, prefix := range titlePrefixes {
		title = strings.TrimPrefix(title, prefix)
	}
	return ChannelInfo{
		Title:       strings.TrimSpace(title),
		Description: metaContent(doc, "og:description"),
		Image:       metaContent(doc, "og:image"),
	}, nil
}

func metaContent(doc *goquery.Document, property string) string {
	sel := doc.Find(fmt.Sprintf(`meta[property="%s"]`, property)).First()
	if sel.Length() == 0 {
		sel = doc.Find(fmt.Sprintf(`meta[name="%s"]`, property)).First()
	}
	content, _ := sel.Attr("content")
	return strings.TrimSpace(content)
}
