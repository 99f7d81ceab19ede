// Package youtube wraps the Google OAuth consent flow and the YouTube Data API
// calls used to link channels.
package youtube

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	ytapi "google.golang.org/api/youtube/v3"
	"google.golang.org/api/option"

	"github.com/memohai/crosspost/internal/config"
	"github.com/memohai/crosspost/internal/secrets"
)

// Platform is the platform name stored on linked YouTube channels.
const Platform = "youtube"

// Scopes requested on the consent screen.
var Scopes = []string{
	ytapi.YoutubeReadonlyScope,
	ytapi.YoutubeForceSslScope,
}

// maxPages bounds channels.list pagination for a single credential.
const maxPages = 10

// ErrNotConfigured is returned when no OAuth client id is configured.
var ErrNotConfigured = errors.New("google oauth client not configured")

// Channel is a YouTube channel owned by the authorizing account.
type Channel struct {
	ID    string
	Title string
}

// Client performs the OAuth exchange and channel listing against Google.
type Client struct {
	oauth       *oauth2.Config
	apiEndpoint string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient creates a client from cfg. A nil httpClient uses http.DefaultClient.
func NewClient(log *slog.Logger, cfg config.GoogleConfig, httpClient *http.Client) *Client {
	if log == nil {
		log = slog.Default()
	}
	endpoint := google.Endpoint
	if strings.TrimSpace(cfg.AuthURL) != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if strings.TrimSpace(cfg.TokenURL) != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       Scopes,
		},
		apiEndpoint: strings.TrimSpace(cfg.APIEndpoint),
		httpClient:  httpClient,
		logger:      log.With(slog.String("service", "youtube")),
	}
}

// NewState returns a random opaque value for the OAuth state parameter.
func NewState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// AuthURL returns the consent URL. Offline access and forced consent make Google return a refresh token.
func (c *Client) AuthURL(state string) (string, error) {
	if strings.TrimSpace(c.oauth.ClientID) == "" {
		return "", ErrNotConfigured
	}
	return c.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	), nil
}

// Exchange trades an authorization code for a credential bundle. It makes a single attempt.
func (c *Client) Exchange(ctx context.Context, code string) (secrets.Credentials, error) {
	if strings.TrimSpace(c.oauth.ClientID) == "" {
		return secrets.Credentials{}, ErrNotConfigured
	}
	tok, err := c.oauth.Exchange(c.clientContext(ctx), code)
	if err != nil {
		return secrets.Credentials{}, describeTokenError(err)
	}
	return secrets.FromToken(tok), nil
}

// ListMine returns the channels owned by the account behind creds, in API order.
func (c *Client) ListMine(ctx context.Context, creds secrets.Credentials) ([]Channel, error) {
	svc, err := c.service(ctx, creds)
	if err != nil {
		return nil, err
	}
	var (
		out       []Channel
		pageToken string
	)
	for page := 0; ; page++ {
		if page == maxPages {
			c.logger.Warn("youtube channel listing truncated",
				slog.Int("pages", maxPages), slog.Int("channels", len(out)))
			break
		}
		call := svc.Channels.List([]string{"snippet"}).Mine(true).MaxResults(50).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list youtube channels: %w", err)
		}
		for _, item := range resp.Items {
			if item == nil || item.Id == "" {
				continue
			}
			title := ""
			if item.Snippet != nil {
				title = item.Snippet.Title
			}
			out = append(out, Channel{ID: item.Id, Title: title})
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return out, nil
}

// Refresh returns a fresh bundle for creds using its refresh token.
// The refresh token is carried over when Google does not rotate it.
func (c *Client) Refresh(ctx context.Context, creds secrets.Credentials) (secrets.Credentials, error) {
	if creds.RefreshToken == "" {
		return secrets.Credentials{}, errors.New("no refresh token stored")
	}
	expired := creds.Token()
	expired.AccessToken = ""
	tok, err := c.oauth.TokenSource(c.clientContext(ctx), expired).Token()
	if err != nil {
		return secrets.Credentials{}, describeTokenError(err)
	}
	fresh := secrets.FromToken(tok)
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = creds.RefreshToken
	}
	return fresh, nil
}

func (c *Client) service(ctx context.Context, creds secrets.Credentials) (*ytapi.Service, error) {
	opts := []option.ClientOption{
		option.WithHTTPClient(c.oauth.Client(c.clientContext(ctx), creds.Token())),
	}
	if c.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(c.apiEndpoint))
	}
	svc, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return svc, nil
}

func (c *Client) clientContext(ctx context.Context) context.Context {
	if c.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// describeTokenError keeps the provider's error text for callers that surface it.
func describeTokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorCode != "" {
			if re.ErrorDescription != "" {
				return fmt.Errorf("%s: %s", re.ErrorCode, re.ErrorDescription)
			}
			return errors.New(re.ErrorCode)
		}
	}
	return err
}
