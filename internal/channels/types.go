package channels

import (
	"errors"
	"time"

	"github.com/memohai/crosspost/internal/secrets"
)

// Errors returned by channel operations.
var (
	ErrChannelNotFound = errors.New("channel not found")
	ErrSourceExists    = errors.New("channel already added")
	ErrInvalidInput    = errors.New("invalid channel link")

	// ErrCredentialsChanged means the row was rewritten between ListExpiring and UpdateCredentials.
	ErrCredentialsChanged = errors.New("linked channel changed since it was read")
)

// LinkedChannel is an OAuth-linked channel as shown to its owner. Credentials are never exposed.
type LinkedChannel struct {
	ID                string    `json:"id"`
	Platform          string    `json:"platform"`
	ExternalChannelID string    `json:"external_channel_id"`
	Title             string    `json:"title"`
	TokenExpiry       time.Time `json:"token_expiry,omitzero"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ExpiringChannel is a linked channel whose access token is due for refresh.
type ExpiringChannel struct {
	ID                string
	OwnerID           string
	ExternalChannelID string
	Credentials       secrets.Credentials

	// UpdatedAt is the row version the credentials were read at.
	UpdatedAt time.Time
}

// SourceChannel is a public channel a user republishes from.
type SourceChannel struct {
	ID          string    `json:"id"`
	Platform    string    `json:"platform"`
	Handle      string    `json:"handle"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	MemberCount int       `json:"member_count,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AddSourceRequest is the input for adding a source channel.
type AddSourceRequest struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}
