package linking

import (
	"context"
	"errors"

	"github.com/memohai/crosspost/internal/secrets"
	"github.com/memohai/crosspost/internal/youtube"
)

// Errors returned by LinkChannels. Handlers map them to HTTP statuses.
var (
	ErrMissingInput             = errors.New("missing authorization code")
	ErrExchangeFailed           = errors.New("failed to exchange authorization code")
	ErrUnauthenticated          = errors.New("user not authenticated")
	ErrNoChannelsFound          = errors.New("no channels found for this account")
	ErrChannelOwnershipConflict = errors.New("channel is already linked by another user")
	ErrStorage                  = errors.New("failed to save channels")
)

// Exchanger trades an authorization code for a credential bundle.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (secrets.Credentials, error)
}

// ChannelLister lists the channels owned by a credential.
type ChannelLister interface {
	ListMine(ctx context.Context, creds secrets.Credentials) ([]youtube.Channel, error)
}

// Provider is the external platform used for linking.
type Provider interface {
	Exchanger
	ChannelLister
}

// LinkedChannel is one row of the link batch.
type LinkedChannel struct {
	OwnerID           string
	Platform          string
	ExternalChannelID string
	Title             string
	Credentials       secrets.Credentials
}

// Store persists a link batch atomically. It returns ErrOwnershipConflict (wrapped or not)
// when any channel belongs to another owner, in which case nothing is written.
type Store interface {
	UpsertLinked(ctx context.Context, batch []LinkedChannel) error
}

// ErrOwnershipConflict is returned by Store implementations on an owner mismatch.
var ErrOwnershipConflict = errors.New("linked channel owned by another user")

// Result is the outcome of a successful link.
type Result struct {
	Titles []string
}
