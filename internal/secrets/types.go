// Package secrets seals credential bundles before they reach the datastore.
package secrets

import (
	"errors"
	"time"

	"golang.org/x/oauth2"
)

// Errors returned by sealing operations.
var (
	ErrEmptyKey  = errors.New("secrets key is empty")
	ErrMalformed = errors.New("sealed value is malformed")
	ErrDecrypt   = errors.New("sealed value cannot be opened")
)

// Sealer encrypts and authenticates opaque values.
type Sealer interface {
	Seal(plaintext []byte) (string, error)
	Open(sealed string) ([]byte, error)
}

// Credentials is the OAuth credential bundle stored for a linked channel.
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitzero"`
}

// FromToken copies an oauth2 token into a bundle.
func FromToken(tok *oauth2.Token) Credentials {
	if tok == nil {
		return Credentials{}
	}
	return Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
}

// Token converts the bundle back into an oauth2 token.
func (c Credentials) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
	}
}
