package publications

import (
	"errors"
	"time"
)

// DefaultMaxRecords is the retention bound of the publication ledger.
const DefaultMaxRecords = 1000

// Errors returned by the publication service.
var (
	ErrMissingInput = errors.New("missing required fields")
	ErrStorage      = errors.New("failed to save publication")
)

// RecordRequest identifies one published item.
type RecordRequest struct {
	Platform   string `json:"platform"`
	ChannelID  string `json:"channel_id"`
	ContentID  string `json:"content_id"`
	ContentURL string `json:"content_url"`
}

// Publication is a stored ledger entry.
type Publication struct {
	ID          int64     `json:"id"`
	Platform    string    `json:"platform"`
	ChannelID   string    `json:"channel_id"`
	ContentID   string    `json:"content_id"`
	ContentURL  string    `json:"content_url"`
	PublishedAt time.Time `json:"published_at"`
}
