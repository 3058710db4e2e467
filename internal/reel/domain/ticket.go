package domain

import (
	"time"

	"github.com/aussiebroadwan/reel/pkg/idx"
)

// DefaultTicketTTL is how long an unredeemed ticket stays valid.
const DefaultTicketTTL = 24 * time.Hour

// VideoRef identifies a video at the third-party host.
type VideoRef struct {
	LibraryID string
	VideoID   string
}

// Ticket is a persisted single-use credential for one playback of a hosted
// video. Used only ever moves from false to true.
type Ticket struct {
	ID        idx.ID
	TokenHash string // cryptox.Fingerprint of the credential handed to the client
	SessionID string
	ViewerID  string // empty when issued without a viewer
	Video     VideoRef
	Used      bool
	UsedAt    *time.Time
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the ticket's deadline has passed at now.
func (t Ticket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
