package domain

import "time"

// AccessGrant is returned when a viewer asks to watch an HLS session.
type AccessGrant struct {
	PlaylistURL string
	ExpiresIn   time.Duration
	ExpiresAt   time.Time
}

// Playback is the result of redeeming a ticket.
type Playback struct {
	PlayerURL string
	Ticket    Ticket
}
