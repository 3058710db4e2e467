package reelsdk

import "time"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	// Error is a stable error code (e.g. "token_expired", "already_used")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// HLS Types
// ============================================================================

// AccessURLResponse is returned by GET /v1/hls/access-url.
type AccessURLResponse struct {
	// PlaylistURL is the fully qualified playlist URL, hlsToken included
	PlaylistURL string `json:"playlistUrl"`

	// ExpiresIn is the token lifetime in seconds
	ExpiresIn int `json:"expiresIn"`
}

// ============================================================================
// Video Ticket Types
// ============================================================================

// CreateTicketRequest is the body of POST /v1/video-tickets.
type CreateTicketRequest struct {
	SessionID string `json:"sessionId"`

	// ProviderVideoURL is the host's URL of the video, of the form
	// https://host/<kind>/<libraryId>/<videoId>
	ProviderVideoURL string `json:"providerVideoUrl"`
}

// CreateTicketResponse is returned when a ticket is created.
type CreateTicketResponse struct {
	TicketID string `json:"ticketId"`

	// RedirectURL redeems the ticket once. It carries no provider ids.
	RedirectURL string    `json:"redirectUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Ticket is the administrative view of a ticket.
type Ticket struct {
	ID        string     `json:"id"`
	SessionID string     `json:"sessionId"`
	ViewerID  string     `json:"viewerId,omitempty"`
	LibraryID string     `json:"libraryId"`
	VideoID   string     `json:"videoId"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	ExpiresAt time.Time  `json:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

type ListTicketsResponse struct {
	Tickets []Ticket `json:"tickets"`
}

type DeleteTicketsResponse struct {
	Deleted int64 `json:"deleted"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz (readyz adds Checks).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of the service's dependencies.
type HealthChecks struct {
	// Database indicates the ticket and directory store status
	Database string `json:"database"`

	// PrincipalKeys indicates whether keys for verifying bearer tokens are loaded
	PrincipalKeys string `json:"principal_keys"`

	// Tickets indicates the ticket store status when it is not the database
	Tickets string `json:"tickets,omitempty"`
}
