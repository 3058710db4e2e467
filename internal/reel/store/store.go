package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/reel/internal/reel/domain"
	"github.com/aussiebroadwan/reel/pkg/idx"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConditionFailed means a conditional write matched no row. Callers
	// re-read the record to find out which condition did not hold.
	ErrConditionFailed = errors.New("store: condition failed")
)

// Store is the root data access interface. Drivers expose sub-repositories so
// a transaction-scoped Store hands out the same repos bound to the tx.
type Store interface {
	Tickets() Tickets
	Directory() Directory

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise. fn must only use the Tx it is given.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Tickets persists one-time video tickets.
type Tickets interface {
	// CreateTicket inserts a new unused ticket.
	CreateTicket(ctx context.Context, t domain.Ticket) error

	// GetTicketByHash looks a ticket up by credential fingerprint.
	GetTicketByHash(ctx context.Context, hash string) (domain.Ticket, error)

	// ConsumeTicket flips used to true for the ticket with this hash, but only
	// if it is still unused and unexpired at now. The check and the write are
	// one atomic step; when it does not apply ErrConditionFailed is returned.
	ConsumeTicket(ctx context.Context, hash string, now time.Time) (domain.Ticket, error)

	// ListTicketsBySession returns a session's tickets, newest first.
	ListTicketsBySession(ctx context.Context, sessionID string) ([]domain.Ticket, error)

	// DeleteTicket removes a ticket by id.
	DeleteTicket(ctx context.Context, id idx.ID) error

	// DeleteTicketsBySession removes every ticket of a session and reports how many.
	DeleteTicketsBySession(ctx context.Context, sessionID string) (int64, error)

	// DeleteExpiredTickets removes tickets whose expiry is before cutoff.
	DeleteExpiredTickets(ctx context.Context, cutoff time.Time) (int64, error)
}

// Directory answers who may watch what. It is a local projection of the
// platform's identity, enrollment and course data.
type Directory interface {
	GetViewer(ctx context.Context, id string) (domain.Viewer, error)
	UpsertViewer(ctx context.Context, v domain.Viewer) error

	IsEnrolled(ctx context.Context, viewerID, courseID string) (bool, error)
	Enroll(ctx context.Context, viewerID, courseID string) error
	Unenroll(ctx context.Context, viewerID, courseID string) error

	GetSession(ctx context.Context, courseID, sessionID string) (domain.Session, error)
	UpsertSession(ctx context.Context, s domain.Session) error
}
