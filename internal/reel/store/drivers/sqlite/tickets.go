package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/aussiebroadwan/reel/internal/reel/domain"
	"github.com/aussiebroadwan/reel/internal/reel/store"
	"github.com/aussiebroadwan/reel/pkg/idx"
)

type ticketsRepo struct {
	db dbtx
}

const ticketColumns = `id, token_hash, session_id, viewer_id, library_id, video_id, used, used_at, expires_at, created_at`

func (r *ticketsRepo) CreateTicket(ctx context.Context, t domain.Ticket) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO video_tickets (`+ticketColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, 0, NULL, ?, ?)`,
		t.ID.String(), t.TokenHash, t.SessionID, mapStringNull(t.ViewerID),
		t.Video.LibraryID, t.Video.VideoID,
		toMillis(t.ExpiresAt), toMillis(t.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *ticketsRepo) GetTicketByHash(ctx context.Context, hash string) (domain.Ticket, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM video_tickets WHERE token_hash = ?`, hash)
	t, err := scanTicket(row)
	return t, mapNotFound(err)
}

// ConsumeTicket relies on the WHERE clause of a single UPDATE for the
// check-and-set, so concurrent callers cannot both see used = 0.
func (r *ticketsRepo) ConsumeTicket(ctx context.Context, hash string, now time.Time) (domain.Ticket, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE video_tickets
		   SET used = 1, used_at = ?
		 WHERE token_hash = ? AND used = 0 AND expires_at > ?
		RETURNING `+ticketColumns,
		toMillis(now), hash, toMillis(now),
	)
	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Ticket{}, store.ErrConditionFailed
	}
	return t, err
}

func (r *ticketsRepo) ListTicketsBySession(ctx context.Context, sessionID string) ([]domain.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+ticketColumns+`
		  FROM video_tickets
		 WHERE session_id = ?
		 ORDER BY created_at DESC, id DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *ticketsRepo) DeleteTicket(ctx context.Context, id idx.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM video_tickets WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *ticketsRepo) DeleteTicketsBySession(ctx context.Context, sessionID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM video_tickets WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ticketsRepo) DeleteExpiredTickets(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM video_tickets WHERE expires_at < ?`, toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTicket(s scanner) (domain.Ticket, error) {
	var (
		t                    domain.Ticket
		id                   string
		viewerID             sql.NullString
		usedAt               sql.NullInt64
		expiresAt, createdAt int64
	)
	err := s.Scan(&id, &t.TokenHash, &t.SessionID, &viewerID,
		&t.Video.LibraryID, &t.Video.VideoID,
		&t.Used, &usedAt, &expiresAt, &createdAt)
	if err != nil {
		return domain.Ticket{}, err
	}

	t.ID = idx.ID(id)
	t.ViewerID = viewerID.String
	t.UsedAt = mapNullMillis(usedAt)
	t.ExpiresAt = fromMillis(expiresAt)
	t.CreatedAt = fromMillis(createdAt)
	return t, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
