package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/reel/internal/reel/domain"
	"github.com/aussiebroadwan/reel/internal/reel/metrics"
	"github.com/aussiebroadwan/reel/internal/reel/player"
	"github.com/aussiebroadwan/reel/internal/reel/store"
	"github.com/aussiebroadwan/reel/pkg/cryptox"
	"github.com/aussiebroadwan/reel/pkg/idx"
	"github.com/aussiebroadwan/reel/pkg/slogx"
)

type TicketConfig struct {
	PublicBaseURL string
	TTL           time.Duration
}

// TicketService issues and redeems one-time tickets for videos hosted by
// the third-party player. The credential handed to clients is random and
// only its fingerprint is stored.
type TicketService struct {
	Tickets store.Tickets
	Signer  player.Signer
	Config  TicketConfig
	Now     func() time.Time
}

// CreateTicket stores a new unused ticket for the video behind
// providerVideoURL and returns the redirect URL that redeems it. The URL
// carries the credential only, never the provider ids.
func (s *TicketService) CreateTicket(ctx context.Context, sessionID, providerVideoURL, viewerID string) (string, domain.Ticket, error) {
	log := slogx.FromContext(ctx)

	if strings.TrimSpace(sessionID) == "" {
		return "", domain.Ticket{}, ErrInvalidRequest
	}

	ref, err := player.ParseProviderURL(providerVideoURL)
	if err != nil {
		log.Warn("rejected provider video url", slog.String("session_id", sessionID))
		return "", domain.Ticket{}, ErrInvalidProviderURL
	}

	credential, err := cryptox.NewCredential()
	if err != nil {
		return "", domain.Ticket{}, err
	}

	now := s.now()
	t := domain.Ticket{
		ID:        idx.NewAt(now),
		TokenHash: cryptox.Fingerprint(credential),
		SessionID: sessionID,
		ViewerID:  viewerID,
		Video:     ref,
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
	}

	if err := s.Tickets.CreateTicket(ctx, t); err != nil {
		log.Error("failed to store video ticket", slogx.Err(err))
		return "", domain.Ticket{}, err
	}
	metrics.TicketsCreated.Inc()

	log.Info("created video ticket",
		slog.String("ticket_id", t.ID.String()),
		slog.String("session_id", sessionID),
		slog.Time("expires_at", t.ExpiresAt),
	)
	return s.RedirectURL(credential), t, nil
}

// RedeemTicket consumes the ticket and returns a freshly signed player URL.
// Exactly one of any number of concurrent calls for the same credential
// succeeds; the rest get ErrTicketAlreadyUsed.
func (s *TicketService) RedeemTicket(ctx context.Context, credential string) (domain.Playback, error) {
	log := slogx.FromContext(ctx)

	if !cryptox.IsCredential(credential) {
		metrics.RecordRedemption("not_found")
		return domain.Playback{}, ErrTicketNotFound
	}

	hash := cryptox.Fingerprint(credential)
	now := s.now()

	t, err := s.Tickets.ConsumeTicket(ctx, hash, now)
	if err == nil {
		metrics.RecordRedemption("ok")
		log.Info("redeemed video ticket",
			slog.String("ticket_id", t.ID.String()),
			slog.String("session_id", t.SessionID),
		)
		return domain.Playback{PlayerURL: s.Signer.Sign(t.Video), Ticket: t}, nil
	}
	if !errors.Is(err, store.ErrConditionFailed) {
		metrics.RecordRedemption("error")
		log.Error("failed to consume video ticket", slogx.Err(err))
		return domain.Playback{}, err
	}

	// The conditional update did not apply. Read the row back to say why.
	err = s.classify(ctx, hash, now)
	switch {
	case errors.Is(err, ErrTicketNotFound):
		metrics.RecordRedemption("not_found")
	case errors.Is(err, ErrTicketAlreadyUsed):
		metrics.RecordRedemption("already_used")
	case errors.Is(err, ErrTicketExpired):
		metrics.RecordRedemption("expired")
	default:
		metrics.RecordRedemption("error")
	}
	return domain.Playback{}, err
}

func (s *TicketService) classify(ctx context.Context, hash string, now time.Time) error {
	t, err := s.Tickets.GetTicketByHash(ctx, hash)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrTicketNotFound
	case err != nil:
		return err
	case t.Used:
		slogx.FromContext(ctx).Warn("video ticket reuse attempt", slog.String("ticket_id", t.ID.String()))
		return ErrTicketAlreadyUsed
	case t.Expired(now):
		return ErrTicketExpired
	}
	// Unused and unexpired but the update still missed: another redemption
	// won between the two statements and has not become visible yet.
	return ErrTicketAlreadyUsed
}

// ListBySession returns the tickets of a session, newest first.
func (s *TicketService) ListBySession(ctx context.Context, sessionID string) ([]domain.Ticket, error) {
	if sessionID == "" {
		return nil, ErrInvalidRequest
	}
	return s.Tickets.ListTicketsBySession(ctx, sessionID)
}

func (s *TicketService) Delete(ctx context.Context, id string) error {
	ticketID, err := idx.Parse(id)
	if err != nil {
		return ErrTicketNotFound
	}
	err = s.Tickets.DeleteTicket(ctx, ticketID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrTicketNotFound
	}
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	slogx.FromContext(ctx).Info("deleted video ticket", slog.String("ticket_id", id))
	return nil
}

// DeleteBySession removes every ticket of a session and returns how many
// were removed.
func (s *TicketService) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, ErrInvalidRequest
	}
	n, err := s.Tickets.DeleteTicketsBySession(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("delete session tickets: %w", err)
	}
	slogx.FromContext(ctx).Info("deleted session video tickets",
		slog.String("session_id", sessionID),
		slog.Int64("deleted", n),
	)
	return n, nil
}

// RedirectURL is the public URL that redeems credential.
func (s *TicketService) RedirectURL(credential string) string {
	return strings.TrimSuffix(s.Config.PublicBaseURL, "/") + "/v1/video-tickets/play/" + url.PathEscape(credential)
}

func (s *TicketService) ttl() time.Duration {
	if s.Config.TTL > 0 {
		return s.Config.TTL
	}
	return domain.DefaultTicketTTL
}

func (s *TicketService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
