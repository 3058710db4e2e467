package reelsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Scopes understood by the service.
const (
	ScopeVideoPlay  = "video:play"
	ScopeVideoAdmin = "video:admin"
)

// Session performs requests on behalf of a principal.
type Session struct {
	client      *SDKClient
	accessToken string
	scopes      map[string]bool
}

// HasScope reports whether the session was granted scope.
func (s *Session) HasScope(scope string) bool {
	return s.scopes[scope]
}

func (s *Session) checkScopes(required ...string) error {
	if !s.client.CheckScopes || len(required) == 0 {
		return nil
	}
	for _, r := range required {
		if s.scopes[r] {
			return nil
		}
	}
	return fmt.Errorf("missing required scope: %s", strings.Join(required, " or "))
}

// GetAccessURL asks for a playlist URL for one session of a course.
func (s *Session) GetAccessURL(ctx context.Context, courseID, sessionID string) (*AccessURLResponse, error) {
	q := url.Values{}
	q.Set("courseId", courseID)
	q.Set("sessionId", sessionID)

	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/hls/access-url?"+q.Encode(), nil, nil, ScopeVideoPlay)
	if err != nil {
		return nil, err
	}

	var out AccessURLResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTicket creates a one-time ticket for a hosted video.
func (s *Session) CreateTicket(ctx context.Context, req CreateTicketRequest) (*CreateTicketResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/video-tickets", bytes.NewReader(body),
		map[string]string{"Content-Type": "application/json"}, ScopeVideoPlay)
	if err != nil {
		return nil, err
	}

	var out CreateTicketResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTickets returns the tickets of a session, newest first.
func (s *Session) ListTickets(ctx context.Context, sessionID string) ([]Ticket, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/video-tickets/session/"+url.PathEscape(sessionID), nil, nil, ScopeVideoAdmin)
	if err != nil {
		return nil, err
	}

	var out ListTicketsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Tickets, nil
}

// DeleteTicket removes a ticket by id.
func (s *Session) DeleteTicket(ctx context.Context, ticketID string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/video-tickets/"+url.PathEscape(ticketID), nil, nil, ScopeVideoAdmin)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// DeleteSessionTickets removes every ticket of a session.
func (s *Session) DeleteSessionTickets(ctx context.Context, sessionID string) (int64, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/video-tickets/session/"+url.PathEscape(sessionID), nil, nil, ScopeVideoAdmin)
	if err != nil {
		return 0, err
	}

	var out DeleteTicketsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}
