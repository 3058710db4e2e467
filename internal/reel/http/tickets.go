package http

import (
	"net/http"

	"github.com/aussiebroadwan/reel/internal/reel/domain"
	"github.com/aussiebroadwan/reel/internal/reel/service"
	"github.com/aussiebroadwan/reel/pkg/httpx"
	"github.com/aussiebroadwan/reel/pkg/reelsdk"
)

type TicketsHandler struct {
	Tickets *service.TicketService
}

// HandleCreate godoc
//
//	@Summary		Create Video Ticket
//	@Description	Creates a one-time ticket for a video hosted by the third-party player and returns the redirect URL that redeems it.
//	@Tags			Video Tickets
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		reelsdk.CreateTicketRequest		true	"sessionId, providerVideoUrl"
//	@Success		201		{object}	reelsdk.CreateTicketResponse	"ticketId, redirectUrl, expiresAt"
//	@Failure		400		{object}	reelsdk.ErrorResponse			"error, error_description"
//	@Failure		401		{object}	reelsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/video-tickets [post].
func (h *TicketsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req reelsdk.CreateTicketRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, reelsdk.ErrorCodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" || req.ProviderVideoURL == "" {
		httpx.WriteError(w, http.StatusBadRequest, reelsdk.ErrorCodeInvalidRequest, "sessionId and providerVideoUrl are required")
		return
	}

	viewerID, _ := httpx.UserIDFromContext(ctx)

	redirectURL, t, err := h.Tickets.CreateTicket(ctx, req.SessionID, req.ProviderVideoURL, viewerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, reelsdk.CreateTicketResponse{
		TicketID:    t.ID.String(),
		RedirectURL: redirectURL,
		ExpiresAt:   t.ExpiresAt,
	})
}

// HandlePlay godoc
//
//	@Summary		Redeem Video Ticket
//	@Description	Spends the ticket and redirects to a freshly signed player URL. Works exactly once; the ticket in the path is the only credential.
//	@Tags			Video Tickets
//	@Param			ticket	path	string	true	"Ticket credential from redirectUrl"
//	@Success		302		"Location: signed player URL"
//	@Failure		404		{object}	reelsdk.ErrorResponse	"not_found"
//	@Failure		410		{object}	reelsdk.ErrorResponse	"already_used or ticket_expired"
//	@Router			/v1/video-tickets/play/{ticket} [get].
func (h *TicketsHandler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	playback, err := h.Tickets.RedeemTicket(r.Context(), r.PathValue("ticket"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Referrer-Policy", "no-referrer")
	http.Redirect(w, r, playback.PlayerURL, http.StatusFound)
}

// HandleList godoc
//
//	@Summary		List Session Tickets
//	@Description	Lists the video tickets of a session, newest first.
//	@Tags			Video Tickets
//	@Produce		json
//	@Security		BearerAuth
//	@Param			sessionId	path		string						true	"Session ID"
//	@Success		200			{object}	reelsdk.ListTicketsResponse	"tickets"
//	@Failure		401			{object}	reelsdk.ErrorResponse		"error, error_description"
//	@Failure		403			{object}	reelsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/video-tickets/session/{sessionId} [get].
func (h *TicketsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.Tickets.ListBySession(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := reelsdk.ListTicketsResponse{Tickets: make([]reelsdk.Ticket, 0, len(tickets))}
	for _, t := range tickets {
		resp.Tickets = append(resp.Tickets, toTicketResponse(t))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleDelete godoc
//
//	@Summary		Delete Video Ticket
//	@Tags			Video Tickets
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Ticket ID"
//	@Success		204	"deleted"
//	@Failure		404	{object}	reelsdk.ErrorResponse	"not_found"
//	@Router			/v1/video-tickets/{id} [delete].
func (h *TicketsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Tickets.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteBySession godoc
//
//	@Summary		Delete Session Tickets
//	@Description	Deletes every video ticket of a session and reports how many were removed.
//	@Tags			Video Tickets
//	@Produce		json
//	@Security		BearerAuth
//	@Param			sessionId	path		string							true	"Session ID"
//	@Success		200			{object}	reelsdk.DeleteTicketsResponse	"deleted"
//	@Router			/v1/video-tickets/session/{sessionId} [delete].
func (h *TicketsHandler) HandleDeleteBySession(w http.ResponseWriter, r *http.Request) {
	n, err := h.Tickets.DeleteBySession(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, reelsdk.DeleteTicketsResponse{Deleted: n})
}

func toTicketResponse(t domain.Ticket) reelsdk.Ticket {
	return reelsdk.Ticket{
		ID:        t.ID.String(),
		SessionID: t.SessionID,
		ViewerID:  t.ViewerID,
		LibraryID: t.Video.LibraryID,
		VideoID:   t.Video.VideoID,
		Used:      t.Used,
		UsedAt:    t.UsedAt,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
	}
}
