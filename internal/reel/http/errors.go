package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/reel/internal/reel/service"
	"github.com/aussiebroadwan/reel/pkg/httpx"
	"github.com/aussiebroadwan/reel/pkg/reelsdk"
	"github.com/aussiebroadwan/reel/pkg/slogx"
)

type errorMapping struct {
	status int
	code   string
	desc   string
}

// mapError translates service errors into their HTTP form. Anything it
// does not recognise is a server error.
func mapError(err error) errorMapping {
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		return errorMapping{http.StatusUnauthorized, reelsdk.ErrorCodeInvalidToken, "access token is missing or invalid"}
	case errors.Is(err, service.ErrExpired):
		return errorMapping{http.StatusUnauthorized, reelsdk.ErrorCodeTokenExpired, "access token expired"}
	case errors.Is(err, service.ErrForbidden):
		return errorMapping{http.StatusForbidden, reelsdk.ErrorCodeForbidden, "access to this resource is not allowed"}
	case errors.Is(err, service.ErrNotFound):
		return errorMapping{http.StatusNotFound, reelsdk.ErrorCodeNotFound, "resource not found"}
	case errors.Is(err, service.ErrTicketNotFound):
		return errorMapping{http.StatusNotFound, reelsdk.ErrorCodeNotFound, "video ticket not found"}
	case errors.Is(err, service.ErrTicketAlreadyUsed):
		return errorMapping{http.StatusGone, reelsdk.ErrorCodeAlreadyUsed, "video ticket has already been used"}
	case errors.Is(err, service.ErrTicketExpired):
		return errorMapping{http.StatusGone, reelsdk.ErrorCodeTicketExpired, "video ticket expired"}
	case errors.Is(err, service.ErrInvalidProviderURL):
		return errorMapping{http.StatusBadRequest, reelsdk.ErrorCodeInvalidRequest, "providerVideoUrl is not a valid video url"}
	case errors.Is(err, service.ErrInvalidRequest):
		return errorMapping{http.StatusBadRequest, reelsdk.ErrorCodeInvalidRequest, "invalid request parameters"}
	case errors.Is(err, service.ErrUpstream):
		return errorMapping{http.StatusBadGateway, reelsdk.ErrorCodeUpstreamFailure, "storage is unavailable"}
	}
	return errorMapping{http.StatusInternalServerError, reelsdk.ErrorCodeServerError, "internal server error"}
}

// writeServiceError writes err and returns the error code for metrics.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) string {
	if errors.Is(err, context.Canceled) {
		// Client went away; nobody is listening for a body.
		return "canceled"
	}

	m := mapError(err)
	if m.status >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", slogx.Err(err))
	}
	httpx.WriteError(w, m.status, m.code, m.desc)
	return m.code
}
