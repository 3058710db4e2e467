package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/reel/internal/reel/store"
	"github.com/aussiebroadwan/reel/pkg/httpx"
	"github.com/aussiebroadwan/reel/pkg/jwtx"
	"github.com/aussiebroadwan/reel/pkg/reelsdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, and the status of the database, the principal verification keys and, when separate, the ticket store
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	reelsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	reelsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	keys *jwtx.KeySet,
	ticketPing func(context.Context) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		checks := &reelsdk.HealthChecks{Database: healthOK, PrincipalKeys: healthOK}
		ready := true

		if err := st.Ping(ctx); err != nil {
			checks.Database = "error: " + err.Error()
			ready = false
		}

		// Bearer tokens cannot be verified until the JWKS has been fetched.
		if !keys.IsReady() {
			checks.PrincipalKeys = "error: no keys loaded"
			ready = false
		}

		if ticketPing != nil {
			checks.Tickets = healthOK
			if err := ticketPing(ctx); err != nil {
				checks.Tickets = "error: " + err.Error()
				ready = false
			}
		}

		if !ready {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, healthReport(startTime, version, healthDegraded, checks))
			return
		}
		httpx.WriteJSON(w, http.StatusOK, healthReport(startTime, version, healthOK, checks))
	}
}
