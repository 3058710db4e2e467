package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/reel/pkg/httpx"
	"github.com/aussiebroadwan/reel/pkg/reelsdk"
)

const (
	healthOK       = "ok"
	healthDegraded = "degraded"
)

// LivezHandler godoc
//
//	@Summary		Liveness Probe
//	@Description	Answers 200 while the process is serving, regardless of dependencies. Use /readyz to gate traffic.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	reelsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, healthReport(startTime, version, healthOK, nil))
	}
}

// healthReport is the body shared by /livez and /readyz. Uptime is rounded
// to whole seconds.
func healthReport(startTime time.Time, version, status string, checks *reelsdk.HealthChecks) reelsdk.HealthResponse {
	return reelsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(startTime).Round(time.Second).String(),
		Version: version,
		Checks:  checks,
	}
}
