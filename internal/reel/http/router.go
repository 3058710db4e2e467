package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aussiebroadwan/reel/internal/reel/service"
	"github.com/aussiebroadwan/reel/internal/reel/store"
	"github.com/aussiebroadwan/reel/pkg/httpx"
	"github.com/aussiebroadwan/reel/pkg/jwtx"
	"github.com/aussiebroadwan/reel/pkg/slogx"

	_ "github.com/aussiebroadwan/reel/api/reel" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Scopes required from the principal's bearer token.
const (
	ScopeVideoPlay  = "video:play"
	ScopeVideoAdmin = "video:admin"
)

const ticketPlayPrefix = "/v1/video-tickets/play/"

// RateLimits holds the per-route-group rate limit profiles.
type RateLimits struct {
	Media  httpx.RateLimitConfig // playlist, key and segment fetches, by IP
	Mint   httpx.RateLimitConfig // access URLs and ticket creation, by user
	Redeem httpx.RateLimitConfig // ticket redemption, by IP
	Admin  httpx.RateLimitConfig
	Health httpx.RateLimitConfig
}

func DefaultRateLimits() RateLimits {
	return RateLimits{
		Media:  httpx.PublicLimit,
		Mint:   httpx.ModerateLimit,
		Redeem: httpx.StrictLimit,
		Admin:  httpx.ModerateLimit,
		Health: httpx.PublicLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store         store.Store
	Gateway       *service.Gateway
	TicketService *service.TicketService
	Limits        RateLimits

	// TicketStorePing is set when tickets live outside the database.
	TicketStorePing func(context.Context) error
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Limits:       DefaultRateLimits(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger, slogx.HTTPOptions{RedactPath: redactTicketPath}),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerHLS()
	r.registerTickets()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Reel Video Delivery API
//	@version		0.1.0
//	@description	Token-gated HLS delivery and one-time tickets for externally hosted videos.
//	@description
//	@description				Viewer endpoints take a bearer JWT from the platform identity provider. Playlist, key and segment endpoints take the hlsToken query parameter handed out by /v1/hls/access-url instead.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/reel
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerHLS() {
	h := &HLSHandler{Gateway: r.Gateway}

	// GET /v1/hls/access-url - mints a token, moderate rate limit by user
	r.Mux.Handle("GET /v1/hls/access-url",
		httpx.Chain(http.HandlerFunc(h.HandleAccessURL),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(ScopeVideoPlay),
			httpx.RateLimitByUser(r.Limits.Mint),
		),
	)

	// Token-gated media; the hlsToken is the credential, players poll often
	media := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIP(r.Limits.Media))
	}
	r.Mux.Handle("GET /v1/hls/playlist/{courseId}/{sessionId}", media(h.HandlePlaylist))
	r.Mux.Handle("GET /v1/hls/key/{courseId}/{sessionId}", media(h.HandleKey))
	r.Mux.Handle("GET /v1/hls/segment/{courseId}/{sessionId}/{segmentName}", media(h.HandleSegment))
}

func (r *Router) registerTickets() {
	h := &TicketsHandler{Tickets: r.TicketService}

	// POST /v1/video-tickets - moderate rate limit by user
	r.Mux.Handle("POST /v1/video-tickets",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(ScopeVideoPlay),
			httpx.RateLimitByUser(r.Limits.Mint),
		),
	)

	// GET /v1/video-tickets/play/{ticket} - unauthenticated, strict rate limit by IP
	r.Mux.Handle("GET "+ticketPlayPrefix+"{ticket}",
		httpx.Chain(http.HandlerFunc(h.HandlePlay),
			httpx.RateLimitByIP(r.Limits.Redeem),
		),
	)

	admin := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(ScopeVideoAdmin),
			httpx.RateLimitByUser(r.Limits.Admin),
		)
	}
	r.Mux.Handle("GET /v1/video-tickets/session/{sessionId}", admin(h.HandleList))
	r.Mux.Handle("DELETE /v1/video-tickets/session/{sessionId}", admin(h.HandleDeleteBySession))
	r.Mux.Handle("DELETE /v1/video-tickets/{id}", admin(h.HandleDelete))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Health),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys, r.TicketStorePing),
			httpx.RateLimitByIP(r.Limits.Health),
		),
	)
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}

// redactTicketPath keeps ticket credentials out of request logs.
func redactTicketPath(path string) string {
	if strings.HasPrefix(path, ticketPlayPrefix) {
		return ticketPlayPrefix + ":ticket"
	}
	return path
}
