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
	"github.com/aussiebroadwan/reel/internal/reel/hls"
	"github.com/aussiebroadwan/reel/internal/reel/media"
	"github.com/aussiebroadwan/reel/internal/reel/metrics"
	"github.com/aussiebroadwan/reel/internal/reel/store"
	"github.com/aussiebroadwan/reel/pkg/jwtx"
	"github.com/aussiebroadwan/reel/pkg/slogx"
)

const (
	DefaultAccessTokenTTL   = 10 * time.Minute
	DefaultMaxManifestBytes = 1 << 20

	// TokenParam is the query parameter carrying the access token on every
	// HLS URL the gateway hands out.
	TokenParam = "hlsToken"
)

type GatewayConfig struct {
	// PublicBaseURL prefixes every URL written into responses, e.g.
	// https://api.example.com.
	PublicBaseURL    string
	TokenTTL         time.Duration
	SegmentExt       string
	MaxManifestBytes int64
}

// Gateway guards HLS playlists, keys and segments behind short-lived link
// tokens. It keeps no state between requests: every call verifies the
// token and re-checks the viewer against the directory.
type Gateway struct {
	Directory store.Directory
	Codec     *jwtx.LinkCodec
	Objects   media.ObjectStore
	Keys      media.KeyMaterial
	Config    GatewayConfig
}

// IssueAccessToken mints a token for viewerID to watch one session and
// returns the playlist URL that carries it.
func (g *Gateway) IssueAccessToken(ctx context.Context, viewerID, courseID, sessionID string) (domain.AccessGrant, error) {
	log := slogx.FromContext(ctx)

	if viewerID == "" || courseID == "" || sessionID == "" {
		return domain.AccessGrant{}, ErrInvalidRequest
	}

	viewer, err := g.checkViewer(ctx, viewerID, courseID)
	if err != nil {
		return domain.AccessGrant{}, err
	}
	if viewer.DeviceID == "" {
		log.Warn("viewer has no registered device", slog.String("viewer_id", viewerID))
		return domain.AccessGrant{}, ErrForbidden
	}

	if _, err := g.session(ctx, courseID, sessionID); err != nil {
		return domain.AccessGrant{}, err
	}

	ttl := g.tokenTTL()
	token, claims, err := g.Codec.Issue(viewerID, jwtx.LinkScope{CourseID: courseID, SessionID: sessionID}, viewer.DeviceID, ttl)
	if err != nil {
		log.Error("failed to issue access token", slogx.Err(err))
		return domain.AccessGrant{}, err
	}
	metrics.AccessTokensIssued.Inc()

	log.Info("issued hls access token",
		slog.String("viewer_id", viewerID),
		slog.String("course_id", courseID),
		slog.String("session_id", sessionID),
		slog.String("jti", claims.ID),
	)

	return domain.AccessGrant{
		PlaylistURL: g.PlaylistURL(courseID, sessionID, token),
		ExpiresIn:   ttl,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// GetPlaylist returns the session's manifest with every segment and key
// reference pointed back at the gateway under the same token.
func (g *Gateway) GetPlaylist(ctx context.Context, courseID, sessionID, token string) ([]byte, error) {
	if _, err := g.authorize(ctx, courseID, sessionID, token); err != nil {
		return nil, err
	}

	session, err := g.session(ctx, courseID, sessionID)
	if err != nil {
		return nil, err
	}

	raw, err := media.ReadAll(ctx, g.Objects, session.ManifestKey, g.maxManifestBytes())
	if err != nil {
		return nil, g.mapStorageError(ctx, "manifest", err)
	}

	out, res := hls.Rewrite(raw, hls.Targets{
		SegmentURL: func(name string) string { return g.SegmentURL(courseID, sessionID, name, token) },
		KeyURL:     g.KeyURL(courseID, sessionID, token),
		SegmentExt: g.Config.SegmentExt,
	})

	log := slogx.FromContext(ctx)
	if res.Unrouted > 0 {
		log.Warn("playlist has segment lines outside the manifest directory, left unrewritten",
			slog.String("course_id", courseID),
			slog.String("session_id", sessionID),
			slog.Int("lines", res.Unrouted),
		)
	}
	log.Debug("rewrote playlist",
		slog.String("course_id", courseID),
		slog.String("session_id", sessionID),
		slog.Int("segments", res.Segments),
		slog.Int("keys", res.Keys),
	)
	return out, nil
}

// GetEncryptionKey returns the raw AES key of a session. The key is never
// logged or cached.
func (g *Gateway) GetEncryptionKey(ctx context.Context, courseID, sessionID, token string) ([]byte, error) {
	if _, err := g.authorize(ctx, courseID, sessionID, token); err != nil {
		return nil, err
	}

	key, err := g.Keys.Lookup(ctx, courseID, sessionID)
	switch {
	case errors.Is(err, media.ErrKeyNotFound), errors.Is(err, media.ErrInvalidKey):
		return nil, ErrNotFound
	case err != nil:
		slogx.FromContext(ctx).Error("key lookup failed",
			slog.String("course_id", courseID),
			slog.String("session_id", sessionID),
			slogx.Err(err),
		)
		return nil, fmt.Errorf("%w: key material", ErrUpstream)
	}
	return key, nil
}

// GetSegment opens a segment stored next to the session's manifest. The
// caller streams and closes the returned object.
func (g *Gateway) GetSegment(ctx context.Context, courseID, sessionID, segmentName, token string) (*media.Object, error) {
	if _, err := g.authorize(ctx, courseID, sessionID, token); err != nil {
		return nil, err
	}

	if !hls.ValidSegmentName(segmentName, g.Config.SegmentExt) {
		return nil, ErrNotFound
	}

	session, err := g.session(ctx, courseID, sessionID)
	if err != nil {
		return nil, err
	}

	obj, err := g.Objects.Open(ctx, session.SegmentKey(segmentName))
	if err != nil {
		return nil, g.mapStorageError(ctx, "segment", err)
	}
	if obj.Body == nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, media.ErrNoBody)
	}
	return obj, nil
}

// authorize runs the per-request chain: token present, token valid, token
// scope equal to the requested resource, viewer still allowed and still on
// the device the token was bound to.
func (g *Gateway) authorize(ctx context.Context, courseID, sessionID, token string) (jwtx.LinkClaims, error) {
	log := slogx.FromContext(ctx)

	if token == "" {
		return jwtx.LinkClaims{}, ErrInvalidToken
	}

	claims, err := g.Codec.Verify(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return jwtx.LinkClaims{}, ErrExpired
		}
		log.Debug("rejected access token", slogx.Err(err))
		return jwtx.LinkClaims{}, ErrInvalidToken
	}

	if claims.CourseID != courseID || claims.SessionID != sessionID {
		log.Warn("access token used outside its scope",
			slog.String("viewer_id", claims.Subject),
			slog.String("course_id", courseID),
			slog.String("session_id", sessionID),
		)
		return jwtx.LinkClaims{}, ErrForbidden
	}

	viewer, err := g.checkViewer(ctx, claims.Subject, courseID)
	if err != nil {
		return jwtx.LinkClaims{}, err
	}

	if viewer.DeviceID == "" || viewer.DeviceID != claims.DeviceID {
		log.Warn("access token presented for a different device",
			slog.String("viewer_id", claims.Subject),
			slog.String("jti", claims.ID),
		)
		return jwtx.LinkClaims{}, ErrForbidden
	}
	return claims, nil
}

// checkViewer confirms the viewer exists, is active, is not suspended and
// is enrolled in the course.
func (g *Gateway) checkViewer(ctx context.Context, viewerID, courseID string) (domain.Viewer, error) {
	log := slogx.FromContext(ctx)

	viewer, err := g.Directory.GetViewer(ctx, viewerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("unknown viewer", slog.String("viewer_id", viewerID))
			return domain.Viewer{}, ErrForbidden
		}
		log.Error("failed to fetch viewer", slogx.Err(err))
		return domain.Viewer{}, err
	}

	if !viewer.Active || viewer.Suspended {
		log.Warn("viewer account is not in good standing",
			slog.String("viewer_id", viewerID),
			slog.Bool("active", viewer.Active),
			slog.Bool("suspended", viewer.Suspended),
		)
		return domain.Viewer{}, ErrForbidden
	}

	enrolled, err := g.Directory.IsEnrolled(ctx, viewerID, courseID)
	if err != nil {
		log.Error("failed to check enrollment", slogx.Err(err))
		return domain.Viewer{}, err
	}
	if !enrolled {
		log.Warn("viewer is not enrolled",
			slog.String("viewer_id", viewerID),
			slog.String("course_id", courseID),
		)
		return domain.Viewer{}, ErrForbidden
	}
	return viewer, nil
}

func (g *Gateway) session(ctx context.Context, courseID, sessionID string) (domain.Session, error) {
	s, err := g.Directory.GetSession(ctx, courseID, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, ErrNotFound
	}
	if err != nil {
		slogx.FromContext(ctx).Error("failed to fetch session", slogx.Err(err))
		return domain.Session{}, err
	}
	return s, nil
}

func (g *Gateway) mapStorageError(ctx context.Context, what string, err error) error {
	switch {
	case errors.Is(err, media.ErrObjectNotFound), errors.Is(err, media.ErrInvalidKey):
		return ErrNotFound
	case errors.Is(err, context.Canceled):
		return err
	}
	slogx.FromContext(ctx).Error("object store fetch failed", slog.String("object", what), slogx.Err(err))
	return fmt.Errorf("%w: %s: %w", ErrUpstream, what, err)
}

func (g *Gateway) tokenTTL() time.Duration {
	if g.Config.TokenTTL > 0 {
		return g.Config.TokenTTL
	}
	return DefaultAccessTokenTTL
}

func (g *Gateway) maxManifestBytes() int64 {
	if g.Config.MaxManifestBytes > 0 {
		return g.Config.MaxManifestBytes
	}
	return DefaultMaxManifestBytes
}

// PlaylistURL is where a client fetches the rewritten manifest.
func (g *Gateway) PlaylistURL(courseID, sessionID, token string) string {
	return g.hlsURL(token, "playlist", courseID, sessionID)
}

func (g *Gateway) KeyURL(courseID, sessionID, token string) string {
	return g.hlsURL(token, "key", courseID, sessionID)
}

func (g *Gateway) SegmentURL(courseID, sessionID, segmentName, token string) string {
	return g.hlsURL(token, "segment", courseID, sessionID, segmentName)
}

func (g *Gateway) hlsURL(token, resource string, parts ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(g.Config.PublicBaseURL, "/"))
	b.WriteString("/v1/hls/")
	b.WriteString(resource)
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	b.WriteString("?" + TokenParam + "=")
	b.WriteString(url.QueryEscape(token))
	return b.String()
}
