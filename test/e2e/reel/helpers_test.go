package reel_test

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/reel/internal/reel/domain"
	httpapi "github.com/aussiebroadwan/reel/internal/reel/http"
	"github.com/aussiebroadwan/reel/internal/reel/media"
	"github.com/aussiebroadwan/reel/internal/reel/player"
	"github.com/aussiebroadwan/reel/internal/reel/service"
	"github.com/aussiebroadwan/reel/internal/reel/store/drivers/sqlite"
	"github.com/aussiebroadwan/reel/pkg/httpx"
	"github.com/aussiebroadwan/reel/pkg/jwtx"
	"github.com/aussiebroadwan/reel/pkg/jwtx/jwtxtest"
	"github.com/aussiebroadwan/reel/pkg/reelsdk"
)

/*
 * Common fixtures for reel end-to-end tests. The service runs in-process
 * behind httptest with the real router, sqlite store and filesystem media,
 * and the identity service is replaced by a jwtxtest issuer.
 */

const (
	viewerID  = "viewer-1"
	deviceID  = "device-1"
	courseID  = "course-1"
	sessionID = "session-1"

	playerKey      = "player-security-key"
	providerURL    = "https://video.host/embed/lib-42/vid-abc"
	segmentPayload = "segment-zero-bytes"
)

var contentKey = bytes.Repeat([]byte{0x5A}, 16)

const manifest = "#EXTM3U\n" +
	"#EXT-X-VERSION:3\n" +
	"#EXT-X-TARGETDURATION:10\n" +
	`#EXT-X-KEY:METHOD=AES-128,URI="https://bucket.example/keys/course-1-session-1.key",IV=0x1` + "\n" +
	"#EXTINF:10.0,\n" +
	"seg_000.ts\n" +
	"#EXTINF:10.0,\n" +
	"seg_001.ts\n" +
	"#EXT-X-ENDLIST\n"

type testEnv struct {
	BaseURL string
	Issuer  *jwtxtest.Issuer
	Store   *sqlite.Store
	Logs    *syncBuffer
}

// syncBuffer collects log output written from concurrent handlers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func generous() httpx.RateLimitConfig {
	return httpx.RateLimitConfig{RequestsPerWindow: 10_000, Window: time.Minute, Burst: 10_000}
}

// setupReelServer starts the service with one enrolled viewer and one
// session whose manifest, segment and key are on disk.
func setupReelServer(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	dir := st.Directory()
	require.NoError(t, dir.UpsertViewer(ctx, domain.Viewer{ID: viewerID, Active: true, DeviceID: deviceID}))
	require.NoError(t, dir.Enroll(ctx, viewerID, courseID))
	require.NoError(t, dir.UpsertSession(ctx, domain.Session{
		ID:          sessionID,
		CourseID:    courseID,
		ManifestKey: "courses/course-1/session-1/index.m3u8",
	}))

	root := t.TempDir()
	writeObject(t, root, "courses/course-1/session-1/index.m3u8", []byte(manifest))
	writeObject(t, root, "courses/course-1/session-1/seg_000.ts", []byte(segmentPayload))
	writeObject(t, root, "keys/course-1-session-1.key", contentKey)

	objects, err := media.NewFSStore(root)
	require.NoError(t, err)

	linkKey, err := jwtx.NewHMACKey(bytes.Repeat([]byte("L"), 32))
	require.NoError(t, err)
	ring, err := jwtx.NewKeyRing(linkKey)
	require.NoError(t, err)

	issuer, err := jwtxtest.NewIssuer()
	require.NoError(t, err)

	logs := &syncBuffer{}
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := httpapi.NewRouter(issuer.Keys, issuer.Verifier(), "test", st, logger)
	gateway := &service.Gateway{
		Directory: dir,
		Codec:     jwtx.NewLinkCodec(ring, jwtx.LinkKindHLS, "reel"),
		Objects:   objects,
		Keys:      &media.KeyStore{Store: objects, Prefix: "keys/"},
	}
	tickets := &service.TicketService{
		Tickets: st.Tickets(),
		Signer:  player.Signer{SecurityKey: playerKey},
	}
	router.Gateway = gateway
	router.TicketService = tickets
	router.Limits = httpapi.RateLimits{
		Media:  generous(),
		Mint:   generous(),
		Redeem: generous(),
		Admin:  generous(),
		Health: generous(),
	}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	gateway.Config.PublicBaseURL = srv.URL
	tickets.Config.PublicBaseURL = srv.URL

	return &testEnv{BaseURL: srv.URL, Issuer: issuer, Store: st, Logs: logs}
}

func writeObject(t *testing.T, root, key string, data []byte) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, data, 0o600))
}

// session mints a platform token for subject and wraps it in an SDK session.
func (e *testEnv) session(t *testing.T, subject string, scopes ...string) *reelsdk.Session {
	t.Helper()
	token, err := e.Issuer.Mint(subject, time.Hour, scopes...)
	require.NoError(t, err)

	client := reelsdk.NewSDKClient(e.BaseURL)
	client.CheckScopes = false
	return client.NewSession(token, scopes...)
}

func (e *testEnv) client() *reelsdk.SDKClient {
	return reelsdk.NewSDKClient(e.BaseURL)
}

// playlistURIs returns the non-directive lines and the key URI of a playlist.
func playlistURIs(t *testing.T, playlist []byte) (segments []string, keyURL string) {
	t.Helper()
	sc := bufio.NewScanner(bytes.NewReader(playlist))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "#EXT-X-KEY:"):
			start := strings.Index(line, `URI="`)
			require.NotEqual(t, -1, start, line)
			rest := line[start+len(`URI="`):]
			keyURL = rest[:strings.IndexByte(rest, '"')]
		case line != "" && !strings.HasPrefix(line, "#"):
			segments = append(segments, line)
		}
	}
	require.NoError(t, sc.Err())
	return segments, keyURL
}

// requireAPIError asserts err is an API error with the given status and code.
func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *reelsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, apiErr.Error())
	require.Equal(t, code, apiErr.Code)
}
