package service

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/reel/internal/reel/domain"
	"github.com/aussiebroadwan/reel/internal/reel/media"
	"github.com/aussiebroadwan/reel/internal/reel/player"
	"github.com/aussiebroadwan/reel/internal/reel/store/drivers/sqlite"
	"github.com/aussiebroadwan/reel/pkg/jwtx"
)

const testBaseURL = "https://api.test"

const testManifest = "#EXTM3U\n" +
	"#EXT-X-VERSION:3\n" +
	"#EXT-X-TARGETDURATION:10\n" +
	`#EXT-X-KEY:METHOD=AES-128,URI="https://bucket.example/keys/c1-s1.key",IV=0x00000000000000000000000000000001` + "\n" +
	"#EXTINF:10.0,\n" +
	"seg_000.ts\n" +
	"#EXTINF:10.0,\n" +
	"seg_001.ts\n" +
	"#EXTINF:3.2,\n" +
	"seg_002.ts\n" +
	"#EXT-X-ENDLIST\n"

var testKey = bytes.Repeat([]byte{0xAB}, 16)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	root    string
	store   *sqlite.Store
	clock   *testClock
	gateway *Gateway
	tickets *TicketService
}

func writeObject(t *testing.T, root, key string, data []byte) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, data, 0o600))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	dir := st.Directory()
	require.NoError(t, dir.UpsertViewer(ctx, domain.Viewer{ID: "v1", Active: true, DeviceID: "d1"}))
	require.NoError(t, dir.Enroll(ctx, "v1", "c1"))
	require.NoError(t, dir.UpsertSession(ctx, domain.Session{ID: "s1", CourseID: "c1", ManifestKey: "courses/c1/s1/index.m3u8"}))

	root := t.TempDir()
	writeObject(t, root, "courses/c1/s1/index.m3u8", []byte(testManifest))
	writeObject(t, root, "courses/c1/s1/seg_000.ts", []byte("segment-zero"))
	writeObject(t, root, "keys/c1-s1.key", testKey)

	objects, err := media.NewFSStore(root)
	require.NoError(t, err)

	key, err := jwtx.NewHMACKey([]byte(strings.Repeat("k", 32)))
	require.NoError(t, err)
	ring, err := jwtx.NewKeyRing(key)
	require.NoError(t, err)

	clock := &testClock{t: time.Unix(1_700_000_000, 0).UTC()}
	codec := jwtx.NewLinkCodec(ring, jwtx.LinkKindHLS, "reel")
	codec.Now = clock.Now

	return &fixture{
		root:  root,
		store: st,
		clock: clock,
		gateway: &Gateway{
			Directory: dir,
			Codec:     codec,
			Objects:   objects,
			Keys:      &media.KeyStore{Store: objects, Prefix: "keys/"},
			Config:    GatewayConfig{PublicBaseURL: testBaseURL, TokenTTL: 10 * time.Minute},
		},
		tickets: &TicketService{
			Tickets: st.Tickets(),
			Signer:  player.Signer{SecurityKey: "player-key", Now: clock.Now},
			Config:  TicketConfig{PublicBaseURL: testBaseURL},
			Now:     clock.Now,
		},
	}
}

// issue returns the token embedded in a freshly issued playlist URL.
func (f *fixture) issue(t *testing.T, viewerID, courseID, sessionID string) string {
	t.Helper()
	grant, err := f.gateway.IssueAccessToken(context.Background(), viewerID, courseID, sessionID)
	require.NoError(t, err)

	u, err := url.Parse(grant.PlaylistURL)
	require.NoError(t, err)
	token := u.Query().Get(TokenParam)
	require.NotEmpty(t, token)
	return token
}
