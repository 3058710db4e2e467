package reel_test

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/reel/internal/reel/domain"
	"github.com/aussiebroadwan/reel/pkg/reelsdk"
)

// TestHLSPlaybackFlow walks a player through access url, playlist, key and
// segment.
func TestHLSPlaybackFlow(t *testing.T) {
	env := setupReelServer(t)
	ctx := t.Context()
	viewer := env.session(t, viewerID, reelsdk.ScopeVideoPlay)

	access, err := viewer.GetAccessURL(ctx, courseID, sessionID)
	require.NoError(t, err)
	require.Equal(t, 600, access.ExpiresIn)
	require.True(t, strings.HasPrefix(access.PlaylistURL, env.BaseURL+"/v1/hls/playlist/course-1/session-1?hlsToken="))

	client := env.client()
	playlist, err := client.FetchPlaylist(ctx, access.PlaylistURL)
	require.NoError(t, err)
	require.NotContains(t, string(playlist), "bucket.example", "storage urls never leave the service")

	segments, keyURL := playlistURIs(t, playlist)
	require.Len(t, segments, 2)
	require.True(t, strings.HasPrefix(keyURL, env.BaseURL+"/v1/hls/key/course-1/session-1?hlsToken="))
	require.True(t, strings.HasPrefix(segments[0], env.BaseURL+"/v1/hls/segment/course-1/session-1/seg_000.ts?hlsToken="))

	key, err := client.FetchKey(ctx, keyURL)
	require.NoError(t, err)
	require.Equal(t, contentKey, key)

	body, err := client.OpenSegment(ctx, segments[0])
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	require.Equal(t, segmentPayload, string(data))

	t.Run("segment listed but missing in storage", func(t *testing.T) {
		_, err := client.OpenSegment(ctx, segments[1])
		requireAPIError(t, err, http.StatusNotFound, reelsdk.ErrorCodeNotFound)
	})
}

// TestHLSAccessURLRequiresPrincipal checks bearer and scope enforcement.
func TestHLSAccessURLRequiresPrincipal(t *testing.T) {
	env := setupReelServer(t)
	ctx := t.Context()

	t.Run("no bearer token", func(t *testing.T) {
		client := env.client()
		client.CheckScopes = false
		_, err := client.NewSession("").GetAccessURL(ctx, courseID, sessionID)
		requireAPIError(t, err, http.StatusUnauthorized, reelsdk.ErrorCodeInvalidToken)
	})

	t.Run("wrong scope", func(t *testing.T) {
		_, err := env.session(t, viewerID, "profile:read").GetAccessURL(ctx, courseID, sessionID)
		requireAPIError(t, err, http.StatusForbidden, reelsdk.ErrorCodeInsufficientScope)
	})

	t.Run("not enrolled", func(t *testing.T) {
		_, err := env.session(t, "stranger", reelsdk.ScopeVideoPlay).GetAccessURL(ctx, courseID, sessionID)
		requireAPIError(t, err, http.StatusForbidden, reelsdk.ErrorCodeForbidden)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := env.session(t, viewerID, reelsdk.ScopeVideoPlay).GetAccessURL(ctx, courseID, "nope")
		requireAPIError(t, err, http.StatusNotFound, reelsdk.ErrorCodeNotFound)
	})

	t.Run("missing parameters", func(t *testing.T) {
		_, err := env.session(t, viewerID, reelsdk.ScopeVideoPlay).GetAccessURL(ctx, "", sessionID)
		requireAPIError(t, err, http.StatusBadRequest, reelsdk.ErrorCodeInvalidRequest)
	})
}

// TestHLSTokenEnforcement checks that every media fetch re-verifies the
// hlsToken and the viewer's live state.
func TestHLSTokenEnforcement(t *testing.T) {
	env := setupReelServer(t)
	ctx := t.Context()
	client := env.client()

	access, err := env.session(t, viewerID, reelsdk.ScopeVideoPlay).GetAccessURL(ctx, courseID, sessionID)
	require.NoError(t, err)
	token := tokenOf(t, access.PlaylistURL)

	t.Run("missing token", func(t *testing.T) {
		_, err := client.FetchPlaylist(ctx, env.BaseURL+"/v1/hls/playlist/course-1/session-1")
		requireAPIError(t, err, http.StatusUnauthorized, reelsdk.ErrorCodeInvalidToken)
	})

	t.Run("tampered token", func(t *testing.T) {
		_, err := client.FetchKey(ctx, env.BaseURL+"/v1/hls/key/course-1/session-1?hlsToken="+url.QueryEscape(token+"x"))
		requireAPIError(t, err, http.StatusUnauthorized, reelsdk.ErrorCodeInvalidToken)
	})

	t.Run("token for another session", func(t *testing.T) {
		require.NoError(t, env.Store.Directory().UpsertSession(ctx, domain.Session{
			ID: "session-2", CourseID: courseID, ManifestKey: "courses/course-1/session-2/index.m3u8",
		}))
		_, err := client.FetchKey(ctx, env.BaseURL+"/v1/hls/key/course-1/session-2?hlsToken="+url.QueryEscape(token))
		requireAPIError(t, err, http.StatusForbidden, reelsdk.ErrorCodeForbidden)
	})

	t.Run("segment names are bare files", func(t *testing.T) {
		for _, name := range []string{"index.m3u8", "sub%5Cseg_000.ts", ".ts"} {
			_, err := client.OpenSegment(ctx, env.BaseURL+"/v1/hls/segment/course-1/session-1/"+name+"?hlsToken="+url.QueryEscape(token))
			requireAPIError(t, err, http.StatusNotFound, reelsdk.ErrorCodeNotFound)
		}
	})

	t.Run("device change revokes", func(t *testing.T) {
		require.NoError(t, env.Store.Directory().UpsertViewer(ctx, domain.Viewer{
			ID: viewerID, Active: true, DeviceID: "device-2",
		}))
		t.Cleanup(func() {
			_ = env.Store.Directory().UpsertViewer(context.Background(), domain.Viewer{
				ID: viewerID, Active: true, DeviceID: deviceID,
			})
		})

		_, err := client.FetchPlaylist(ctx, access.PlaylistURL)
		requireAPIError(t, err, http.StatusForbidden, reelsdk.ErrorCodeForbidden)
	})

	t.Run("suspension revokes", func(t *testing.T) {
		require.NoError(t, env.Store.Directory().UpsertViewer(ctx, domain.Viewer{
			ID: viewerID, Active: true, Suspended: true, DeviceID: deviceID,
		}))
		t.Cleanup(func() {
			_ = env.Store.Directory().UpsertViewer(context.Background(), domain.Viewer{
				ID: viewerID, Active: true, DeviceID: deviceID,
			})
		})

		_, err := client.FetchKey(ctx, env.BaseURL+"/v1/hls/key/course-1/session-1?hlsToken="+url.QueryEscape(token))
		requireAPIError(t, err, http.StatusForbidden, reelsdk.ErrorCodeForbidden)
	})
}

// TestHLSTokensStayOutOfLogs checks request logging never records the
// hlsToken query parameter.
func TestHLSTokensStayOutOfLogs(t *testing.T) {
	env := setupReelServer(t)
	ctx := t.Context()

	access, err := env.session(t, viewerID, reelsdk.ScopeVideoPlay).GetAccessURL(ctx, courseID, sessionID)
	require.NoError(t, err)
	_, err = env.client().FetchPlaylist(ctx, access.PlaylistURL)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return strings.Contains(env.Logs.String(), "/v1/hls/playlist/course-1/session-1")
	}, time.Second, 10*time.Millisecond)
	require.NotContains(t, env.Logs.String(), tokenOf(t, access.PlaylistURL))
}

func tokenOf(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	token := u.Query().Get("hlsToken")
	require.NotEmpty(t, token)
	return token
}
