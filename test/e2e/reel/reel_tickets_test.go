package reel_test

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/aussiebroadwan/reel/pkg/reelsdk"
)

// TestVideoTicketFlow creates a ticket, redeems it once and checks the
// second redemption is refused.
func TestVideoTicketFlow(t *testing.T) {
	env := setupReelServer(t)
	ctx := t.Context()
	viewer := env.session(t, viewerID, reelsdk.ScopeVideoPlay)

	created, err := viewer.CreateTicket(ctx, reelsdk.CreateTicketRequest{
		SessionID:        sessionID,
		ProviderVideoURL: providerURL,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.TicketID)
	require.True(t, strings.HasPrefix(created.RedirectURL, env.BaseURL+"/v1/video-tickets/play/"))
	require.NotContains(t, created.RedirectURL, "lib-42", "provider ids never appear in the redirect url")
	require.NotContains(t, created.RedirectURL, "vid-abc")
	require.WithinDuration(t, time.Now().Add(24*time.Hour), created.ExpiresAt, time.Minute)

	client := env.client()
	location, err := client.RedeemTicket(ctx, created.RedirectURL)
	require.NoError(t, err)

	player, err := url.Parse(location)
	require.NoError(t, err)
	require.Equal(t, "iframe.mediadelivery.net", player.Host)
	require.Equal(t, "/play/lib-42/vid-abc", player.Path)
	require.Len(t, player.Query().Get("token"), 64)
	require.NotEmpty(t, player.Query().Get("expires"))

	_, err = client.RedeemTicket(ctx, created.RedirectURL)
	requireAPIError(t, err, http.StatusGone, reelsdk.ErrorCodeAlreadyUsed)

	t.Run("credential stays out of logs", func(t *testing.T) {
		credential := created.RedirectURL[strings.LastIndexByte(created.RedirectURL, '/')+1:]
		require.Eventually(t, func() bool {
			return strings.Count(env.Logs.String(), "/v1/video-tickets/play/:ticket") >= 2
		}, time.Second, 10*time.Millisecond)
		require.NotContains(t, env.Logs.String(), credential)
	})
}

// TestVideoTicketConcurrentRedemption fires simultaneous redemptions at one
// ticket; exactly one wins and every loser sees already_used.
func TestVideoTicketConcurrentRedemption(t *testing.T) {
	env := setupReelServer(t)
	ctx := t.Context()

	created, err := env.session(t, viewerID, reelsdk.ScopeVideoPlay).CreateTicket(ctx, reelsdk.CreateTicketRequest{
		SessionID:        sessionID,
		ProviderVideoURL: providerURL,
	})
	require.NoError(t, err)

	const attempts = 20
	var wins, used atomic.Int32
	client := env.client()

	var g errgroup.Group
	for range attempts {
		g.Go(func() error {
			_, err := client.RedeemTicket(ctx, created.RedirectURL)
			var apiErr *reelsdk.APIError
			switch {
			case err == nil:
				wins.Add(1)
			case errors.As(err, &apiErr) && apiErr.Code == reelsdk.ErrorCodeAlreadyUsed:
				used.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.EqualValues(t, 1, wins.Load())
	require.EqualValues(t, attempts-1, used.Load())
}

// TestVideoTicketErrors covers rejected creations and unknown tickets.
func TestVideoTicketErrors(t *testing.T) {
	env := setupReelServer(t)
	ctx := t.Context()
	viewer := env.session(t, viewerID, reelsdk.ScopeVideoPlay)

	t.Run("invalid provider url", func(t *testing.T) {
		_, err := viewer.CreateTicket(ctx, reelsdk.CreateTicketRequest{
			SessionID:        sessionID,
			ProviderVideoURL: "https://video.host/only-one-segment",
		})
		requireAPIError(t, err, http.StatusBadRequest, reelsdk.ErrorCodeInvalidRequest)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := viewer.CreateTicket(ctx, reelsdk.CreateTicketRequest{ProviderVideoURL: providerURL})
		requireAPIError(t, err, http.StatusBadRequest, reelsdk.ErrorCodeInvalidRequest)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		_, err := env.client().RedeemTicket(ctx, env.BaseURL+"/v1/video-tickets/play/does-not-exist")
		requireAPIError(t, err, http.StatusNotFound, reelsdk.ErrorCodeNotFound)
	})

	t.Run("creation needs a principal", func(t *testing.T) {
		client := env.client()
		client.CheckScopes = false
		_, err := client.NewSession("not-a-jwt").CreateTicket(ctx, reelsdk.CreateTicketRequest{
			SessionID:        sessionID,
			ProviderVideoURL: providerURL,
		})
		requireAPIError(t, err, http.StatusUnauthorized, reelsdk.ErrorCodeInvalidToken)
	})
}

// TestVideoTicketAdministration lists and deletes tickets with the admin
// scope.
func TestVideoTicketAdministration(t *testing.T) {
	env := setupReelServer(t)
	ctx := t.Context()
	viewer := env.session(t, viewerID, reelsdk.ScopeVideoPlay)
	admin := env.session(t, "admin-1", reelsdk.ScopeVideoAdmin)

	var ids []string
	for range 3 {
		created, err := viewer.CreateTicket(ctx, reelsdk.CreateTicketRequest{
			SessionID:        sessionID,
			ProviderVideoURL: providerURL,
		})
		require.NoError(t, err)
		ids = append(ids, created.TicketID)
	}

	t.Run("play scope cannot list", func(t *testing.T) {
		_, err := viewer.ListTickets(ctx, sessionID)
		requireAPIError(t, err, http.StatusForbidden, reelsdk.ErrorCodeInsufficientScope)
	})

	list, err := admin.ListTickets(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, tk := range list {
		require.Equal(t, viewerID, tk.ViewerID)
		require.Equal(t, "lib-42", tk.LibraryID)
		require.False(t, tk.Used)
	}

	require.NoError(t, admin.DeleteTicket(ctx, ids[0]))
	err = admin.DeleteTicket(ctx, ids[0])
	requireAPIError(t, err, http.StatusNotFound, reelsdk.ErrorCodeNotFound)

	deleted, err := admin.DeleteSessionTickets(ctx, sessionID)
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	list, err = admin.ListTickets(ctx, sessionID)
	require.NoError(t, err)
	require.Empty(t, list)
}
