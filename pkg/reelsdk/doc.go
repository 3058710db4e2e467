/*
Package reelsdk is a client for the reel video delivery service.

# SDKClient vs Session

SDKClient covers the endpoints that need no principal: health checks, the
HLS resources (which carry their own hlsToken) and ticket redemption.
Session wraps a bearer token issued by the identity provider and covers
everything that acts on behalf of a viewer or an administrator.

	client := reelsdk.NewSDKClient("https://video.example.com")
	session := client.NewSession(accessToken)

	// Ask for a playlist URL (requires video:play)
	access, err := session.GetAccessURL(ctx, "course-1", "session-1")

	// Fetch the rewritten manifest; segment and key URLs inside it carry
	// the same hlsToken
	playlist, err := client.FetchPlaylist(ctx, access.PlaylistURL)

One-time tickets hand out a redirect URL that works exactly once:

	ticket, err := session.CreateTicket(ctx, reelsdk.CreateTicketRequest{
		SessionID:        "session-1",
		ProviderVideoURL: "https://iframe.mediadelivery.net/embed/558924/7147da37-...",
	})
	playerURL, err := client.RedeemTicket(ctx, ticket.RedirectURL)

# Error Handling

Non-2xx responses come back as *APIError carrying the HTTP status and the
stable error code, for example:

	var apiErr *reelsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == reelsdk.ErrorCodeAlreadyUsed {
		// the ticket was redeemed by someone else
	}
*/
package reelsdk
