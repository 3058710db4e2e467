package reelsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the reel video delivery service.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// CheckScopes makes Session methods verify locally that the caller
	// declared the scopes an endpoint needs before calling it. Tests turn it
	// off to exercise the server side checks.
	CheckScopes bool
}

// NewSDKClient creates a new client with scope checking enabled.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		CheckScopes: true,
	}
}

// NewSession returns a Session that authenticates with accessToken. scopes
// lists what the token was granted and drives the client side scope check.
func (c *SDKClient) NewSession(accessToken string, scopes ...string) *Session {
	granted := make(map[string]bool, len(scopes))
	for _, s := range scopes {
		granted[s] = true
	}
	return &Session{client: c, accessToken: accessToken, scopes: granted}
}
