package reelsdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// RedeemTicket spends a one-time ticket and returns the signed player URL
// the service redirects to. The redirect is not followed.
func (c *SDKClient) RedeemTicket(ctx context.Context, redirectURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(redirectURL), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	hc := *c.HTTPClient
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		return "", parseErrorResponse(resp, body)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", errors.New("redirect without Location header")
	}
	return location, nil
}
