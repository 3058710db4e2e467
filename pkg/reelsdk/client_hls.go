package reelsdk

import (
	"context"
	"io"
	"net/http"
)

// FetchPlaylist downloads the rewritten manifest behind a playlist URL
// returned by Session.GetAccessURL.
func (c *SDKClient) FetchPlaylist(ctx context.Context, playlistURL string) ([]byte, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, playlistURL, nil, nil)
	if err != nil {
		return nil, err
	}
	return readBody(resp)
}

// FetchKey downloads the AES-128 key referenced by a playlist.
func (c *SDKClient) FetchKey(ctx context.Context, keyURL string) ([]byte, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, keyURL, nil, nil)
	if err != nil {
		return nil, err
	}
	return readBody(resp)
}

// OpenSegment starts streaming a media segment. The caller must close the
// returned reader.
func (c *SDKClient) OpenSegment(ctx context.Context, segmentURL string) (io.ReadCloser, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, segmentURL, nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		return nil, parseErrorResponse(resp, body)
	}
	return resp.Body, nil
}
