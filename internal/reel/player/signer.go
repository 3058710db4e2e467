// Package player signs short-lived embed links for the third-party video
// host.
package player

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/reel/internal/reel/domain"
)

const (
	DefaultBaseURL = "https://iframe.mediadelivery.net/play"
	DefaultTTL     = 3 * time.Second
)

// Signer decorates player URLs with the host's token authentication
// parameters. The zero TTL and BaseURL fall back to the defaults.
type Signer struct {
	SecurityKey string
	BaseURL     string
	TTL         time.Duration
	Now         func() time.Time
}

// Sign returns <BaseURL>/<library>/<video>?expires=<unix>&token=<hash>.
func (s Signer) Sign(ref domain.VideoRef) string {
	base := s.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	expires := now().Add(ttl).Unix()

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("token", Token(s.SecurityKey, ref.VideoID, expires))

	return strings.TrimSuffix(base, "/") + "/" +
		url.PathEscape(ref.LibraryID) + "/" + url.PathEscape(ref.VideoID) + "?" + q.Encode()
}

// Token is hex(sha256(key + videoID + expires)), the hash the host
// recomputes on its side.
func Token(securityKey, videoID string, expires int64) string {
	sum := sha256.Sum256([]byte(securityKey + videoID + strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(sum[:])
}
