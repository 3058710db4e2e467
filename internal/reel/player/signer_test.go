package player_test

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/reel/internal/reel/domain"
	"github.com/aussiebroadwan/reel/internal/reel/player"
)

func TestSigner_Sign(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := player.Signer{
		SecurityKey: "secret-key",
		Now:         func() time.Time { return now },
	}
	ref := domain.VideoRef{LibraryID: "558924", VideoID: "7147da37-b2ba-41b2-b20f-b601e9a8c7ae"}

	signed := s.Sign(ref)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, "iframe.mediadelivery.net", u.Host)
	require.Equal(t, "/play/558924/7147da37-b2ba-41b2-b20f-b601e9a8c7ae", u.Path)
	require.Equal(t, "1700000003", u.Query().Get("expires"))
	require.Equal(t, player.Token("secret-key", ref.VideoID, 1_700_000_003), u.Query().Get("token"))
	require.Len(t, u.Query().Get("token"), 64)
}

func TestSigner_Deterministic(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := player.Signer{SecurityKey: "k", BaseURL: "https://player.test/play/", TTL: 10 * time.Second, Now: func() time.Time { return now }}
	ref := domain.VideoRef{LibraryID: "1", VideoID: "v"}

	require.Equal(t, s.Sign(ref), s.Sign(ref))
	require.Contains(t, s.Sign(ref), "https://player.test/play/1/v?expires=1700000010&token=")

	other := s
	other.SecurityKey = "k2"
	require.NotEqual(t, s.Sign(ref), other.Sign(ref))
}

func TestToken_HashesConcatenation(t *testing.T) {
	sum := sha256.Sum256([]byte("abcvid42"))
	require.Equal(t, hex.EncodeToString(sum[:]), player.Token("abc", "vid", 42))
}

func TestParseProviderURL(t *testing.T) {
	ref, err := player.ParseProviderURL("https://iframe.mediadelivery.net/embed/558924/7147da37-b2ba-41b2-b20f-b601e9a8c7ae?autoplay=true")
	require.NoError(t, err)
	require.Equal(t, domain.VideoRef{LibraryID: "558924", VideoID: "7147da37-b2ba-41b2-b20f-b601e9a8c7ae"}, ref)

	invalid := []string{
		"",
		"not a url",
		"ftp://host/play/1/2",
		"https://host/play/1",
		"https:///play/1/2",
		"https://host/play/1/..%2Fadmin",
		"https://host/play/1/a b",
	}
	for _, raw := range invalid {
		_, err := player.ParseProviderURL(raw)
		require.ErrorIs(t, err, player.ErrInvalidProviderURL, raw)
	}
}
