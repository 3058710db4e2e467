package cryptox_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/reel/pkg/cryptox"
)

func TestNewCredential(t *testing.T) {
	c, err := cryptox.NewCredential()
	require.NoError(t, err)
	require.Len(t, c, 43)
	require.Equal(t, cryptox.CredentialLen, len(c))
	require.True(t, cryptox.IsCredential(c))

	// Safe as a path segment without escaping.
	require.Equal(t, c, url.PathEscape(c))
	require.NotContains(t, c, "=")
}

func TestNewCredential_Unique(t *testing.T) {
	const count = 100
	seen := make(map[string]struct{}, count)

	for range count {
		c := cryptox.MustNewCredential()
		require.NotContains(t, seen, c, "duplicate credential generated")
		seen[c] = struct{}{}
	}
}

func TestIsCredential(t *testing.T) {
	valid := cryptox.MustNewCredential()

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"generated", valid, true},
		{"empty", "", false},
		{"truncated", valid[:42], false},
		{"too long", valid + "A", false},
		{"padding", valid[:42] + "=", false},
		{"standard alphabet", valid[:42] + "+", false},
		{"path separator", valid[:42] + "/", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, cryptox.IsCredential(tt.in))
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := cryptox.MustNewCredential()
	b := cryptox.MustNewCredential()

	require.Equal(t, cryptox.Fingerprint(a), cryptox.Fingerprint(a))
	require.NotEqual(t, cryptox.Fingerprint(a), cryptox.Fingerprint(b))
	require.Len(t, cryptox.Fingerprint(a), 43)
	require.NotEqual(t, a, cryptox.Fingerprint(a))
}
