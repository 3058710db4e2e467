package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/reel/pkg/cryptox"
	"github.com/aussiebroadwan/reel/pkg/jwtx"
	"github.com/aussiebroadwan/reel/pkg/slogx"
)

// InitLinkCodec builds the HLS access token codec.
//
// Key modes:
//   - configured: HLS_TOKEN_SECRET is stretched with HKDF into the signing
//     key. Every instance sharing the secret issues interchangeable tokens,
//     and HLS_TOKEN_PREVIOUS_SECRETS keeps retired secrets verifying during
//     a rotation.
//   - ephemeral: no secret set, a random key is generated on startup. Tokens
//     stop verifying when the process restarts.
func InitLinkCodec(cfg Config, logger *slog.Logger) (*jwtx.LinkCodec, error) {
	var (
		primary jwtx.HMACKey
		err     error
	)

	if cfg.HLSTokenSecret == "" {
		secret := make([]byte, jwtx.MinHMACKeySize)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate ephemeral link key: %w", err)
		}
		primary, err = jwtx.NewHMACKey(secret)
		if err != nil {
			return nil, err
		}
		logger.Warn("HLS_TOKEN_SECRET not set, using an ephemeral link key; access tokens will not survive a restart")
	} else {
		primary, err = deriveLinkKey(cfg.HLSTokenSecret)
		if err != nil {
			return nil, fmt.Errorf("HLS_TOKEN_SECRET: %w", err)
		}
	}

	previous := make([]jwtx.HMACKey, 0, len(cfg.HLSTokenPreviousSecrets))
	for i, s := range cfg.HLSTokenPreviousSecrets {
		k, err := deriveLinkKey(s)
		if err != nil {
			return nil, fmt.Errorf("HLS_TOKEN_PREVIOUS_SECRETS[%d]: %w", i, err)
		}
		previous = append(previous, k)
	}

	ring, err := jwtx.NewKeyRing(primary, previous...)
	if err != nil {
		return nil, err
	}

	logger.Info("link keys loaded",
		"kid", ring.Primary().ID,
		"verifying_keys", ring.Len(),
		"ttl", cfg.HLSTokenTTL,
	)

	return jwtx.NewLinkCodec(ring, jwtx.LinkKindHLS, cfg.HLSTokenIssuer), nil
}

// deriveLinkKey refuses secrets shorter than an HS256 key before deriving,
// since HKDF would otherwise pad a guessable secret out to full length.
func deriveLinkKey(secret string) (jwtx.HMACKey, error) {
	if len(secret) < jwtx.MinHMACKeySize {
		return jwtx.HMACKey{}, fmt.Errorf("%w: need at least %d bytes, got %d", cryptox.ErrSecretTooShort, jwtx.MinHMACKeySize, len(secret))
	}
	raw, err := cryptox.DeriveKey([]byte(secret), cryptox.PurposeHLSLink, jwtx.MinHMACKeySize)
	if err != nil {
		return jwtx.HMACKey{}, err
	}
	return jwtx.NewHMACKey(raw)
}

// JWKSRefresher keeps a KeySet in sync with the identity service's JWKS.
type JWKSRefresher struct {
	Keys     *jwtx.KeySet
	URL      string
	Interval time.Duration
	Client   *http.Client
	Logger   *slog.Logger
}

// InitPrincipalKeys returns the verifier for viewer bearer tokens and the
// refresher feeding its keys. The first fetch is attempted here but a failure
// only leaves the service not ready; the refresher keeps retrying.
func InitPrincipalKeys(ctx context.Context, cfg Config, logger *slog.Logger) (*jwtx.KeySet, *jwtx.PrincipalVerifier, *JWKSRefresher, error) {
	if cfg.AuthJWKSURL == "" {
		return nil, nil, nil, errors.New("AUTH_JWKS_URL is required")
	}

	keys := jwtx.NewKeySet()
	verifier := jwtx.NewPrincipalVerifier(keys, jwtx.VerifyOptions{
		Issuer: cfg.AuthIssuer,
		Leeway: 30 * time.Second,
	})

	refresher := &JWKSRefresher{
		Keys:     keys,
		URL:      cfg.AuthJWKSURL,
		Interval: cfg.AuthJWKSRefresh,
		Client:   &http.Client{Timeout: 10 * time.Second},
		Logger:   logger,
	}
	if err := refresher.refresh(ctx); err != nil {
		logger.Warn("initial JWKS fetch failed, will retry", "url", cfg.AuthJWKSURL, slogx.Err(err))
	}

	return keys, verifier, refresher, nil
}

// Run refreshes until ctx is cancelled. It retries faster while no keys
// have been loaded yet.
func (r *JWKSRefresher) Run(ctx context.Context) error {
	interval := r.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	for {
		wait := interval
		if !r.Keys.IsReady() {
			wait = min(interval, 5*time.Second)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}

		if err := r.refresh(ctx); err != nil && ctx.Err() == nil {
			r.Logger.Warn("JWKS refresh failed", "url", r.URL, slogx.Err(err))
		}
	}
}

func (r *JWKSRefresher) refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := r.Keys.Refresh(ctx, r.Client, r.URL); err != nil {
		return err
	}
	r.Logger.Debug("JWKS refreshed", "url", r.URL)
	return nil
}
