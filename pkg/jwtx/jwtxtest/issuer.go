// Package jwtxtest mints platform access tokens for tests, standing in for
// the identity service.
package jwtxtest

import (
	"crypto/ed25519"
	"crypto/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/reel/pkg/jwtx"
)

const (
	DefaultKID    = "test-ed25519"
	DefaultIssuer = "https://auth.test"
)

// Issuer signs EdDSA access tokens with a throwaway key.
type Issuer struct {
	KID    string
	Issuer string
	Keys   *jwtx.KeySet

	key ed25519.PrivateKey
}

// NewIssuer generates a key pair and publishes it in a fresh KeySet.
func NewIssuer() (*Issuer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	keys := jwtx.NewKeySet()
	if err := keys.AddJWK(jwtx.NewEd25519JWK(DefaultKID, pub)); err != nil {
		return nil, err
	}
	return &Issuer{KID: DefaultKID, Issuer: DefaultIssuer, Keys: keys, key: priv}, nil
}

// JWKS returns the public half of the issuer key.
func (i *Issuer) JWKS() jwtx.JWKS {
	return jwtx.JWKS{Keys: []jwtx.JWK{jwtx.NewEd25519JWK(i.KID, i.key.Public().(ed25519.PublicKey))}}
}

// Verifier returns a verifier trusting this issuer.
func (i *Issuer) Verifier() *jwtx.PrincipalVerifier {
	return jwtx.NewPrincipalVerifier(i.Keys, jwtx.VerifyOptions{Issuer: i.Issuer})
}

// Mint signs a token for subject carrying scopes, valid for ttl.
func (i *Issuer) Mint(subject string, ttl time.Duration, scopes ...string) (string, error) {
	now := time.Now()
	return i.Sign(jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jwtx.NewJTI(),
		},
		Scopes: scopes,
	})
}

// Sign signs arbitrary claims.
func (i *Issuer) Sign(claims jwtx.Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = i.KID
	return t.SignedString(i.key)
}
