package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LinkKindHLS marks tokens that unlock HLS playlist, key and segment fetches.
const LinkKindHLS = "hls"

// ErrInvalidToken covers every way a link token can fail other than expiry:
// bad encoding, bad signature, unknown kid, wrong algorithm, wrong kind or
// missing scope fields.
var ErrInvalidToken = errors.New("jwtx: invalid link token")

// LinkScope is the resource a link token is bound to.
type LinkScope struct {
	CourseID  string
	SessionID string
}

// LinkClaims is the payload of a signed media link.
type LinkClaims struct {
	jwt.RegisteredClaims

	Kind      string `json:"kind"`
	CourseID  string `json:"cid"`
	SessionID string `json:"sid"`
	DeviceID  string `json:"did"`
}

// Scope returns the course/session pair the claims are bound to.
func (c LinkClaims) Scope() LinkScope {
	return LinkScope{CourseID: c.CourseID, SessionID: c.SessionID}
}

// LinkCodec issues and verifies HS256 media link tokens. Verification is pure:
// it touches no storage and mutates nothing, so it can run on every segment.
type LinkCodec struct {
	Keys   *KeyRing
	Kind   string
	Issuer string
	Now    func() time.Time
}

// NewLinkCodec returns a codec for tokens of the given kind.
func NewLinkCodec(keys *KeyRing, kind, issuer string) *LinkCodec {
	return &LinkCodec{Keys: keys, Kind: kind, Issuer: issuer, Now: time.Now}
}

// Issue signs a token for subject scoped to scope and bound to deviceID.
func (c *LinkCodec) Issue(subject string, scope LinkScope, deviceID string, ttl time.Duration) (string, LinkClaims, error) {
	switch {
	case subject == "":
		return "", LinkClaims{}, fmt.Errorf("%w: subject is required", ErrInvalidClaim)
	case scope.CourseID == "" || scope.SessionID == "":
		return "", LinkClaims{}, fmt.Errorf("%w: scope is incomplete", ErrInvalidClaim)
	case deviceID == "":
		return "", LinkClaims{}, fmt.Errorf("%w: device is required", ErrInvalidClaim)
	case ttl <= 0:
		return "", LinkClaims{}, fmt.Errorf("%w: ttl must be positive", ErrInvalidClaim)
	}

	now := c.now()
	claims := LinkClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Kind:      c.Kind,
		CourseID:  scope.CourseID,
		SessionID: scope.SessionID,
		DeviceID:  deviceID,
	}

	key := c.Keys.Primary()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["kid"] = key.ID

	signed, err := t.SignedString(key.Secret)
	if err != nil {
		return "", LinkClaims{}, fmt.Errorf("jwtx: sign link: %w", err)
	}
	return signed, claims, nil
}

// Verify checks signature, kind and expiry. Integrity failures are reported
// as ErrInvalidToken before expiry is looked at, so a forged token never
// learns whether it would have been expired.
func (c *LinkCodec) Verify(token string) (LinkClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims LinkClaims
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		secret, ok := c.Keys.Lookup(kid)
		if !ok {
			return nil, ErrUnknownKID
		}
		return secret, nil
	})
	if err != nil {
		return LinkClaims{}, fmt.Errorf("%w: %w", ErrInvalidToken, classifyParseError(err))
	}

	switch {
	case claims.Kind != c.Kind:
		return LinkClaims{}, fmt.Errorf("%w: kind %q", ErrInvalidToken, claims.Kind)
	case c.Issuer != "" && claims.Issuer != c.Issuer:
		return LinkClaims{}, fmt.Errorf("%w: %w", ErrInvalidToken, ErrIssuer)
	case claims.Subject == "" || claims.CourseID == "" || claims.SessionID == "" || claims.DeviceID == "":
		return LinkClaims{}, fmt.Errorf("%w: %w", ErrInvalidToken, ErrInvalidClaim)
	case claims.ExpiresAt == nil:
		return LinkClaims{}, fmt.Errorf("%w: missing exp", ErrInvalidToken)
	}

	if !c.now().Before(claims.ExpiresAt.Time) {
		return LinkClaims{}, ErrExpired
	}
	return claims, nil
}

func (c *LinkCodec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
