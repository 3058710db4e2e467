package jwtx

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// MinHMACKeySize is the shortest secret accepted for HS256 signing.
const MinHMACKeySize = 32

var ErrWeakKey = errors.New("jwtx: hmac key too short")

// HMACKey is a symmetric signing secret addressed by kid.
type HMACKey struct {
	ID     string
	Secret []byte
}

// NewHMACKey wraps secret and derives its kid from a digest of the secret, so
// every instance sharing the secret agrees on the id without coordination.
func NewHMACKey(secret []byte) (HMACKey, error) {
	if len(secret) < MinHMACKeySize {
		return HMACKey{}, fmt.Errorf("%w: %d bytes", ErrWeakKey, len(secret))
	}
	sum := sha256.Sum256(secret)
	return HMACKey{ID: hex.EncodeToString(sum[:6]), Secret: secret}, nil
}

// KeyRing holds the signing key plus retired keys that still verify. Rotating
// the secret therefore does not cut off links that are already in flight.
// A KeyRing is immutable after construction.
type KeyRing struct {
	primary HMACKey
	byID    map[string][]byte
}

// NewKeyRing builds a ring signing with primary and accepting previous.
func NewKeyRing(primary HMACKey, previous ...HMACKey) (*KeyRing, error) {
	if len(primary.Secret) < MinHMACKeySize {
		return nil, ErrWeakKey
	}
	r := &KeyRing{
		primary: primary,
		byID:    make(map[string][]byte, len(previous)+1),
	}
	r.byID[primary.ID] = primary.Secret
	for _, k := range previous {
		if len(k.Secret) < MinHMACKeySize {
			return nil, fmt.Errorf("%w: previous key %q", ErrWeakKey, k.ID)
		}
		if _, dup := r.byID[k.ID]; dup {
			continue
		}
		r.byID[k.ID] = k.Secret
	}
	return r, nil
}

// Primary returns the key new tokens are signed with.
func (r *KeyRing) Primary() HMACKey { return r.primary }

// Lookup returns the secret registered under kid.
func (r *KeyRing) Lookup(kid string) ([]byte, bool) {
	s, ok := r.byID[kid]
	return s, ok
}

// Len reports how many keys verify.
func (r *KeyRing) Len() int { return len(r.byID) }
