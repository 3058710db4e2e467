package cryptox

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Purpose labels for keys derived from operator supplied secrets. Each label
// yields an independent key, so one secret can feed several subsystems.
const (
	PurposeHLSLink     = "reel/hls-link/v1"
	PurposeKeyMaterial = "reel/key-material/v1"
)

var ErrEmptySecret = errors.New("cryptox: empty secret")

// DeriveKey stretches secret into a size byte key bound to purpose using
// HKDF-SHA256.
func DeriveKey(secret []byte, purpose string, size int) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	out := make([]byte, size)
	r := hkdf.New(sha256.New, secret, nil, []byte(purpose))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("cryptox: derive %s: %w", purpose, err)
	}
	return out, nil
}
