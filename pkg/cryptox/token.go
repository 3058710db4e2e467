package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// CredentialSize is the entropy of a bearer credential in bytes.
const CredentialSize = 32

// CredentialLen is the length of an encoded credential.
var CredentialLen = base64.RawURLEncoding.EncodedLen(CredentialSize)

// NewCredential returns a random 256-bit credential, base64url encoded
// without padding so it can sit in a URL path segment as is.
func NewCredential() (string, error) {
	buf := make([]byte, CredentialSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate credential: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MustNewCredential is like NewCredential but panics on error.
func MustNewCredential() string {
	c, err := NewCredential()
	if err != nil {
		panic(fmt.Sprintf("cryptox: %v", err))
	}
	return c
}

// IsCredential reports whether s has the shape NewCredential produces.
func IsCredential(s string) bool {
	if len(s) != CredentialLen {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil
}

// Fingerprint returns the base64url SHA-256 of a credential. Bearer
// credentials such as video tickets are stored by fingerprint so a leaked
// table cannot be replayed.
func Fingerprint(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
