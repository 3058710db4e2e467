package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// MinSecretSize is the shortest operator secret accepted as key material.
// HKDF output is only as strong as its input, so the floor applies to the
// raw secret, not the derived key.
const MinSecretSize = 32

var (
	ErrCiphertextTooShort = errors.New("cryptox: ciphertext too short")
	ErrSecretTooShort     = errors.New("cryptox: secret too short")
)

// Sealer encrypts small blobs (HLS content keys at rest) with AES-256-GCM.
// Output format is [12-byte nonce][ciphertext][16-byte tag].
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives an AES-256 key from secret and returns a Sealer using it.
func NewSealer(secret []byte) (*Sealer, error) {
	if err := CheckSecret(secret); err != nil {
		return nil, err
	}
	key, err := DeriveKey(secret, PurposeKeyMaterial, 32)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Sealer{aead: gcm}, nil
}

// CheckSecret rejects empty secrets and secrets shorter than MinSecretSize.
func CheckSecret(secret []byte) error {
	if len(secret) == 0 {
		return ErrEmptySecret
	}
	if len(secret) < MinSecretSize {
		return fmt.Errorf("%w: need at least %d bytes, got %d", ErrSecretTooShort, MinSecretSize, len(secret))
	}
	return nil
}

// Seal encrypts plaintext with a fresh random nonce.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts data produced by Seal.
func (s *Sealer) Open(data []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(data) < n+s.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}

	plaintext, err := s.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
