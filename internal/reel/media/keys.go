package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/reel/pkg/cryptox"
)

// maxKeyBytes bounds key files. AES-128 content keys are 16 bytes.
const maxKeyBytes = 4 << 10

var ErrKeyNotFound = errors.New("media: key material not found")

// KeyMaterial looks up the content key of a session.
type KeyMaterial interface {
	Lookup(ctx context.Context, courseID, sessionID string) ([]byte, error)
}

// KeyStore reads keys named <courseId>-<sessionId>.key below Prefix in
// an ObjectStore. With a Sealer, a sealed copy (.key.sealed) is preferred
// over the plain file and opened before being returned.
type KeyStore struct {
	Store  ObjectStore
	Prefix string
	Sealer *cryptox.Sealer
}

func (k *KeyStore) Lookup(ctx context.Context, courseID, sessionID string) ([]byte, error) {
	name, err := KeyName(courseID, sessionID)
	if err != nil {
		return nil, err
	}
	key := k.Prefix + name

	if k.Sealer != nil {
		sealed, err := ReadAll(ctx, k.Store, key+".sealed", maxKeyBytes)
		switch {
		case err == nil:
			plain, err := k.Sealer.Open(sealed)
			if err != nil {
				return nil, fmt.Errorf("open sealed key: %w", err)
			}
			return plain, nil
		case !errors.Is(err, ErrObjectNotFound):
			return nil, err
		}
	}

	plain, err := ReadAll(ctx, k.Store, key, maxKeyBytes)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return plain, nil
}

// KeyName is the deterministic file name of a session key.
func KeyName(courseID, sessionID string) (string, error) {
	for _, id := range []string{courseID, sessionID} {
		if id == "" || id == "." || id == ".." || strings.ContainsAny(id, "/\\\x00") {
			return "", ErrInvalidKey
		}
	}
	return courseID + "-" + sessionID + ".key", nil
}
