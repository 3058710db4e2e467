// Package media reads HLS objects and key material from storage and
// relays them to clients.
package media

import (
	"context"
	"errors"
	"io"
)

var (
	ErrObjectNotFound = errors.New("media: object not found")
	ErrNoBody         = errors.New("media: object has no readable body")
	ErrInvalidKey     = errors.New("media: invalid object key")
	ErrTooLarge       = errors.New("media: object exceeds size limit")
)

// Object is an open object. The caller owns Body and must close it.
type Object struct {
	Body        io.ReadCloser
	Size        int64 // -1 when unknown
	ContentType string
}

// ObjectStore is a get-object-by-key capability.
type ObjectStore interface {
	Open(ctx context.Context, key string) (*Object, error)
}

// ReadAll reads a whole object of at most limit bytes. Objects larger than
// limit are an error rather than being truncated.
func ReadAll(ctx context.Context, store ObjectStore, key string, limit int64) ([]byte, error) {
	obj, err := store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	if obj.Body == nil {
		return nil, ErrNoBody
	}
	defer obj.Body.Close()

	if obj.Size > limit {
		return nil, ErrTooLarge
	}
	b, err := io.ReadAll(io.LimitReader(obj.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, ErrTooLarge
	}
	return b, nil
}
