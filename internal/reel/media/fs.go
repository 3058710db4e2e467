package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FSStore serves objects from a directory tree. Keys are slash separated
// and always resolved below Root.
type FSStore struct {
	Root string
}

func NewFSStore(root string) (*FSStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("object store root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("object store root %q is not a directory", abs)
	}
	return &FSStore{Root: abs}, nil
}

func (s *FSStore) Open(ctx context.Context, key string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := secureJoin(s.Root, key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrObjectNotFound
	}

	return &Object{
		Body:        f,
		Size:        info.Size(),
		ContentType: contentTypeOf(key),
	}, nil
}

// secureJoin resolves key below root, rejecting anything that would
// escape it.
func secureJoin(root, key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.ContainsRune(key, 0) || strings.Contains(key, `\`) {
		return "", ErrInvalidKey
	}

	cleaned := path.Clean(key)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}

	full := filepath.Join(root, filepath.FromSlash(cleaned))
	if !strings.HasPrefix(full+string(filepath.Separator), filepath.Clean(root)+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return full, nil
}

func contentTypeOf(key string) string {
	switch path.Ext(key) {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/mp2t"
	case ".key":
		return "application/octet-stream"
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
