package media_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/reel/internal/reel/media"
)

func writeFile(t *testing.T, root, name string, data []byte) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, data, 0o600))
}

func TestFSStore_Open(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "courses/c1/s1/index.m3u8", []byte("#EXTM3U\n"))

	store, err := media.NewFSStore(root)
	require.NoError(t, err)

	obj, err := store.Open(context.Background(), "courses/c1/s1/index.m3u8")
	require.NoError(t, err)
	defer obj.Body.Close()

	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.Equal(t, "#EXTM3U\n", string(body))
	require.Equal(t, int64(8), obj.Size)
	require.Equal(t, "application/vnd.apple.mpegurl", obj.ContentType)

	obj2, err := store.Open(context.Background(), "/courses/c1/s1/index.m3u8")
	require.NoError(t, err)
	obj2.Body.Close()
}

func TestFSStore_Errors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Dir(root), "outside.ts", []byte("secret"))

	store, err := media.NewFSStore(root)
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "missing.ts")
	require.ErrorIs(t, err, media.ErrObjectNotFound)

	for _, key := range []string{"", "../outside.ts", "a/../../outside.ts", `a\b.ts`, "..", "a\x00.ts"} {
		_, err = store.Open(context.Background(), key)
		require.ErrorIs(t, err, media.ErrInvalidKey, key)
	}

	require.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0o755))
	_, err = store.Open(context.Background(), "dir")
	require.ErrorIs(t, err, media.ErrObjectNotFound)

	_, err = media.NewFSStore(filepath.Join(root, "nope"))
	require.Error(t, err)
}

func TestReadAll_Limit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.m3u8", make([]byte, 100))
	store, err := media.NewFSStore(root)
	require.NoError(t, err)

	_, err = media.ReadAll(context.Background(), store, "big.m3u8", 99)
	require.ErrorIs(t, err, media.ErrTooLarge)

	b, err := media.ReadAll(context.Background(), store, "big.m3u8", 100)
	require.NoError(t, err)
	require.Len(t, b, 100)
}
