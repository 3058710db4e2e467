package media_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aussiebroadwan/reel/internal/reel/media"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type closeRecorder struct {
	io.Reader
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func TestRelay_CopiesAndCloses(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789abcdef"), 10_000) // several chunks
	src := &closeRecorder{Reader: bytes.NewReader(payload)}
	rec := httptest.NewRecorder()

	n, err := media.Relay(context.Background(), rec, src)
	require.NoError(t, err)
	require.Equal(t, int64(len(payload)), n)
	require.Equal(t, payload, rec.Body.Bytes())
	require.True(t, rec.Flushed)
	require.Equal(t, 1, src.closed)
}

func TestRelay_NilBody(t *testing.T) {
	_, err := media.Relay(context.Background(), io.Discard, nil)
	require.ErrorIs(t, err, media.ErrNoBody)
}

func TestRelay_CancelReleasesUpstream(t *testing.T) {
	pr, pw := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := media.Relay(ctx, io.Discard, pr)
		done <- err
	}()

	_, err := pw.Write([]byte("first chunk"))
	require.NoError(t, err)

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not return after cancel")
	}

	// The upstream reader is closed, so the producer sees the pipe closed.
	_, err = pw.Write([]byte("more"))
	require.ErrorIs(t, err, io.ErrClosedPipe)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRelay_WriteErrorStopsCopy(t *testing.T) {
	src := &closeRecorder{Reader: strings.NewReader("data")}
	_, err := media.Relay(context.Background(), failingWriter{}, src)
	require.EqualError(t, err, "broken pipe")
	require.Equal(t, 1, src.closed)
}
