package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
)

// RelayBufferSize is the chunk size used when streaming objects.
const RelayBufferSize = 32 << 10

var relayBuffers = sync.Pool{
	New: func() any {
		b := make([]byte, RelayBufferSize)
		return &b
	},
}

// Relay copies src to dst one chunk at a time, flushing after every chunk
// when dst is an http.Flusher, so reads from storage only happen as fast
// as the client drains the response. src is closed when Relay returns or
// as soon as ctx is done, whichever comes first, which unblocks a pending
// read for an abandoned request.
func Relay(ctx context.Context, dst io.Writer, src io.ReadCloser) (int64, error) {
	if src == nil {
		return 0, ErrNoBody
	}

	stop := context.AfterFunc(ctx, func() { _ = src.Close() })
	defer func() {
		if stop() {
			_ = src.Close()
		}
	}()

	flusher, _ := dst.(http.Flusher)

	bp := relayBuffers.Get().(*[]byte)
	defer relayBuffers.Put(bp)
	buf := *bp

	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr != nil {
				return written, werr
			}
			if w != n {
				return written, io.ErrShortWrite
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return written, nil
			}
			if ctx.Err() != nil {
				return written, ctx.Err()
			}
			return written, rerr
		}
	}
}
