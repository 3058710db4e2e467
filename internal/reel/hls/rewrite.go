// Package hls rewrites HLS media playlists so that every child fetch goes
// back through the gateway. It does no I/O.
package hls

import (
	"bytes"
	"strings"
)

// DefaultSegmentExt is the extension of MPEG-TS media segments.
const DefaultSegmentExt = ".ts"

const keyTag = "#EXT-X-KEY:"

// Targets says where rewritten references point.
type Targets struct {
	// SegmentURL builds the gateway URL for a segment file name.
	SegmentURL func(name string) string
	// KeyURL replaces the URI of AES-128 key declarations.
	KeyURL string
	// SegmentExt selects segment lines. Empty means DefaultSegmentExt.
	SegmentExt string
}

// Result counts what Rewrite changed.
type Result struct {
	Segments int
	Keys     int
	// Unrouted counts media lines left as they were because they are not a
	// bare file name (subdirectories, absolute URLs). Segments are stored
	// next to the manifest, so such lines cannot be served by the gateway.
	Unrouted int
}

// Rewrite classifies each manifest line and returns a new manifest where:
//
//   - a segment line (non-empty, not a '#' directive, ending in the segment
//     extension) that is a bare file name is replaced by its segment URL;
//     one carrying a path or URL is copied verbatim and counted as Unrouted;
//   - an #EXT-X-KEY line with METHOD=AES-128 gets its URI attribute replaced
//     by the key URL, other attributes untouched;
//   - every other line, including its line terminator, is copied verbatim.
func Rewrite(src []byte, t Targets) ([]byte, Result) {
	ext := t.SegmentExt
	if ext == "" {
		ext = DefaultSegmentExt
	}

	var (
		out bytes.Buffer
		res Result
	)
	out.Grow(len(src) + len(src)/2)

	for len(src) > 0 {
		line, eol, rest := nextLine(src)
		src = rest

		text := string(line)
		trimmed := strings.TrimSpace(text)

		switch {
		case trimmed == "":
			out.Write(line)

		case strings.HasPrefix(trimmed, "#"):
			if rewritten, ok := rewriteKey(trimmed, t.KeyURL); ok {
				out.WriteString(rewritten)
				res.Keys++
			} else {
				out.Write(line)
			}

		case strings.HasSuffix(trimmed, ext):
			if ValidSegmentName(trimmed, ext) {
				out.WriteString(t.SegmentURL(trimmed))
				res.Segments++
			} else {
				out.Write(line)
				res.Unrouted++
			}

		default:
			out.Write(line)
		}
		out.Write(eol)
	}
	return out.Bytes(), res
}

// nextLine splits off the first line of b and its terminator ("\n", "\r\n"
// or nothing at EOF).
func nextLine(b []byte) (line, eol, rest []byte) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return b, nil, nil
	}
	line, eol, rest = b[:i], b[i:i+1], b[i+1:]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line, eol = line[:n-1], b[n-1:i+1]
	}
	return line, eol, rest
}

// rewriteKey rewrites an AES-128 key declaration. ok is false for any other
// line, which the caller then copies untouched.
func rewriteKey(line, keyURL string) (string, bool) {
	if !strings.HasPrefix(line, keyTag) {
		return "", false
	}

	attrs := ParseAttributes(line[len(keyTag):])
	if attrs.Get("METHOD") != "AES-128" {
		return "", false
	}

	attrs.Set("URI", quote(keyURL))
	return keyTag + attrs.String(), true
}

// quote renders s as an HLS quoted-string. Quoted strings cannot contain
// '"' or line breaks, so those are percent-encoded.
func quote(s string) string {
	r := strings.NewReplacer(`"`, "%22", "\r", "%0D", "\n", "%0A")
	return `"` + r.Replace(s) + `"`
}
