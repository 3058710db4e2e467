package hls

import "strings"

// maxSegmentName bounds segment names taken from request paths.
const maxSegmentName = 255

// ValidSegmentName reports whether name is a bare file name with the given
// extension. Anything that could address another object (separators, dot
// segments, control characters) is rejected.
func ValidSegmentName(name, ext string) bool {
	if ext == "" {
		ext = DefaultSegmentExt
	}
	if name == "" || len(name) > maxSegmentName || name == ext {
		return false
	}
	if !strings.HasSuffix(name, ext) || strings.HasPrefix(name, ".") {
		return false
	}
	for _, r := range name {
		if r == '/' || r == '\\' || r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}
