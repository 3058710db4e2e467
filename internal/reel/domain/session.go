package domain

import (
	"path"
	"strings"
)

// Session is one lesson of a course and the storage location of its
// HLS rendition.
type Session struct {
	ID          string
	CourseID    string
	ManifestKey string // object key of index.m3u8
}

// SegmentKey returns the storage key of a segment that sits next to the
// manifest: the manifest's file name is swapped for segmentName.
func (s Session) SegmentKey(segmentName string) string {
	dir := path.Dir(s.ManifestKey)
	if dir == "." {
		return segmentName
	}
	return strings.TrimSuffix(dir, "/") + "/" + segmentName
}
