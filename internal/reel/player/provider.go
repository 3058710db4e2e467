package player

import (
	"errors"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/reel/internal/reel/domain"
)

var ErrInvalidProviderURL = errors.New("player: invalid provider video url")

// ParseProviderURL extracts the library and video ids from a host URL of
// the form https://host/<kind>/<libraryId>/<videoId>, for example
// https://iframe.mediadelivery.net/embed/558924/7147da37-b2ba-41b2-b20f-b601e9a8c7ae.
func ParseProviderURL(raw string) (domain.VideoRef, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return domain.VideoRef{}, ErrInvalidProviderURL
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return domain.VideoRef{}, ErrInvalidProviderURL
	}

	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < 3 {
		return domain.VideoRef{}, ErrInvalidProviderURL
	}

	ref := domain.VideoRef{LibraryID: segments[1], VideoID: segments[2]}
	if !validID(ref.LibraryID) || !validID(ref.VideoID) {
		return domain.VideoRef{}, ErrInvalidProviderURL
	}
	return ref, nil
}

func validID(s string) bool {
	if s == "" || len(s) > 128 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
