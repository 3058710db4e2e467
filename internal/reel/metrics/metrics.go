// Package metrics exposes Prometheus metrics for video delivery. Labels
// carry outcomes only, never viewer, course or session ids.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResourcePlaylist = "playlist"
	ResourceKey      = "key"
	ResourceSegment  = "segment"
)

var (
	// AccessTokensIssued counts HLS access tokens minted.
	AccessTokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reel_hls_access_tokens_issued_total",
		Help: "Total number of HLS access tokens issued.",
	})

	// HLSRequests counts gateway requests by resource and outcome.
	HLSRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reel_hls_requests_total",
		Help: "Total number of HLS gateway requests, by resource and outcome.",
	}, []string{"resource", "outcome"})

	// BytesRelayed counts bytes streamed from object storage to clients.
	BytesRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reel_relay_bytes_total",
		Help: "Total number of bytes relayed from object storage, by resource.",
	}, []string{"resource"})

	TicketsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reel_video_tickets_created_total",
		Help: "Total number of one-time video tickets created.",
	})

	// TicketRedemptions counts redemption attempts by outcome
	// (ok, not_found, already_used, expired, error).
	TicketRedemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reel_video_ticket_redemptions_total",
		Help: "Total number of video ticket redemption attempts, by outcome.",
	}, []string{"outcome"})

	TicketsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reel_video_tickets_purged_total",
		Help: "Total number of expired video tickets removed by housekeeping.",
	})
)

func RecordHLSRequest(resource, outcome string) {
	HLSRequests.WithLabelValues(resource, outcome).Inc()
}

func RecordBytesRelayed(resource string, n int64) {
	if n > 0 {
		BytesRelayed.WithLabelValues(resource).Add(float64(n))
	}
}

func RecordRedemption(outcome string) {
	TicketRedemptions.WithLabelValues(outcome).Inc()
}
