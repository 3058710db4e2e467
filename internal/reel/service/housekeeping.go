package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/reel/internal/reel/metrics"
	"github.com/aussiebroadwan/reel/internal/reel/store"
	"github.com/aussiebroadwan/reel/pkg/slogx"
)

// HousekeepingService periodically removes video tickets that expired more
// than Retention ago, keeping the ticket table from growing without bound.
type HousekeepingService struct {
	Tickets   store.Tickets
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration
	Now       func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to 1 hour.
func NewHousekeepingService(tickets store.Tickets, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if retention < 0 {
		retention = 0
	}

	return &HousekeepingService{
		Tickets:   tickets,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		Now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "retention", s.Retention)
}

// Stop shuts the worker down and blocks until an in-progress cleanup has
// finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup deletes tickets whose expiry is older than the retention window
// and returns how many were removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	cutoff := s.Now().Add(-s.Retention)

	n, err := s.Tickets.DeleteExpiredTickets(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to delete expired video tickets", slogx.Err(err))
		return 0
	}
	metrics.TicketsPurged.Add(float64(n))

	s.Logger.Info("housekeeping cleanup completed", slog.Int64("deleted_tickets", n), slog.Time("cutoff", cutoff))
	return n
}
