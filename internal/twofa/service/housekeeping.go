package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/harborauth/twofa/internal/twofa/store"
	"github.com/harborauth/twofa/pkg/lockout"
	"github.com/harborauth/twofa/pkg/replayguard"
)

// HousekeepingService periodically sweeps expired verification sessions
// (their pending backup codes cascade with them), stale replay-guard triples
// and idle lockout entries. None of these sweeps are needed for correctness,
// only for bounded storage.
type HousekeepingService struct {
	Store    store.Store
	Replay   replayguard.Guard
	Lockout  lockout.Tracker
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 5 minutes.
func NewHousekeepingService(st store.Store, replay replayguard.Guard, tracker lockout.Tracker,
	logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &HousekeepingService{
		Store:    st,
		Replay:   replay,
		Lockout:  tracker,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup performs the actual sweeping. Each sweep is independent; a failure
// in one won't stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.Store.Sessions().DeleteExpiredSessions(ctx); err != nil {
		s.Logger.Error("failed to delete expired verification sessions", "error", err)
	} else {
		s.Logger.Debug("deleted expired verification sessions")
	}

	s.Replay.Sweep(now)
	s.Lockout.Sweep(now)

	s.Logger.Debug("housekeeping cleanup completed")
}
