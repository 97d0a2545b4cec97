// internal/app/system/workers/sessioncleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/filmhub/internal/app/system/metrics"
	"github.com/dalemusser/filmhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// StorageSweeper is the session storage as seen by the cleanup worker.
type StorageSweeper interface {
	Touch(ctx context.Context, clientID string) error
	RemoveIdle(ctx context.Context, threshold time.Duration) (int64, error)
}

// SessionEvicter is the in-memory session set as seen by the cleanup worker.
type SessionEvicter interface {
	Active(threshold time.Duration) []string
	EvictIdle(threshold time.Duration) int
}

// SessionCleanup is a background worker that drops idle client sessions,
// both their stored records and their in-memory state.
type SessionCleanup struct {
	storage       StorageSweeper
	sessions      SessionEvicter
	log           *zap.Logger
	interval      time.Duration
	idleThreshold time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// NewSessionCleanup creates a new session cleanup worker.
//
// Parameters:
//   - storage: the session storage store
//   - sessions: the usersession manager
//   - logger: zap logger for logging
//   - interval: how often to run cleanup (e.g., 10 minutes)
//   - idleThreshold: how long a client must be unseen before its session is dropped (e.g., 24 hours)
func NewSessionCleanup(storage StorageSweeper, sessions SessionEvicter, logger *zap.Logger, interval, idleThreshold time.Duration) *SessionCleanup {
	return &SessionCleanup{
		storage:       storage,
		sessions:      sessions,
		log:           logger,
		interval:      interval,
		idleThreshold: idleThreshold,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *SessionCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("session cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("idle_threshold", w.idleThreshold))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *SessionCleanup) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("session cleanup worker stopped")
}

func (w *SessionCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

// cleanup refreshes the records of clients still in use, then removes the
// rest.
func (w *SessionCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Batch())
	defer cancel()

	for _, id := range w.sessions.Active(w.idleThreshold) {
		if err := w.storage.Touch(ctx, id); err != nil {
			w.log.Warn("failed to touch session storage", zap.String("client_id", id), zap.Error(err))
		}
	}

	count, err := w.storage.RemoveIdle(ctx, w.idleThreshold)
	if err != nil {
		w.log.Error("failed to remove idle session storage", zap.Error(err))
	} else if count > 0 {
		w.log.Info("removed idle session storage", zap.Int64("count", count))
	}

	if n := w.sessions.EvictIdle(w.idleThreshold); n > 0 {
		metrics.SessionsEvicted.Add(float64(n))
		w.log.Info("evicted idle sessions", zap.Int("count", n))
	}
}
