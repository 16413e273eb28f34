package service

import (
	"context"
	"sync"
	"time"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/metrics"
	"go.uber.org/zap"
)

const (
	defaultExpirerInterval = 1 * time.Hour
	defaultSessionTTL      = 24 * time.Hour
)

// SessionExpirer deletes sessions that have not been touched for longer than
// the configured TTL.
type SessionExpirer struct {
	store  domain.SessionStore
	logger *zap.Logger

	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewSessionExpirer(s domain.SessionStore, logger *zap.Logger) *SessionExpirer {
	return &SessionExpirer{
		store:    s,
		logger:   logger,
		ttl:      defaultSessionTTL,
		interval: defaultExpirerInterval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

func (s *SessionExpirer) SetInterval(d time.Duration) {
	s.interval = d
}

func (s *SessionExpirer) SetTTL(d time.Duration) {
	s.ttl = d
}

// Start runs the expirer on a periodic schedule in a background goroutine.
func (s *SessionExpirer) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("session expirer started",
			zap.Duration("interval", s.interval),
			zap.Duration("ttl", s.ttl))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				s.run(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("session expirer stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the expirer.
func (s *SessionExpirer) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *SessionExpirer) run(ctx context.Context) {
	cutoff := s.now().Add(-s.ttl)
	deleted, err := s.store.DeleteIdle(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to delete idle sessions", zap.Error(err))
		return
	}
	if deleted > 0 {
		metrics.SessionsExpired.Add(float64(deleted))
		s.logger.Info("deleted idle sessions",
			zap.Int64("count", deleted),
			zap.Time("idle_since", cutoff))
	}
}
