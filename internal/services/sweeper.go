package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type ExpiredSessionDeleter interface {
	DeleteExpired() (int64, error)
}

// SessionSweeper periodically drops expired rows from a persistent session
// store. The memory store expires entries on its own and needs no sweeper.
type SessionSweeper interface {
	Start(ctx context.Context)
	Stop()
}

type sessionSweeper struct {
	store    ExpiredSessionDeleter
	interval time.Duration
	log      *zap.Logger
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewSessionSweeper(store ExpiredSessionDeleter, interval time.Duration, log *zap.Logger) SessionSweeper {
	return &sessionSweeper{
		store:    store,
		interval: interval,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Start implements SessionSweeper.
func (s *sessionSweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.sweep(ctx)
	s.log.Info("🧹 Session sweeper started", zap.Duration("interval", s.interval))
}

// Stop implements SessionSweeper.
func (s *sessionSweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	s.log.Info("🛑 Session sweeper stopped")
}

func (s *sessionSweeper) sweep(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.store.DeleteExpired()
			if err != nil {
				s.log.Warn("⚠️ Failed to delete expired sessions", zap.Error(err))
				continue
			}
			if deleted > 0 {
				s.log.Info("🧹 Expired sessions removed", zap.Int64("count", deleted))
			}
		}
	}
}
