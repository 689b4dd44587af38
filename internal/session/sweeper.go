package session

import (
	"context"
	"log/slog"
	"time"
)

// Config holds sweeper configuration
type Config struct {
	SweepInterval time.Duration
	IdleDuration  time.Duration
}

// Sweeper periodically drops idle session entries
type Sweeper struct {
	store  *Store
	config Config
	logger *slog.Logger
}

// NewSweeper creates a new session sweeper
func NewSweeper(store *Store, config Config, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:  store,
		config: config,
		logger: logger,
	}
}

// Start runs the periodic sweep until the context is cancelled
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info("starting session sweeper",
		"sweep_interval", s.config.SweepInterval,
		"idle_duration", s.config.IdleDuration,
	)

	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping session sweeper")
			return ctx.Err()
		case <-ticker.C:
			removed := s.store.Sweep(s.config.IdleDuration)
			if removed > 0 {
				s.logger.Debug("swept idle sessions", "removed", removed)
			}
		}
	}
}
