package archive

import (
	"context"
	"log/slog"
	"time"
)

// Config holds archive cleaner configuration
type Config struct {
	CleanInterval time.Duration
	KeepDuration  time.Duration
}

// Cleaner periodically removes old archive entries
type Cleaner struct {
	service *Service
	config  Config
	logger  *slog.Logger
}

// NewCleaner creates a new archive cleaner
func NewCleaner(service *Service, config Config, logger *slog.Logger) *Cleaner {
	return &Cleaner{
		service: service,
		config:  config,
		logger:  logger,
	}
}

// Start begins the periodic cleanup process
func (c *Cleaner) Start(ctx context.Context) error {
	c.logger.Info("starting archive cleaner",
		"clean_interval", c.config.CleanInterval,
		"keep_duration", c.config.KeepDuration,
	)

	// Perform initial cleanup
	if err := c.clean(ctx); err != nil {
		c.logger.Error("initial archive cleanup failed", "error", err)
	}

	ticker := time.NewTicker(c.config.CleanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("stopping archive cleaner")
			return ctx.Err()
		case <-ticker.C:
			if err := c.clean(ctx); err != nil {
				c.logger.Error("archive cleanup failed", "error", err)
			}
		}
	}
}

func (c *Cleaner) clean(ctx context.Context) error {
	deleted, err := c.service.Clean(ctx, c.config.KeepDuration)
	if err != nil {
		return err
	}
	if deleted > 0 {
		c.logger.Info("archive cleanup completed", "deleted", deleted)
	}
	return nil
}

// CleanOnce performs a single cleanup pass
func (c *Cleaner) CleanOnce(ctx context.Context) error {
	return c.clean(ctx)
}
