package services

import (
	"context"
	"sync"
	"time"

	"github.com/celestiaorg/faceswap/internal/jobs"
	"github.com/celestiaorg/faceswap/internal/logger"
	"github.com/celestiaorg/faceswap/internal/staging"
)

// JanitorConfig configures the output janitor
type JanitorConfig struct {
	// Retention is how long outputs and finished in-memory jobs are kept
	Retention time.Duration
	// Interval is the time between sweeps
	Interval time.Duration
	// Jobs is pruned alongside the outputs when set
	Jobs *jobs.MemoryStore
}

// LaunchOutputJanitor runs until ctx is done, periodically removing outputs
// older than the retention period
func LaunchOutputJanitor(ctx context.Context, wg *sync.WaitGroup, st *staging.Manager, cfg JanitorConfig) {
	defer wg.Done()

	if cfg.Retention <= 0 || cfg.Interval <= 0 {
		logger.Info("Output janitor disabled")
		return
	}

	logger.Infof("Output janitor started (retention %s, interval %s)", cfg.Retention, cfg.Interval)
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Output janitor received shutdown signal, stopping...")
			return
		case <-ticker.C:
			sweep(st, cfg)
		}
	}
}

func sweep(st *staging.Manager, cfg JanitorConfig) {
	removed, err := st.Sweep(cfg.Retention)
	if err != nil {
		logger.Errorf("Output janitor error: %v", err)
	}
	if removed > 0 {
		logger.Infof("Output janitor removed %d files", removed)
	}

	if cfg.Jobs != nil {
		if pruned := cfg.Jobs.Prune(time.Now().Add(-cfg.Retention)); pruned > 0 {
			logger.Debugf("Output janitor pruned %d finished jobs", pruned)
		}
	}
}
