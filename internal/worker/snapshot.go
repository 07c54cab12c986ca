package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/pkg/logger"
)

// Snapshotter writes the headline figures for a month. stats.Service
// implements it; an empty month means the current one.
type Snapshotter interface {
	Snapshot(ctx context.Context, month string) (*model.MonthlyStats, error)
}

type SnapshotConfig struct {
	Interval   time.Duration
	RunOnStart bool
}

// SnapshotWorker refreshes the current month's stats snapshot on a fixed
// interval. The last run before a month ends leaves that month's figures
// in place for later comparisons.
type SnapshotWorker struct {
	stats  Snapshotter
	config SnapshotConfig
	logger *logger.Logger
}

func NewSnapshotWorker(stats Snapshotter, config SnapshotConfig, log *logger.Logger) *SnapshotWorker {
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SnapshotWorker{
		stats:  stats,
		config: config,
		logger: log,
	}
}

// Start blocks until ctx is cancelled.
func (w *SnapshotWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.logger.Info("Starting snapshot worker", "interval", w.config.Interval.String())
	if w.config.RunOnStart {
		w.run(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Shutting down snapshot worker")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *SnapshotWorker) run(ctx context.Context) {
	if _, err := w.stats.Snapshot(ctx, ""); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error(err, "Failed to write stats snapshot")
	}
}
