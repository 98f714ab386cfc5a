package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/studioportal/internal/domain"
)

// TableReader is the read side of the store the worker keeps warm.
type TableReader interface {
	Read(ctx context.Context, table string) []domain.Row
}

// RefreshWorker periodically re-reads the portal tables so interactive
// requests hit a warm cache instead of paying the sheet round trip. A
// refresh that finds the sheet unreachable is harmless: reads degrade to
// empty and the next tick tries again.
type RefreshWorker struct {
	store    TableReader
	tables   []string
	logger   *slog.Logger
	interval time.Duration
}

// NewRefreshWorker creates a new refresh worker
func NewRefreshWorker(store TableReader, tables []string, logger *slog.Logger, interval time.Duration) *RefreshWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &RefreshWorker{
		store:    store,
		tables:   tables,
		logger:   logger,
		interval: interval,
	}
}

// Start runs the refresh loop until the context is cancelled.
func (w *RefreshWorker) Start(ctx context.Context) {
	w.logger.Info("refresh worker started",
		slog.Duration("interval", w.interval),
		slog.Int("tables", len(w.tables)),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refreshAll(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("refresh worker stopped")
			return
		case <-ticker.C:
			w.refreshAll(ctx)
		}
	}
}

func (w *RefreshWorker) refreshAll(ctx context.Context) {
	for _, table := range w.tables {
		rows := w.store.Read(ctx, table)
		w.logger.Debug("table refreshed",
			slog.String("table", table),
			slog.Int("rows", len(rows)),
		)
	}
}
