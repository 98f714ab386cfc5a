// Package store implements the resilient access layer over the shared
// tabular backend: dual-path reads, single-path writes, normalization and
// the process-local read cache.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/studioportal/internal/domain"
	"github.com/yourorg/studioportal/internal/observability/metrics"
	"github.com/yourorg/studioportal/internal/reliability/circuitbreaker"
	"github.com/yourorg/studioportal/internal/reliability/retry"
	"github.com/yourorg/studioportal/pkg/cache"
)

// Backend is the low-level transport to the tabular service.
type Backend interface {
	ReadRows(ctx context.Context, table string) ([]RawRow, error)
	ReadExport(ctx context.Context, table string) ([]RawRow, error)
	AppendRow(ctx context.Context, table string, row map[string]string) error
	OverwriteRows(ctx context.Context, table string, rows []map[string]string) error
}

// Store implements domain.TableStore. Reads try the authenticated primary
// path (retried, behind a circuit breaker), then the public CSV export; if
// both fail the table reads as empty, so callers treat "no data" and
// "unreachable" identically. Writes use the primary path only and invalidate
// this process's cached snapshot of the table on success.
type Store struct {
	backend  Backend
	cache    *cache.Cache[[]domain.Row]
	cacheTTL time.Duration
	retryCfg *retry.Config
	breaker  *circuitbreaker.CircuitBreaker
	logger   *slog.Logger
}

// New creates a store around a backend.
func New(backend Backend, cacheTTL time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		backend:  backend,
		cache:    cache.New[[]domain.Row](),
		cacheTTL: cacheTTL,
		retryCfg: retry.DefaultConfig(),
		breaker:  circuitbreaker.New(3, 1, 30*time.Second),
		logger:   logger,
	}
	s.breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		logger.Warn("primary read path circuit state changed",
			slog.Int("from", int(from)),
			slog.Int("to", int(to)),
		)
	})
	return s
}

func cacheKey(table string) string {
	return "table:" + table
}

// Read returns the normalized rows of a table. A totally unreachable table
// is logged and counted but surfaces as an empty result.
func (s *Store) Read(ctx context.Context, table string) []domain.Row {
	if rows, ok := s.cache.Get(cacheKey(table)); ok {
		metrics.ObserveTableRead(table, "cache", "ok")
		return rows
	}

	raw, path, err := s.readRaw(ctx, table)
	if err != nil {
		s.logger.Error("table unreachable on both paths, treating as empty",
			slog.String("table", table),
			slog.String("error", err.Error()),
		)
		return nil
	}

	rows := NormalizeRows(raw)
	metrics.ObserveTableRead(table, path, "ok")
	s.cache.Set(cacheKey(table), rows, s.cacheTTL)
	return rows
}

func (s *Store) readRaw(ctx context.Context, table string) ([]RawRow, string, error) {
	var primaryErr error
	if s.breaker.AllowRequest() {
		raw, err := retry.Do(ctx, s.retryCfg, s.logger, "read "+table, func(ctx context.Context) ([]RawRow, error) {
			return s.backend.ReadRows(ctx, table)
		})
		if err == nil {
			s.breaker.RecordSuccess()
			return raw, "primary", nil
		}
		s.breaker.RecordFailure()
		primaryErr = err
		metrics.ObserveTableRead(table, "primary", "error")
		s.logger.Warn("primary read failed, using export fallback",
			slog.String("table", table),
			slog.String("error", err.Error()),
		)
	} else {
		primaryErr = fmt.Errorf("primary path circuit open")
	}

	raw, err := s.backend.ReadExport(ctx, table)
	if err != nil {
		metrics.ObserveTableRead(table, "fallback", "error")
		return nil, "", fmt.Errorf("fallback read: %w (primary: %v)", err, primaryErr)
	}
	return raw, "fallback", nil
}

// Append adds exactly one row to the end of a table. No fallback exists for
// writes; failures carry domain.ErrWriteFailed and leave no partial effect.
func (s *Store) Append(ctx context.Context, table string, row domain.Row) error {
	// Deliberately not retried: a lost response after a successful append
	// would duplicate the row on retry, and append must stay a single
	// atomic unit from the caller's perspective.
	if err := s.backend.AppendRow(ctx, table, row); err != nil {
		metrics.ObserveTableWrite(table, "append", "error")
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	metrics.ObserveTableWrite(table, "append", "ok")
	s.cache.Delete(cacheKey(table))
	return nil
}

// Overwrite replaces the entire contents of a table. Callers doing
// read-modify-write through this method get last-write-wins at whole-table
// granularity; the backend offers no isolation.
func (s *Store) Overwrite(ctx context.Context, table string, rows []domain.Row) error {
	out := make([]map[string]string, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	_, err := retry.Do(ctx, s.retryCfg, s.logger, "overwrite "+table, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.backend.OverwriteRows(ctx, table, out)
	})
	if err != nil {
		metrics.ObserveTableWrite(table, "overwrite", "error")
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	metrics.ObserveTableWrite(table, "overwrite", "ok")
	s.cache.Delete(cacheKey(table))
	return nil
}
