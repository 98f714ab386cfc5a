package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/yourorg/studioportal/internal/domain"
)

type fakeBackend struct {
	tables      map[string][]RawRow
	primaryErr  error
	exportErr   error
	appendErr   error
	primaryHits int
	exportHits  int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{tables: map[string][]RawRow{}}
}

func (f *fakeBackend) ReadRows(ctx context.Context, table string) ([]RawRow, error) {
	f.primaryHits++
	if f.primaryErr != nil {
		return nil, f.primaryErr
	}
	return f.tables[table], nil
}

func (f *fakeBackend) ReadExport(ctx context.Context, table string) ([]RawRow, error) {
	f.exportHits++
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return f.tables[table], nil
}

func (f *fakeBackend) AppendRow(ctx context.Context, table string, row map[string]string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	raw := make(RawRow, len(row))
	for k, v := range row {
		raw[k] = v
	}
	f.tables[table] = append(f.tables[table], raw)
	return nil
}

func (f *fakeBackend) OverwriteRows(ctx context.Context, table string, rows []map[string]string) error {
	out := make([]RawRow, len(rows))
	for i, row := range rows {
		raw := make(RawRow, len(row))
		for k, v := range row {
			raw[k] = v
		}
		out[i] = raw
	}
	f.tables[table] = out
	return nil
}

func testStore(backend Backend) *Store {
	s := New(backend, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.retryCfg.InitialBackoff = time.Millisecond
	return s
}

func TestReadNormalizes(t *testing.T) {
	backend := newFakeBackend()
	backend.tables[domain.TableClients] = []RawRow{
		{" Username ": " mario ", "password": float64(1234)},
	}

	rows := testStore(backend).Read(context.Background(), domain.TableClients)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["username"] != "mario" || rows[0]["password"] != "1234" {
		t.Fatalf("expected normalized row, got %v", rows[0])
	}
}

func TestReadFallsBackToExport(t *testing.T) {
	backend := newFakeBackend()
	backend.tables[domain.TablePlans] = []RawRow{{"client_username": "mario"}}
	backend.primaryErr = errors.New("api down")

	rows := testStore(backend).Read(context.Background(), domain.TablePlans)
	if len(rows) != 1 {
		t.Fatalf("expected fallback rows, got %d", len(rows))
	}
	if backend.exportHits == 0 {
		t.Fatalf("expected export path to be used")
	}
}

func TestReadBothPathsDownIsEmpty(t *testing.T) {
	backend := newFakeBackend()
	backend.tables[domain.TablePlans] = []RawRow{{"client_username": "mario"}}
	backend.primaryErr = errors.New("api down")
	backend.exportErr = errors.New("export down")

	rows := testStore(backend).Read(context.Background(), domain.TablePlans)
	if len(rows) != 0 {
		t.Fatalf("unreachable table must read as empty, got %d rows", len(rows))
	}
}

func TestAppendThenReadIncludesRowLast(t *testing.T) {
	backend := newFakeBackend()
	backend.tables[domain.TablePlans] = []RawRow{{"client_username": "anna"}}
	s := testStore(backend)
	ctx := context.Background()

	// Prime the cache, then append; the write must invalidate it so the
	// next read is not stale.
	s.Read(ctx, domain.TablePlans)
	if err := s.Append(ctx, domain.TablePlans, domain.Row{"client_username": "mario"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	rows := s.Read(ctx, domain.TablePlans)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows after append, got %d", len(rows))
	}
	if rows[len(rows)-1]["client_username"] != "mario" {
		t.Fatalf("appended row must be last, got %v", rows)
	}
}

func TestAppendFailureSurfacesWriteFailed(t *testing.T) {
	backend := newFakeBackend()
	backend.appendErr = errors.New("quota exceeded")

	err := testStore(backend).Append(context.Background(), domain.TablePlans, domain.Row{"a": "b"})
	if !errors.Is(err, domain.ErrWriteFailed) {
		t.Fatalf("expected ErrWriteFailed, got %v", err)
	}
}

func TestOverwriteInvalidatesCache(t *testing.T) {
	backend := newFakeBackend()
	backend.tables[domain.TableClients] = []RawRow{{"username": "mario"}}
	s := testStore(backend)
	ctx := context.Background()

	s.Read(ctx, domain.TableClients)
	err := s.Overwrite(ctx, domain.TableClients, []domain.Row{
		{"username": "mario"},
		{"username": "anna"},
	})
	if err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	rows := s.Read(ctx, domain.TableClients)
	if len(rows) != 2 {
		t.Fatalf("expected fresh read after overwrite, got %d rows", len(rows))
	}
}

// Repeating a failed overwrite with identical data converges to the same
// final contents as a single successful call.
func TestOverwriteRetryConverges(t *testing.T) {
	backend := newFakeBackend()
	s := testStore(backend)
	ctx := context.Background()
	want := []domain.Row{{"username": "mario"}, {"username": "anna"}}

	if err := s.Overwrite(ctx, domain.TableClients, want); err != nil {
		t.Fatalf("first overwrite failed: %v", err)
	}
	if err := s.Overwrite(ctx, domain.TableClients, want); err != nil {
		t.Fatalf("repeated overwrite failed: %v", err)
	}

	rows := s.Read(ctx, domain.TableClients)
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		if rows[i]["username"] != want[i]["username"] {
			t.Fatalf("row %d diverged: %v", i, rows[i])
		}
	}
}
