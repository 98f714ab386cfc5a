package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yourorg/studioportal/internal/domain"
)

// PlanRepository implements domain.PlanRepository over PLANS. The history is
// append-only: no update or delete operation exists by design.
type PlanRepository struct {
	tables domain.TableStore
	logger *slog.Logger
}

// NewPlanRepository creates a new plan repository.
func NewPlanRepository(tables domain.TableStore, logger *slog.Logger) *PlanRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanRepository{tables: tables, logger: logger}
}

// ListFor returns all plans for a client in table order, oldest first.
func (r *PlanRepository) ListFor(ctx context.Context, clientUsername string) []domain.PlanRecord {
	rows := r.tables.Read(ctx, domain.TablePlans)
	want := strings.TrimSpace(clientUsername)
	var out []domain.PlanRecord
	for _, row := range rows {
		if strings.EqualFold(row["client_username"], want) {
			out = append(out, domain.PlanRecordFromRow(row))
		}
	}
	return out
}

// Current returns the client's latest plan: the last matching row by table
// order. The assigned_at value is deliberately ignored here; a manual edit
// that reorders timestamps but not rows does not change which plan is
// current.
func (r *PlanRepository) Current(ctx context.Context, clientUsername string) (*domain.PlanRecord, bool) {
	plans := r.ListFor(ctx, clientUsername)
	if len(plans) == 0 {
		return nil, false
	}
	return &plans[len(plans)-1], true
}

// Append adds one plan to the end of the history.
func (r *PlanRepository) Append(ctx context.Context, record domain.PlanRecord) error {
	if err := r.tables.Append(ctx, domain.TablePlans, record.Row()); err != nil {
		return fmt.Errorf("append plan: %w", err)
	}
	r.logger.Info("plan appended",
		slog.String("client", record.ClientUsername),
		slog.String("assigned_at", record.AssignedAt),
	)
	return nil
}
