package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/studioportal/internal/domain"
	"github.com/yourorg/studioportal/internal/generation"
	"github.com/yourorg/studioportal/internal/observability/metrics"
)

// assignedAtLayout is the write-time format of plan timestamps. Readers
// never parse it back: plan recency follows table order, not this value.
const assignedAtLayout = "02/01/2006"

const defaultInternalNote = "Generated via portal"

// PlanService generates plan drafts and manages the append-only history.
type PlanService struct {
	plans     domain.PlanRepository
	generator generation.Generator
	logger    *slog.Logger
	now       func() time.Time
}

// NewPlanService creates a new plan service.
func NewPlanService(plans domain.PlanRepository, generator generation.Generator, logger *slog.Logger) *PlanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanService{
		plans:     plans,
		generator: generator,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateDraft produces a plan draft for a client. Generation failures are
// returned as an inline error string in the draft body, degrading the
// session instead of aborting it.
func (s *PlanService) GenerateDraft(ctx context.Context, studio *domain.Studio, client *domain.Client, clinicalNotes string, attachments []string) string {
	var input strings.Builder
	for _, name := range attachments {
		fmt.Fprintf(&input, "[FILE: %s] ", name)
	}
	if clinicalNotes != "" {
		input.WriteString(clinicalNotes)
	}
	if input.Len() == 0 {
		input.WriteString("No clinical data provided.")
	}

	prompt := buildPlanPrompt(studio.StyleGuide, client.Goal, client.PhysicalData, input.String())

	start := time.Now()
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		metrics.ObserveGeneration("error", time.Since(start))
		s.logger.Error("plan generation failed",
			slog.String("client", client.Username),
			slog.String("error", err.Error()),
		)
		return fmt.Sprintf("Generation error: %v", err)
	}
	metrics.ObserveGeneration("ok", time.Since(start))
	return text
}

// buildPlanPrompt composes the generation prompt from the studio's style
// guide and the client's profile.
func buildPlanPrompt(styleGuide, goal, physicalData, clinicalInput string) string {
	if goal == "" {
		goal = "Standard"
	}
	if physicalData == "" {
		physicalData = "-"
	}
	return fmt.Sprintf(`Act as a professional nutritionist.

STUDIO BRAND GUIDELINES:
%q

PATIENT PROFILE:
- Physical data: %s
- GOAL: %q

CLINICAL DATA / REPORTED SYMPTOMS:
%q

TASK:
Write a detailed weekly meal plan.
1. Strictly respect the patient's goal.
2. Adapt the writing style to the studio guidelines.
3. Use a professional, empathetic tone.`, styleGuide, physicalData, goal, clinicalInput)
}

// SavePlan appends a reviewed draft to the client's history. History is
// immutable and additive only; there is no update or delete.
func (s *PlanService) SavePlan(ctx context.Context, clientUsername, planText string) (domain.PlanRecord, error) {
	record := domain.PlanRecord{
		ClientUsername: clientUsername,
		AssignedAt:     s.now().Format(assignedAtLayout),
		PlanText:       planText,
		InternalNote:   defaultInternalNote,
	}
	if err := s.plans.Append(ctx, record); err != nil {
		return domain.PlanRecord{}, err
	}
	return record, nil
}

// History returns a client's full plan history, oldest first.
func (s *PlanService) History(ctx context.Context, clientUsername string) []domain.PlanRecord {
	return s.plans.ListFor(ctx, clientUsername)
}

// Current returns a client's current plan: the last row by table order.
func (s *PlanService) Current(ctx context.Context, clientUsername string) (*domain.PlanRecord, bool) {
	return s.plans.Current(ctx, clientUsername)
}
