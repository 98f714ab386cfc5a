package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yourorg/studioportal/internal/domain"
)

type memPlanRepo struct {
	records   []domain.PlanRecord
	appendErr error
}

func (m *memPlanRepo) ListFor(ctx context.Context, clientUsername string) []domain.PlanRecord {
	var out []domain.PlanRecord
	for _, r := range m.records {
		if strings.EqualFold(r.ClientUsername, clientUsername) {
			out = append(out, r)
		}
	}
	return out
}

func (m *memPlanRepo) Current(ctx context.Context, clientUsername string) (*domain.PlanRecord, bool) {
	list := m.ListFor(ctx, clientUsername)
	if len(list) == 0 {
		return nil, false
	}
	return &list[len(list)-1], true
}

func (m *memPlanRepo) Append(ctx context.Context, record domain.PlanRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, record)
	return nil
}

type scriptedGenerator struct {
	text    string
	err     error
	prompts []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

func TestGenerateDraftComposesPrompt(t *testing.T) {
	gen := &scriptedGenerator{text: "Weekly plan"}
	s := NewPlanService(&memPlanRepo{}, gen, nil)

	studio := &domain.Studio{StyleGuide: "Warm and direct"}
	client := &domain.Client{Username: "mario", Goal: "Weight loss", PhysicalData: "180cm 90kg"}

	draft := s.GenerateDraft(context.Background(), studio, client, "low iron", []string{"bloodwork.pdf"})
	if draft != "Weekly plan" {
		t.Fatalf("unexpected draft: %q", draft)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("expected one generation call, got %d", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	for _, want := range []string{"Warm and direct", "Weight loss", "180cm 90kg", "[FILE: bloodwork.pdf] low iron"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestGenerateDraftDefaultsForEmptyProfile(t *testing.T) {
	gen := &scriptedGenerator{text: "ok"}
	s := NewPlanService(&memPlanRepo{}, gen, nil)

	s.GenerateDraft(context.Background(), &domain.Studio{}, &domain.Client{Username: "mario"}, "", nil)

	prompt := gen.prompts[0]
	for _, want := range []string{"Standard", "No clinical data provided."} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing default %q:\n%s", want, prompt)
		}
	}
}

func TestGenerateDraftFailureReturnsInlineError(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("quota exceeded")}
	s := NewPlanService(&memPlanRepo{}, gen, nil)

	draft := s.GenerateDraft(context.Background(), &domain.Studio{}, &domain.Client{Username: "mario"}, "notes", nil)
	if draft != "Generation error: quota exceeded" {
		t.Fatalf("unexpected draft: %q", draft)
	}
}

func TestSavePlanStampsRecord(t *testing.T) {
	repo := &memPlanRepo{}
	s := NewPlanService(repo, &scriptedGenerator{}, nil)
	s.now = func() time.Time { return time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC) }

	record, err := s.SavePlan(context.Background(), "mario", "Eat well")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if record.AssignedAt != "09/03/2024" {
		t.Fatalf("unexpected assigned_at: %q", record.AssignedAt)
	}
	if record.InternalNote != "Generated via portal" {
		t.Fatalf("unexpected note: %q", record.InternalNote)
	}
	if len(repo.records) != 1 || repo.records[0].PlanText != "Eat well" {
		t.Fatalf("record not appended: %+v", repo.records)
	}
}

func TestSavePlanSurfacesAppendFailure(t *testing.T) {
	repo := &memPlanRepo{appendErr: domain.ErrWriteFailed}
	s := NewPlanService(repo, &scriptedGenerator{}, nil)

	if _, err := s.SavePlan(context.Background(), "mario", "x"); !errors.Is(err, domain.ErrWriteFailed) {
		t.Fatalf("expected write failure, got %v", err)
	}
}

func TestCurrentIsLastAppended(t *testing.T) {
	repo := &memPlanRepo{records: []domain.PlanRecord{
		{ClientUsername: "mario", PlanText: "first"},
		{ClientUsername: "mario", PlanText: "second"},
	}}
	s := NewPlanService(repo, &scriptedGenerator{}, nil)

	current, ok := s.Current(context.Background(), "mario")
	if !ok || current.PlanText != "second" {
		t.Fatalf("unexpected current plan: %+v ok=%v", current, ok)
	}
	if history := s.History(context.Background(), "mario"); len(history) != 2 {
		t.Fatalf("expected full history, got %d", len(history))
	}
}
