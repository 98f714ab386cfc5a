package service

import (
	"testing"
	"time"

	"github.com/yourorg/studioportal/internal/domain"
)

func gate() *TrialGate {
	return NewTrialGate(3, nil)
}

func TestUnpaidStudioBlockedAfterGrace(t *testing.T) {
	studio := &domain.Studio{Username: "acme", EnrollmentDate: "01/01/2020", Paid: "NO"}
	now := time.Date(2020, 1, 11, 0, 0, 0, 0, time.UTC) // enrollment + 10 days

	res := gate().Evaluate(studio, now)
	if res.Status != TrialBlocked {
		t.Fatalf("expected blocked, got %v", res.Status)
	}
	if res.DaysOverdue != 7 {
		t.Fatalf("expected 7 days overdue, got %d", res.DaysOverdue)
	}
}

func TestPaidStudioAlwaysAllowed(t *testing.T) {
	cases := []domain.Studio{
		{Username: "acme", EnrollmentDate: "2020-01-01", Paid: "SI"},
		{Username: "acme", EnrollmentDate: "garbage-date", Paid: "SI"},
		{Username: "acme", EnrollmentDate: "", Paid: " si "},
	}
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, studio := range cases {
		if res := gate().Evaluate(&studio, now); !res.Allowed() {
			t.Errorf("paid studio must always be allowed, got %v for %+v", res.Status, studio)
		}
	}
}

func TestWithinGraceAllowed(t *testing.T) {
	studio := &domain.Studio{Username: "acme", EnrollmentDate: "01/01/2020", Paid: "NO"}
	now := time.Date(2020, 1, 3, 12, 0, 0, 0, time.UTC)

	if res := gate().Evaluate(studio, now); res.Status != TrialAllowed {
		t.Fatalf("expected allowed within grace, got %v", res.Status)
	}
}

func TestISODateFormatAccepted(t *testing.T) {
	studio := &domain.Studio{Username: "acme", EnrollmentDate: "2020-01-01", Paid: "NO"}
	now := time.Date(2020, 1, 11, 0, 0, 0, 0, time.UTC)

	res := gate().Evaluate(studio, now)
	if res.Status != TrialBlocked || res.DaysOverdue != 7 {
		t.Fatalf("expected Blocked(7) for ISO date, got %+v", res)
	}
}

func TestDashDayMonthYearAccepted(t *testing.T) {
	studio := &domain.Studio{Username: "acme", EnrollmentDate: "01-01-2020", Paid: "NO"}
	now := time.Date(2020, 1, 11, 0, 0, 0, 0, time.UTC)

	if res := gate().Evaluate(studio, now); res.Status != TrialBlocked {
		t.Fatalf("expected blocked, got %v", res.Status)
	}
}

func TestMalformedDateFailsOpen(t *testing.T) {
	for _, raw := range []string{"", "n/a", "31/02/x999", "yesterday morning"} {
		studio := &domain.Studio{Username: "acme", EnrollmentDate: raw, Paid: "NO"}
		res := gate().Evaluate(studio, time.Now())
		if !res.Allowed() {
			t.Errorf("malformed date %q must fail open", raw)
		}
	}
}

func TestFutureEnrollmentTreatedAsZeroElapsed(t *testing.T) {
	studio := &domain.Studio{Username: "acme", EnrollmentDate: "01/01/2030", Paid: "NO"}
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	if res := gate().Evaluate(studio, now); res.Status != TrialAllowed {
		t.Fatalf("future enrollment must be allowed, got %v", res.Status)
	}
}

// Once blocked, a fixed unpaid studio stays blocked with a non-decreasing
// overdue count at every later instant.
func TestBlockedIsMonotonicOverTime(t *testing.T) {
	studio := &domain.Studio{Username: "acme", EnrollmentDate: "01/01/2020", Paid: "NO"}
	g := gate()

	start := time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC)
	prev := -1
	for day := 0; day < 30; day++ {
		res := g.Evaluate(studio, start.AddDate(0, 0, day))
		if res.Status != TrialBlocked {
			t.Fatalf("day %d: expected blocked", day)
		}
		if res.DaysOverdue < prev {
			t.Fatalf("day %d: overdue decreased from %d to %d", day, prev, res.DaysOverdue)
		}
		prev = res.DaysOverdue
	}
}
