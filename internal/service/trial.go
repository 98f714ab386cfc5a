package service

import (
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/studioportal/internal/domain"
)

// TrialStatus is the outcome of a trial-gate evaluation. Fail-open paths are
// explicit branches so they stay visible and testable.
type TrialStatus int

const (
	TrialAllowed TrialStatus = iota
	TrialBlocked
	// TrialMalformed means the enrollment date did not parse. Access is
	// granted anyway: a malformed, hand-edited date must never lock out a
	// legitimate tenant.
	TrialMalformed
)

// TrialResult carries the decision and, when blocked, the days overdue.
type TrialResult struct {
	Status      TrialStatus
	DaysOverdue int
}

// Allowed reports whether the session may be established.
func (r TrialResult) Allowed() bool {
	return r.Status != TrialBlocked
}

// Enrollment dates are hand-typed; both the day/month/year form and the ISO
// form appear in the wild. First layout that parses wins.
var enrollmentLayouts = []string{"02/01/2006", "02-01-2006", "2006-01-02"}

const paidFlag = "SI"

// TrialGate decides studio access based on elapsed trial time and the paid
// flag.
type TrialGate struct {
	graceDays int
	logger    *slog.Logger
}

// NewTrialGate creates a trial gate with the given grace period in days.
func NewTrialGate(graceDays int, logger *slog.Logger) *TrialGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrialGate{graceDays: graceDays, logger: logger}
}

// Evaluate applies the gate to one studio record at the given instant.
// Paid studios are always allowed regardless of enrollment date, unparseable
// dates fail open, and a future enrollment date counts as zero elapsed days.
func (g *TrialGate) Evaluate(studio *domain.Studio, now time.Time) TrialResult {
	if strings.ToUpper(strings.TrimSpace(studio.Paid)) == paidFlag {
		return TrialResult{Status: TrialAllowed}
	}

	raw := strings.TrimSpace(studio.EnrollmentDate)
	if len(raw) < 8 {
		g.logger.Warn("enrollment date missing or too short, trial gate failing open",
			slog.String("studio", studio.Username),
			slog.String("enrollment_date", raw),
		)
		return TrialResult{Status: TrialMalformed}
	}

	var enrolled time.Time
	parsed := false
	for _, layout := range enrollmentLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			enrolled = t
			parsed = true
			break
		}
	}
	if !parsed {
		g.logger.Warn("enrollment date unparseable, trial gate failing open",
			slog.String("studio", studio.Username),
			slog.String("enrollment_date", raw),
		)
		return TrialResult{Status: TrialMalformed}
	}

	elapsed := int(now.Sub(enrolled).Hours() / 24)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > g.graceDays {
		return TrialResult{Status: TrialBlocked, DaysOverdue: elapsed - g.graceDays}
	}
	return TrialResult{Status: TrialAllowed}
}
