package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/studioportal/internal/domain"
	"github.com/yourorg/studioportal/internal/observability/metrics"
	"github.com/yourorg/studioportal/internal/session"
)

// AuthService authenticates both principal kinds against the shared store
// and establishes process-local sessions.
type AuthService struct {
	studios  domain.StudioRepository
	clients  domain.ClientRepository
	gate     *TrialGate
	sessions *session.Manager
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	studios domain.StudioRepository,
	clients domain.ClientRepository,
	gate *TrialGate,
	sessions *session.Manager,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		studios:  studios,
		clients:  clients,
		gate:     gate,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// LoginStudio verifies studio credentials and applies the trial gate. A
// blocked trial prevents session establishment entirely: credentials were
// valid, but no session exists afterwards. Any credential miss surfaces as
// domain.ErrInvalidCredentials without revealing whether the username
// existed.
func (s *AuthService) LoginStudio(ctx context.Context, username, password string) (*session.Session, error) {
	studio, err := s.studios.Authenticate(ctx, username, password)
	if err != nil {
		s.logger.Info("studio login rejected", slog.String("username", username))
		metrics.ObserveLogin("studio", "invalid")
		return nil, domain.ErrInvalidCredentials
	}

	res := s.gate.Evaluate(studio, s.now())
	switch res.Status {
	case TrialBlocked:
		s.logger.Info("studio login blocked by trial gate",
			slog.String("studio", studio.Username),
			slog.Int("days_overdue", res.DaysOverdue),
		)
		metrics.ObserveLogin("studio", "trial_expired")
		return nil, &domain.TrialExpiredError{DaysOverdue: res.DaysOverdue}
	case TrialMalformed:
		// Fail open, already logged by the gate.
	}

	sess := s.sessions.CreateStudio(studio)
	s.logger.Info("studio logged in", slog.String("studio", studio.Username))
	metrics.ObserveLogin("studio", "ok")
	return sess, nil
}

// LoginClient verifies client credentials and resolves the linked studio
// for branding. An orphaned studio reference does not fail the login.
func (s *AuthService) LoginClient(ctx context.Context, username, password string) (*session.Session, error) {
	client, err := s.clients.Authenticate(ctx, username, password)
	if err != nil {
		s.logger.Info("client login rejected", slog.String("username", username))
		metrics.ObserveLogin("client", "invalid")
		return nil, domain.ErrInvalidCredentials
	}

	linked, err := s.studios.FindByUsername(ctx, client.StudioUsername)
	if err != nil {
		s.logger.Warn("client has orphaned studio reference",
			slog.String("client", client.Username),
			slog.String("studio", client.StudioUsername),
		)
		linked = nil
	}

	sess := s.sessions.CreateClient(client, linked)
	s.logger.Info("client logged in", slog.String("client", client.Username))
	metrics.ObserveLogin("client", "ok")
	return sess, nil
}

// Logout removes the session. Safe to call for unknown IDs.
func (s *AuthService) Logout(sessionID string) {
	s.sessions.Delete(sessionID)
}
