package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yourorg/studioportal/internal/domain"
	"github.com/yourorg/studioportal/internal/session"
)

type memStudioRepo struct {
	studios []domain.Studio
}

func (m *memStudioRepo) Authenticate(ctx context.Context, username, password string) (*domain.Studio, error) {
	for i := range m.studios {
		if strings.EqualFold(m.studios[i].Username, username) && m.studios[i].Password == password {
			return &m.studios[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStudioRepo) FindByUsername(ctx context.Context, username string) (*domain.Studio, error) {
	for i := range m.studios {
		if strings.EqualFold(m.studios[i].Username, username) {
			return &m.studios[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStudioRepo) UpdateSettings(ctx context.Context, studio domain.Studio) error { return nil }

type memClientRepo struct {
	clients []domain.Client
}

func (m *memClientRepo) Authenticate(ctx context.Context, username, password string) (*domain.Client, error) {
	for i := range m.clients {
		if strings.EqualFold(m.clients[i].Username, username) && m.clients[i].Password == password {
			return &m.clients[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memClientRepo) FindByUsername(ctx context.Context, username string) (*domain.Client, error) {
	for i := range m.clients {
		if strings.EqualFold(m.clients[i].Username, username) {
			return &m.clients[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memClientRepo) ListByStudio(ctx context.Context, studioUsername string) []domain.Client {
	return nil
}
func (m *memClientRepo) Create(ctx context.Context, client domain.Client) error { return nil }
func (m *memClientRepo) UpdateContact(ctx context.Context, username, phone, email string) error {
	return nil
}

func newAuthService(studios *memStudioRepo, clients *memClientRepo) (*AuthService, *session.Manager) {
	sessions := session.NewManager()
	s := NewAuthService(studios, clients, NewTrialGate(3, nil), sessions, nil)
	return s, sessions
}

func TestLoginStudioSuccess(t *testing.T) {
	studios := &memStudioRepo{studios: []domain.Studio{
		{Username: "acme", Password: "pw", Paid: "SI", DisplayName: "Acme Nutrition"},
	}}
	s, sessions := newAuthService(studios, &memClientRepo{})

	sess, err := s.LoginStudio(context.Background(), "acme", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if sess.Role != domain.RoleStudio || sess.Studio.DisplayName != "Acme Nutrition" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if _, ok := sessions.Get(sess.ID); !ok {
		t.Fatalf("session must be registered")
	}
}

func TestLoginStudioWrongPasswordIsGeneric(t *testing.T) {
	studios := &memStudioRepo{studios: []domain.Studio{{Username: "acme", Password: "pw"}}}
	s, _ := newAuthService(studios, &memClientRepo{})

	_, errWrongPass := s.LoginStudio(context.Background(), "acme", "nope")
	_, errNoUser := s.LoginStudio(context.Background(), "ghost", "pw")

	if !errors.Is(errWrongPass, domain.ErrInvalidCredentials) || !errors.Is(errNoUser, domain.ErrInvalidCredentials) {
		t.Fatalf("both failures must be the same generic error, got %v / %v", errWrongPass, errNoUser)
	}
}

func TestLoginStudioExpiredTrialBlocksSession(t *testing.T) {
	studios := &memStudioRepo{studios: []domain.Studio{
		{Username: "acme", Password: "pw", Paid: "NO", EnrollmentDate: "01/01/2020"},
	}}
	s, sessions := newAuthService(studios, &memClientRepo{})
	s.now = func() time.Time { return time.Date(2020, 1, 11, 0, 0, 0, 0, time.UTC) }

	_, err := s.LoginStudio(context.Background(), "acme", "pw")
	var expired *domain.TrialExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("expected TrialExpiredError, got %v", err)
	}
	if expired.DaysOverdue != 7 {
		t.Fatalf("expected 7 days overdue, got %d", expired.DaysOverdue)
	}
	if _, ok := sessions.Get(""); ok {
		t.Fatalf("no session may exist after a blocked login")
	}
}

func TestLoginStudioMalformedDateFailsOpen(t *testing.T) {
	studios := &memStudioRepo{studios: []domain.Studio{
		{Username: "acme", Password: "pw", Paid: "NO", EnrollmentDate: "not a date"},
	}}
	s, _ := newAuthService(studios, &memClientRepo{})

	if _, err := s.LoginStudio(context.Background(), "acme", "pw"); err != nil {
		t.Fatalf("malformed enrollment date must not block login: %v", err)
	}
}

func TestLoginClientResolvesLinkedStudio(t *testing.T) {
	studios := &memStudioRepo{studios: []domain.Studio{{Username: "acme", DisplayName: "Acme"}}}
	clients := &memClientRepo{clients: []domain.Client{
		{Username: "mario", Password: "1234", StudioUsername: "acme"},
	}}
	s, _ := newAuthService(studios, clients)

	sess, err := s.LoginClient(context.Background(), "mario", "1234")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if sess.LinkedStudio == nil || sess.LinkedStudio.DisplayName != "Acme" {
		t.Fatalf("expected resolved studio, got %+v", sess.LinkedStudio)
	}
}

func TestLoginClientOrphanStudioStillSucceeds(t *testing.T) {
	clients := &memClientRepo{clients: []domain.Client{
		{Username: "mario", Password: "1234", StudioUsername: "vanished"},
	}}
	s, _ := newAuthService(&memStudioRepo{}, clients)

	sess, err := s.LoginClient(context.Background(), "mario", "1234")
	if err != nil {
		t.Fatalf("orphaned studio reference must not fail login: %v", err)
	}
	if sess.LinkedStudio != nil {
		t.Fatalf("expected nil linked studio")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	studios := &memStudioRepo{studios: []domain.Studio{{Username: "acme", Password: "pw", Paid: "SI"}}}
	s, sessions := newAuthService(studios, &memClientRepo{})

	sess, err := s.LoginStudio(context.Background(), "acme", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	s.Logout(sess.ID)
	if _, ok := sessions.Get(sess.ID); ok {
		t.Fatalf("expected session removed on logout")
	}
}
