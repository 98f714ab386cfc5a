package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yourorg/studioportal/internal/domain"
	"github.com/yourorg/studioportal/internal/security/audit"
	"github.com/yourorg/studioportal/internal/security/auth"
	"github.com/yourorg/studioportal/internal/service"
	"github.com/yourorg/studioportal/internal/session"
)

type fakeStudios struct {
	studios []domain.Studio
}

func (f *fakeStudios) Authenticate(ctx context.Context, username, password string) (*domain.Studio, error) {
	for i := range f.studios {
		if strings.EqualFold(f.studios[i].Username, username) && f.studios[i].Password == password {
			return &f.studios[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStudios) FindByUsername(ctx context.Context, username string) (*domain.Studio, error) {
	for i := range f.studios {
		if strings.EqualFold(f.studios[i].Username, username) {
			return &f.studios[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStudios) UpdateSettings(ctx context.Context, studio domain.Studio) error {
	for i := range f.studios {
		if strings.EqualFold(f.studios[i].Username, studio.Username) {
			f.studios[i] = studio
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeClients struct {
	clients   []domain.Client
	createErr error
}

func (f *fakeClients) Authenticate(ctx context.Context, username, password string) (*domain.Client, error) {
	for i := range f.clients {
		if strings.EqualFold(f.clients[i].Username, username) && f.clients[i].Password == password {
			return &f.clients[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeClients) FindByUsername(ctx context.Context, username string) (*domain.Client, error) {
	for i := range f.clients {
		if strings.EqualFold(f.clients[i].Username, username) {
			return &f.clients[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeClients) ListByStudio(ctx context.Context, studioUsername string) []domain.Client {
	var out []domain.Client
	for _, c := range f.clients {
		if strings.EqualFold(c.StudioUsername, studioUsername) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeClients) Create(ctx context.Context, client domain.Client) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, c := range f.clients {
		if strings.EqualFold(c.Username, client.Username) {
			return domain.ErrDuplicateUsername
		}
	}
	f.clients = append(f.clients, client)
	return nil
}

func (f *fakeClients) UpdateContact(ctx context.Context, username, phone, email string) error {
	for i := range f.clients {
		if strings.EqualFold(f.clients[i].Username, username) {
			f.clients[i].Phone = phone
			f.clients[i].Email = email
			return nil
		}
	}
	return domain.ErrNotFound
}

func newLoginHandler(studios *fakeStudios, clients *fakeClients) (*LoginHandler, *session.Manager) {
	sessions := session.NewManager()
	authService := service.NewAuthService(studios, clients, service.NewTrialGate(3, nil), sessions, nil)
	tm := auth.NewTokenManager("test-secret", "studioportal")
	return NewLoginHandler(authService, tm, audit.NewLogger(discardLogger()), time.Hour, discardLogger()), sessions
}

func postLogin(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLoginStudioReturnsToken(t *testing.T) {
	h, sessions := newLoginHandler(&fakeStudios{studios: []domain.Studio{
		{Username: "acme", Password: "pw", Paid: "SI", DisplayName: "Acme Nutrition"},
	}}, &fakeClients{})

	rec := postLogin(t, h, `{"role":"studio","username":"ACME","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" || resp.Role != "studio" || resp.DisplayName != "Acme Nutrition" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	tm := auth.NewTokenManager("test-secret", "studioportal")
	claims, err := tm.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("token should validate: %v", err)
	}
	if _, ok := sessions.Get(claims.SessionID); !ok {
		t.Fatalf("token must reference a live session")
	}
}

func TestLoginInvalidCredentialsIsGeneric(t *testing.T) {
	h, _ := newLoginHandler(&fakeStudios{studios: []domain.Studio{
		{Username: "acme", Password: "pw", Paid: "SI"},
	}}, &fakeClients{})

	wrongPass := postLogin(t, h, `{"role":"studio","username":"acme","password":"nope"}`)
	noUser := postLogin(t, h, `{"role":"studio","username":"ghost","password":"pw"}`)

	if wrongPass.Code != http.StatusUnauthorized || noUser.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPass.Code, noUser.Code)
	}
	if wrongPass.Body.String() != noUser.Body.String() {
		t.Fatalf("error bodies must not distinguish the failure cause")
	}
}

func TestLoginExpiredTrialIsDistinct(t *testing.T) {
	h, _ := newLoginHandler(&fakeStudios{studios: []domain.Studio{
		{Username: "acme", Password: "pw", Paid: "NO", EnrollmentDate: "01/01/2020"},
	}}, &fakeClients{})

	rec := postLogin(t, h, `{"role":"studio","username":"acme","password":"pw"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Error       string `json:"error"`
		DaysOverdue int    `json:"daysOverdue"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "trial expired" || resp.DaysOverdue <= 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLoginClientCarriesStudioBrand(t *testing.T) {
	h, _ := newLoginHandler(
		&fakeStudios{studios: []domain.Studio{{Username: "acme", DisplayName: "Acme", LogoURL: "https://cdn/logo.png"}}},
		&fakeClients{clients: []domain.Client{{Username: "mario", Password: "1234", StudioUsername: "acme"}}},
	)

	rec := postLogin(t, h, `{"role":"client","username":"mario","password":"1234"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Studio == nil || resp.Studio.DisplayName != "Acme" {
		t.Fatalf("expected studio branding, got %+v", resp.Studio)
	}
}

func TestLoginUnknownRoleRejected(t *testing.T) {
	h, _ := newLoginHandler(&fakeStudios{}, &fakeClients{})

	rec := postLogin(t, h, `{"role":"admin","username":"x","password":"y"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginWritesAuditRecord(t *testing.T) {
	var audits bytes.Buffer
	sessions := session.NewManager()
	authService := service.NewAuthService(
		&fakeStudios{studios: []domain.Studio{{Username: "acme", Password: "pw", Paid: "SI"}}},
		&fakeClients{}, service.NewTrialGate(3, nil), sessions, nil,
	)
	tm := auth.NewTokenManager("test-secret", "studioportal")
	auditLog := audit.NewLogger(slog.New(slog.NewJSONHandler(&audits, nil)))
	h := NewLoginHandler(authService, tm, auditLog, time.Hour, discardLogger())

	rec := postLogin(t, h, `{"role":"studio","username":"acme","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = postLogin(t, h, `{"role":"studio","username":"acme","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	out := audits.String()
	for _, want := range []string{
		`"action":"login"`,
		`"role":"studio"`,
		`"username":"acme"`,
		`"status":"invalid"`,
		`"status":"success"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("audit output missing %s:\n%s", want, out)
		}
	}
}
