package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/studioportal/internal/domain"
	"github.com/yourorg/studioportal/internal/security/audit"
	"github.com/yourorg/studioportal/internal/security/auth"
	"github.com/yourorg/studioportal/internal/security/middleware"
	"github.com/yourorg/studioportal/internal/service"
)

// LoginRequest carries credentials plus the principal kind the caller
// claims to be. The two principal tables are checked independently; the
// role is never inferred.
type LoginRequest struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse contains the bearer token and the profile the frontend
// renders right after login.
type LoginResponse struct {
	Token       string       `json:"token"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	Role        string       `json:"role"`
	Username    string       `json:"username"`
	DisplayName string       `json:"displayName,omitempty"`
	Studio      *StudioBrand `json:"studio,omitempty"`
}

// StudioBrand is the branding block shown on a client's portal page.
type StudioBrand struct {
	DisplayName string `json:"displayName"`
	LogoURL     string `json:"logoUrl,omitempty"`
}

// LoginHandler authenticates studios and clients.
type LoginHandler struct {
	authService  *service.AuthService
	tokenManager *auth.TokenManager
	audit        *audit.Logger
	sessionTTL   time.Duration
	logger       *slog.Logger
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(authService *service.AuthService, tm *auth.TokenManager, auditLog *audit.Logger, sessionTTL time.Duration, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		authService:  authService,
		tokenManager: tm,
		audit:        auditLog,
		sessionTTL:   sessionTTL,
		logger:       logger,
	}
}

// ServeHTTP handles POST /api/login requests
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode login request", slog.String("error", err.Error()))
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		http.Error(w, `{"error":"username and password required"}`, http.StatusBadRequest)
		return
	}

	switch req.Role {
	case string(domain.RoleStudio):
		h.loginStudio(w, r, req)
	case string(domain.RoleClient):
		h.loginClient(w, r, req)
	default:
		http.Error(w, `{"error":"role must be studio or client"}`, http.StatusBadRequest)
	}
}

func (h *LoginHandler) loginStudio(w http.ResponseWriter, r *http.Request, req LoginRequest) {
	sess, err := h.authService.LoginStudio(r.Context(), req.Username, req.Password)
	if err != nil {
		var expired *domain.TrialExpiredError
		if errors.As(err, &expired) {
			h.audit.LogLogin(r.Context(), "studio", req.Username, "trial_expired", fmt.Sprintf("%d days overdue", expired.DaysOverdue))
			// Credentials were valid; the caller deserves to know why
			// they are locked out.
			writeJSON(w, http.StatusForbidden, map[string]any{
				"error":       "trial expired",
				"daysOverdue": expired.DaysOverdue,
			})
			return
		}
		h.audit.LogLogin(r.Context(), "studio", req.Username, "invalid", "")
		// Generic error to prevent user enumeration
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
		return
	}
	h.audit.LogLogin(r.Context(), "studio", sess.Username(), "success", "")

	token, err := h.tokenManager.GenerateToken(sess.ID, string(sess.Role), sess.Username(), h.sessionTTL)
	if err != nil {
		h.logger.Error("failed to generate token", slog.String("error", err.Error()))
		http.Error(w, `{"error":"token generation failed"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:       token,
		ExpiresAt:   time.Now().Add(h.sessionTTL),
		Role:        string(sess.Role),
		Username:    sess.Username(),
		DisplayName: sess.Studio.DisplayName,
	})
}

func (h *LoginHandler) loginClient(w http.ResponseWriter, r *http.Request, req LoginRequest) {
	sess, err := h.authService.LoginClient(r.Context(), req.Username, req.Password)
	if err != nil {
		h.audit.LogLogin(r.Context(), "client", req.Username, "invalid", "")
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
		return
	}
	h.audit.LogLogin(r.Context(), "client", sess.Username(), "success", "")

	token, err := h.tokenManager.GenerateToken(sess.ID, string(sess.Role), sess.Username(), h.sessionTTL)
	if err != nil {
		h.logger.Error("failed to generate token", slog.String("error", err.Error()))
		http.Error(w, `{"error":"token generation failed"}`, http.StatusInternalServerError)
		return
	}

	resp := LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.sessionTTL),
		Role:      string(sess.Role),
		Username:  sess.Username(),
	}
	if sess.LinkedStudio != nil {
		resp.Studio = &StudioBrand{
			DisplayName: sess.LinkedStudio.DisplayName,
			LogoURL:     sess.LinkedStudio.LogoURL,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// LogoutHandler removes the caller's session.
type LogoutHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewLogoutHandler creates a new logout handler
func NewLogoutHandler(authService *service.AuthService, logger *slog.Logger) *LogoutHandler {
	return &LogoutHandler{authService: authService, logger: logger}
}

// ServeHTTP handles POST /api/logout requests
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, `{"error":"not logged in"}`, http.StatusUnauthorized)
		return
	}
	h.authService.Logout(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}
