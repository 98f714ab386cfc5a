package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/studioportal/internal/domain"
)

// SettingsView is a studio's editable profile. Enrollment date and the
// paid flag are administered directly in the backing sheet and are
// read-only here.
type SettingsView struct {
	DisplayName    string `json:"displayName"`
	LogoURL        string `json:"logoUrl"`
	StyleGuide     string `json:"styleGuide"`
	EnrollmentDate string `json:"enrollmentDate,omitempty"`
	Paid           string `json:"paid,omitempty"`
}

// UpdateSettingsRequest replaces the editable profile fields.
type UpdateSettingsRequest struct {
	DisplayName string `json:"displayName"`
	LogoURL     string `json:"logoUrl"`
	StyleGuide  string `json:"styleGuide"`
}

// SettingsHandler manages a studio's own profile.
type SettingsHandler struct {
	studios domain.StudioRepository
	logger  *slog.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(studios domain.StudioRepository, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{studios: studios, logger: logger}
}

// Get handles GET /api/settings requests
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := requireStudio(w, r)
	if sess == nil {
		return
	}

	// Re-read instead of trusting the session copy: the sheet may have
	// been hand-edited since login.
	studio, err := h.studios.FindByUsername(r.Context(), sess.Studio.Username)
	if err != nil {
		http.Error(w, `{"error":"profile not found"}`, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, SettingsView{
		DisplayName:    studio.DisplayName,
		LogoURL:        studio.LogoURL,
		StyleGuide:     studio.StyleGuide,
		EnrollmentDate: studio.EnrollmentDate,
		Paid:           studio.Paid,
	})
}

// Update handles PUT /api/settings requests
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess := requireStudio(w, r)
	if sess == nil {
		return
	}

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
		return
	}

	studio, err := h.studios.FindByUsername(r.Context(), sess.Studio.Username)
	if err != nil {
		http.Error(w, `{"error":"profile not found"}`, http.StatusNotFound)
		return
	}

	studio.DisplayName = req.DisplayName
	studio.LogoURL = req.LogoURL
	studio.StyleGuide = req.StyleGuide

	if err := h.studios.UpdateSettings(r.Context(), *studio); err != nil {
		h.logger.Error("failed to update settings",
			slog.String("studio", sess.Studio.Username),
			slog.String("error", err.Error()),
		)
		http.Error(w, `{"error":"update failed"}`, http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
