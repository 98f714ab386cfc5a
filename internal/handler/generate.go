package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/studioportal/internal/domain"
	"github.com/yourorg/studioportal/internal/security"
	"github.com/yourorg/studioportal/internal/service"
)

// GenerateRequest asks for a plan draft for one of the studio's clients.
// Attachments are passed by name only; file content never reaches the
// generation prompt.
type GenerateRequest struct {
	ClientUsername string   `json:"clientUsername"`
	ClinicalNotes  string   `json:"clinicalNotes"`
	Attachments    []string `json:"attachments"`
}

// GenerateResponse returns the draft for studio review. A failed
// generation still returns 200 with the error text inline: the frontend
// shows it in the draft box where the studio expects the plan.
type GenerateResponse struct {
	Draft string `json:"draft"`
}

// GenerateHandler produces plan drafts.
type GenerateHandler struct {
	planService *service.PlanService
	clients     domain.ClientRepository
	authz       *security.AuthorizationService
	logger      *slog.Logger
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(planService *service.PlanService, clients domain.ClientRepository, authz *security.AuthorizationService, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{planService: planService, clients: clients, authz: authz, logger: logger}
}

// ServeHTTP handles POST /api/generate requests
func (h *GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess := requireStudio(w, r)
	if sess == nil {
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
		return
	}
	if req.ClientUsername == "" {
		http.Error(w, `{"error":"clientUsername required"}`, http.StatusBadRequest)
		return
	}

	client, err := h.clients.FindByUsername(r.Context(), req.ClientUsername)
	if err != nil || h.authz.ValidateClientAccess(sess.Studio.Username, client) != nil {
		http.Error(w, `{"error":"client not found"}`, http.StatusNotFound)
		return
	}

	draft := h.planService.GenerateDraft(r.Context(), sess.Studio, client, req.ClinicalNotes, req.Attachments)
	writeJSON(w, http.StatusOK, GenerateResponse{Draft: draft})
}
