package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/studioportal/internal/domain"
	"github.com/yourorg/studioportal/internal/security"
	"github.com/yourorg/studioportal/internal/security/audit"
	"github.com/yourorg/studioportal/internal/service"
)

// PlanView is a plan record as seen by a studio. Clients get a reduced
// view without the internal note.
type PlanView struct {
	AssignedAt   string `json:"assignedAt"`
	PlanText     string `json:"planText"`
	InternalNote string `json:"internalNote,omitempty"`
}

// SavePlanRequest appends a reviewed plan to a client's history.
type SavePlanRequest struct {
	PlanText string `json:"planText"`
}

// PlansHandler exposes the append-only plan history.
type PlansHandler struct {
	planService *service.PlanService
	clients     domain.ClientRepository
	authz       *security.AuthorizationService
	audit       *audit.Logger
	logger      *slog.Logger
}

// NewPlansHandler creates a new plans handler
func NewPlansHandler(planService *service.PlanService, clients domain.ClientRepository, authz *security.AuthorizationService, auditLog *audit.Logger, logger *slog.Logger) *PlansHandler {
	return &PlansHandler{planService: planService, clients: clients, authz: authz, audit: auditLog, logger: logger}
}

// History handles GET /api/clients/{username}/plans requests
func (h *PlansHandler) History(w http.ResponseWriter, r *http.Request) {
	sess := requireStudio(w, r)
	if sess == nil {
		return
	}

	username := r.PathValue("username")
	if !h.owns(w, r, sess.Studio.Username, username) {
		return
	}

	records := h.planService.History(r.Context(), username)
	views := make([]PlanView, 0, len(records))
	for _, rec := range records {
		views = append(views, PlanView{
			AssignedAt:   rec.AssignedAt,
			PlanText:     rec.PlanText,
			InternalNote: rec.InternalNote,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// Save handles POST /api/clients/{username}/plans requests
func (h *PlansHandler) Save(w http.ResponseWriter, r *http.Request) {
	sess := requireStudio(w, r)
	if sess == nil {
		return
	}

	username := r.PathValue("username")
	if !h.owns(w, r, sess.Studio.Username, username) {
		return
	}

	var req SavePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
		return
	}
	if req.PlanText == "" {
		http.Error(w, `{"error":"planText required"}`, http.StatusBadRequest)
		return
	}

	record, err := h.planService.SavePlan(r.Context(), username, req.PlanText)
	if err != nil {
		h.audit.LogPlanSaved(r.Context(), sess.Studio.Username, username, "failed")
		h.logger.Error("failed to save plan",
			slog.String("client", username),
			slog.String("error", err.Error()),
		)
		http.Error(w, `{"error":"save failed"}`, http.StatusBadGateway)
		return
	}

	h.audit.LogPlanSaved(r.Context(), sess.Studio.Username, username, "saved")
	h.logger.Info("plan saved",
		slog.String("studio", sess.Studio.Username),
		slog.String("client", username),
	)
	writeJSON(w, http.StatusCreated, PlanView{
		AssignedAt:   record.AssignedAt,
		PlanText:     record.PlanText,
		InternalNote: record.InternalNote,
	})
}

// Current handles GET /api/plans/current requests. Client sessions only:
// a client sees their own latest plan and nothing else.
func (h *PlansHandler) Current(w http.ResponseWriter, r *http.Request) {
	sess := requireClient(w, r)
	if sess == nil {
		return
	}

	record, ok := h.planService.Current(r.Context(), sess.Client.Username)
	if !ok {
		http.Error(w, `{"error":"no plan assigned yet"}`, http.StatusNotFound)
		return
	}

	// Internal note stays on the studio side.
	writeJSON(w, http.StatusOK, PlanView{
		AssignedAt: record.AssignedAt,
		PlanText:   record.PlanText,
	})
}

func (h *PlansHandler) owns(w http.ResponseWriter, r *http.Request, studioUsername, clientUsername string) bool {
	client, err := h.clients.FindByUsername(r.Context(), clientUsername)
	if err != nil || h.authz.ValidateClientAccess(studioUsername, client) != nil {
		http.Error(w, `{"error":"client not found"}`, http.StatusNotFound)
		return false
	}
	return true
}
