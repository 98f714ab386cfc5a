package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yourorg/studioportal/internal/domain"
	"github.com/yourorg/studioportal/internal/security"
	"github.com/yourorg/studioportal/internal/security/audit"
)

// ClientView is the representation returned to studios. Passwords never
// leave the server.
type ClientView struct {
	Username     string `json:"username"`
	FullName     string `json:"fullName,omitempty"`
	PhysicalData string `json:"physicalData,omitempty"`
	Goal         string `json:"goal,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

func clientView(c domain.Client) ClientView {
	return ClientView{
		Username:     c.Username,
		FullName:     c.FullName,
		PhysicalData: c.PhysicalData,
		Goal:         c.Goal,
		Email:        c.Email,
		Phone:        c.Phone,
	}
}

// RegisterClientRequest creates a new client under the calling studio.
type RegisterClientRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	FullName     string `json:"fullName"`
	PhysicalData string `json:"physicalData"`
	Goal         string `json:"goal"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}

// UpdateContactRequest replaces a client's reachable coordinates.
type UpdateContactRequest struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// ClientsHandler manages the client roster of a studio.
type ClientsHandler struct {
	clients domain.ClientRepository
	authz   *security.AuthorizationService
	audit   *audit.Logger
	logger  *slog.Logger
}

// NewClientsHandler creates a new clients handler
func NewClientsHandler(clients domain.ClientRepository, authz *security.AuthorizationService, auditLog *audit.Logger, logger *slog.Logger) *ClientsHandler {
	return &ClientsHandler{clients: clients, authz: authz, audit: auditLog, logger: logger}
}

// List handles GET /api/clients requests
func (h *ClientsHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := requireStudio(w, r)
	if sess == nil {
		return
	}

	list := h.clients.ListByStudio(r.Context(), sess.Studio.Username)
	views := make([]ClientView, 0, len(list))
	for _, c := range list {
		views = append(views, clientView(c))
	}
	writeJSON(w, http.StatusOK, views)
}

// Create handles POST /api/clients requests
func (h *ClientsHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := requireStudio(w, r)
	if sess == nil {
		return
	}

	var req RegisterClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode register request", slog.String("error", err.Error()))
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		http.Error(w, `{"error":"username and password required"}`, http.StatusBadRequest)
		return
	}

	client := domain.Client{
		Username:       req.Username,
		Password:       req.Password,
		FullName:       req.FullName,
		StudioUsername: sess.Studio.Username,
		PhysicalData:   req.PhysicalData,
		Goal:           req.Goal,
		Email:          req.Email,
		Phone:          req.Phone,
	}

	if err := h.clients.Create(r.Context(), client); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			h.audit.LogRegistration(r.Context(), sess.Studio.Username, client.Username, "conflict", "username already taken")
			http.Error(w, `{"error":"username already taken"}`, http.StatusConflict)
			return
		}
		h.audit.LogRegistration(r.Context(), sess.Studio.Username, client.Username, "failed", err.Error())
		h.logger.Error("failed to register client",
			slog.String("studio", sess.Studio.Username),
			slog.String("error", err.Error()),
		)
		http.Error(w, `{"error":"registration failed"}`, http.StatusBadGateway)
		return
	}

	h.audit.LogRegistration(r.Context(), sess.Studio.Username, client.Username, "created", "")
	h.logger.Info("client registered",
		slog.String("studio", sess.Studio.Username),
		slog.String("client", client.Username),
	)
	writeJSON(w, http.StatusCreated, clientView(client))
}

// UpdateContact handles PUT /api/clients/{username}/contact requests
func (h *ClientsHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	sess := requireStudio(w, r)
	if sess == nil {
		return
	}

	username := r.PathValue("username")
	if _, ok := h.ownedClient(w, r, sess.Studio.Username, username); !ok {
		return
	}

	var req UpdateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
		return
	}

	if err := h.clients.UpdateContact(r.Context(), username, req.Phone, req.Email); err != nil {
		h.logger.Error("failed to update contact",
			slog.String("client", username),
			slog.String("error", err.Error()),
		)
		http.Error(w, `{"error":"update failed"}`, http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownedClient loads a client and verifies it belongs to the calling
// studio. A foreign client is reported as not found, never as forbidden.
func (h *ClientsHandler) ownedClient(w http.ResponseWriter, r *http.Request, studioUsername, clientUsername string) (*domain.Client, bool) {
	client, err := h.clients.FindByUsername(r.Context(), clientUsername)
	if err != nil || h.authz.ValidateClientAccess(studioUsername, client) != nil {
		http.Error(w, `{"error":"client not found"}`, http.StatusNotFound)
		return nil, false
	}
	return client, true
}
