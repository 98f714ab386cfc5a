package handler

import (
	"encoding/json"
	"net/http"

	"github.com/yourorg/studioportal/internal/domain"
	"github.com/yourorg/studioportal/internal/security/middleware"
	"github.com/yourorg/studioportal/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requireStudio resolves the caller's session and rejects anything that
// is not a studio. Returns nil after writing the error response.
func requireStudio(w http.ResponseWriter, r *http.Request) *session.Session {
	sess := middleware.GetSessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, `{"error":"not logged in"}`, http.StatusUnauthorized)
		return nil
	}
	if sess.Role != domain.RoleStudio {
		http.Error(w, `{"error":"studio access required"}`, http.StatusForbidden)
		return nil
	}
	return sess
}

// requireClient is the client-side counterpart of requireStudio.
func requireClient(w http.ResponseWriter, r *http.Request) *session.Session {
	sess := middleware.GetSessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, `{"error":"not logged in"}`, http.StatusUnauthorized)
		return nil
	}
	if sess.Role != domain.RoleClient {
		http.Error(w, `{"error":"client access required"}`, http.StatusForbidden)
		return nil
	}
	return sess
}
