package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/yourorg/studioportal/internal/domain"
	"github.com/yourorg/studioportal/internal/notify"
	"github.com/yourorg/studioportal/internal/security"
)

// ShareLinksResponse carries prefilled deep links for notifying a client
// that a new plan is ready. Empty links mean the corresponding contact
// channel has no usable value stored.
type ShareLinksResponse struct {
	WhatsApp string `json:"whatsapp,omitempty"`
	Mailto   string `json:"mailto,omitempty"`
}

// ShareLinksHandler builds notification deep links.
type ShareLinksHandler struct {
	clients domain.ClientRepository
	authz   *security.AuthorizationService
	logger  *slog.Logger
}

// NewShareLinksHandler creates a new share links handler
func NewShareLinksHandler(clients domain.ClientRepository, authz *security.AuthorizationService, logger *slog.Logger) *ShareLinksHandler {
	return &ShareLinksHandler{clients: clients, authz: authz, logger: logger}
}

// ServeHTTP handles GET /api/share-links?client={username} requests
func (h *ShareLinksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess := requireStudio(w, r)
	if sess == nil {
		return
	}

	username := r.URL.Query().Get("client")
	if username == "" {
		http.Error(w, `{"error":"client query parameter required"}`, http.StatusBadRequest)
		return
	}

	client, err := h.clients.FindByUsername(r.Context(), username)
	if err != nil || h.authz.ValidateClientAccess(sess.Studio.Username, client) != nil {
		http.Error(w, `{"error":"client not found"}`, http.StatusNotFound)
		return
	}

	studioName := sess.Studio.DisplayName
	if studioName == "" {
		studioName = sess.Studio.Username
	}
	message := fmt.Sprintf("Ciao %s! Il tuo nuovo piano alimentare di %s è pronto. Accedi al portale per visualizzarlo.", client.FullName, studioName)
	subject := fmt.Sprintf("Il tuo nuovo piano da %s", studioName)

	writeJSON(w, http.StatusOK, ShareLinksResponse{
		WhatsApp: notify.WhatsAppLink(client.Phone, message),
		Mailto:   notify.MailtoLink(client.Email, subject, message),
	})
}
