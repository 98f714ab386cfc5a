package security

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/yourorg/studioportal/internal/domain"
)

// AuthorizationService enforces tenant boundaries. Every client belongs
// to exactly one studio; a studio may only touch its own clients, and a
// client may only read their own records.
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{logger: logger}
}

// ValidateClientAccess checks that a client record belongs to the given
// studio. Tenant references in the sheet are matched case-insensitively,
// the same way usernames are matched at login.
func (a *AuthorizationService) ValidateClientAccess(studioUsername string, client *domain.Client) error {
	if client == nil {
		return fmt.Errorf("access denied: no such client")
	}
	if !strings.EqualFold(client.StudioUsername, studioUsername) {
		a.logger.Warn("tenant access denied",
			slog.String("studio", studioUsername),
			slog.String("client", client.Username),
			slog.String("client_studio", client.StudioUsername),
		)
		return fmt.Errorf("access denied: client does not belong to this studio")
	}
	return nil
}
