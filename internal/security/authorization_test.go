package security

import (
	"io"
	"log/slog"
	"testing"

	"github.com/yourorg/studioportal/internal/domain"
)

func TestValidateClientAccess(t *testing.T) {
	authz := NewAuthorizationService(slog.New(slog.NewTextHandler(io.Discard, nil)))

	own := &domain.Client{Username: "mario", StudioUsername: "Acme"}
	if err := authz.ValidateClientAccess("acme", own); err != nil {
		t.Fatalf("case-insensitive tenant match must pass: %v", err)
	}

	foreign := &domain.Client{Username: "luigi", StudioUsername: "other"}
	if err := authz.ValidateClientAccess("acme", foreign); err == nil {
		t.Fatal("foreign client must be denied")
	}

	if err := authz.ValidateClientAccess("acme", nil); err == nil {
		t.Fatal("nil client must be denied")
	}
}
