package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yourorg/studioportal/internal/domain"
)

// ClientRepository implements domain.ClientRepository over CLIENTS.
type ClientRepository struct {
	tables domain.TableStore
	logger *slog.Logger
}

// NewClientRepository creates a new client repository.
func NewClientRepository(tables domain.TableStore, logger *slog.Logger) *ClientRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientRepository{tables: tables, logger: logger}
}

// Authenticate looks up a client by credentials, first match in table order.
func (r *ClientRepository) Authenticate(ctx context.Context, username, password string) (*domain.Client, error) {
	rows := r.tables.Read(ctx, domain.TableClients)
	row, ok := matchCredentials(rows, username, password)
	if !ok {
		return nil, domain.ErrNotFound
	}
	client := domain.ClientFromRow(row)
	return &client, nil
}

// FindByUsername returns a client by exact (case-insensitive) username.
func (r *ClientRepository) FindByUsername(ctx context.Context, username string) (*domain.Client, error) {
	rows := r.tables.Read(ctx, domain.TableClients)
	row, ok := matchUsername(rows, username)
	if !ok {
		return nil, domain.ErrNotFound
	}
	client := domain.ClientFromRow(row)
	return &client, nil
}

// ListByStudio returns the clients linked to a studio, in table order.
func (r *ClientRepository) ListByStudio(ctx context.Context, studioUsername string) []domain.Client {
	rows := r.tables.Read(ctx, domain.TableClients)
	var out []domain.Client
	for _, row := range rows {
		if strings.EqualFold(row["tenant_username"], strings.TrimSpace(studioUsername)) {
			out = append(out, domain.ClientFromRow(row))
		}
	}
	return out
}

// Create registers a new client. The full table is re-read immediately
// before insertion to emulate the uniqueness the backend cannot enforce.
// Two concurrent registrations with the same username can still both pass
// this check and both append; the duplicate row is an accepted limitation,
// resolved on read by first-match-wins.
func (r *ClientRepository) Create(ctx context.Context, client domain.Client) error {
	rows := r.tables.Read(ctx, domain.TableClients)
	if _, exists := matchUsername(rows, client.Username); exists {
		return domain.ErrDuplicateUsername
	}
	if err := r.tables.Append(ctx, domain.TableClients, client.Row()); err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	r.logger.Info("client created",
		slog.String("client", client.Username),
		slog.String("studio", client.StudioUsername),
	)
	return nil
}

// UpdateContact rewrites a client's phone and email and overwrites the whole
// table. Last-write-wins, same caveat as studio settings.
func (r *ClientRepository) UpdateContact(ctx context.Context, username, phone, email string) error {
	rows := r.tables.Read(ctx, domain.TableClients)
	found := false
	for _, row := range rows {
		if strings.EqualFold(row["username"], strings.TrimSpace(username)) {
			row["phone"] = phone
			row["email"] = email
			found = true
			break
		}
	}
	if !found {
		return domain.ErrNotFound
	}
	if err := r.tables.Overwrite(ctx, domain.TableClients, rows); err != nil {
		return fmt.Errorf("update client contact: %w", err)
	}
	r.logger.Info("client contact updated", slog.String("client", username))
	return nil
}
