package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yourorg/studioportal/internal/domain"
)

// StudioRepository implements domain.StudioRepository over CONFIG_STUDIOS.
type StudioRepository struct {
	tables domain.TableStore
	logger *slog.Logger
}

// NewStudioRepository creates a new studio repository.
func NewStudioRepository(tables domain.TableStore, logger *slog.Logger) *StudioRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &StudioRepository{tables: tables, logger: logger}
}

// Authenticate looks up a studio by credentials. Zero matches (including an
// empty or unreachable table) return domain.ErrNotFound without
// distinguishing the cause.
func (r *StudioRepository) Authenticate(ctx context.Context, username, password string) (*domain.Studio, error) {
	rows := r.tables.Read(ctx, domain.TableStudios)
	row, ok := matchCredentials(rows, username, password)
	if !ok {
		return nil, domain.ErrNotFound
	}
	studio := domain.StudioFromRow(row)
	return &studio, nil
}

// FindByUsername resolves a studio for branding display. Absence is a valid
// outcome (an orphaned client reference) and returns domain.ErrNotFound.
func (r *StudioRepository) FindByUsername(ctx context.Context, username string) (*domain.Studio, error) {
	rows := r.tables.Read(ctx, domain.TableStudios)
	row, ok := matchUsername(rows, username)
	if !ok {
		return nil, domain.ErrNotFound
	}
	studio := domain.StudioFromRow(row)
	return &studio, nil
}

// UpdateSettings rewrites the studio's display fields in place and
// overwrites the whole table. This is a read-modify-write with no isolation:
// a concurrent writer's change to any studio row can be lost
// (last-write-wins at table granularity).
func (r *StudioRepository) UpdateSettings(ctx context.Context, studio domain.Studio) error {
	rows := r.tables.Read(ctx, domain.TableStudios)
	found := false
	for _, row := range rows {
		if strings.EqualFold(row["username"], strings.TrimSpace(studio.Username)) {
			row["display_name"] = studio.DisplayName
			row["logo_url"] = studio.LogoURL
			row["style_guide"] = studio.StyleGuide
			found = true
			break
		}
	}
	if !found {
		return domain.ErrNotFound
	}
	if err := r.tables.Overwrite(ctx, domain.TableStudios, rows); err != nil {
		return fmt.Errorf("update studio settings: %w", err)
	}
	r.logger.Info("studio settings updated", slog.String("studio", studio.Username))
	return nil
}
