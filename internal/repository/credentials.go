package repository

import (
	"strings"

	"github.com/yourorg/studioportal/internal/domain"
	"github.com/yourorg/studioportal/internal/store"
)

// matchCredentials finds the first row matching the given credentials in
// table order. Username comparison is case-insensitive after trimming;
// password comparison is case-sensitive after trimming and numeric-artifact
// stripping. Duplicate usernames are a data-quality defect in the sheet, not
// an error here: the first match wins.
func matchCredentials(rows []domain.Row, username, password string) (domain.Row, bool) {
	wantUser := strings.TrimSpace(username)
	wantPass := strings.TrimSpace(password)
	for _, row := range rows {
		if !strings.EqualFold(row["username"], wantUser) {
			continue
		}
		if store.StripNumericArtifact(row["password"]) == wantPass {
			return row, true
		}
	}
	return nil, false
}

// matchUsername finds the first row whose username matches, ignoring case.
func matchUsername(rows []domain.Row, username string) (domain.Row, bool) {
	want := strings.TrimSpace(username)
	for _, row := range rows {
		if strings.EqualFold(row["username"], want) {
			return row, true
		}
	}
	return nil, false
}
