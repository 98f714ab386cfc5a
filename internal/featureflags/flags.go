// Package featureflags reads operational toggles from the environment.
// Flags gate infrastructure behavior only; portal features are never
// flagged.
package featureflags

import (
	"os"
	"strings"
)

// Enabled reports whether FLAG_<NAME> is set to a truthy value. Unset
// flags are off.
func Enabled(name string) bool {
	v := os.Getenv("FLAG_" + strings.ToUpper(name))
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
