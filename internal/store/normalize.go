package store

import (
	"strconv"
	"strings"

	"github.com/yourorg/studioportal/internal/domain"
)

// RawRow is one freshly decoded row before normalization. The backend is
// hand-edited and schema-less, so cells arrive as whatever the wire codec
// produced: strings, numbers, booleans or nothing.
type RawRow map[string]any

// NormalizeRows converts freshly read rows into uniform text rows: column
// names are trimmed and lowercased, every cell is coerced to text, and cell
// values are trimmed. This must run before any equality comparison on
// identifier or password fields; skipping it produces false login rejections.
func NormalizeRows(raw []RawRow) []domain.Row {
	rows := make([]domain.Row, 0, len(raw))
	for _, rr := range raw {
		row := make(domain.Row, len(rr))
		for col, cell := range rr {
			key := strings.ToLower(strings.TrimSpace(col))
			if key == "" {
				continue
			}
			row[key] = strings.TrimSpace(cellString(cell))
		}
		rows = append(rows, row)
	}
	return rows
}

// cellString coerces a decoded cell to its text form.
func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case bool:
		return strconv.FormatBool(c)
	case float64:
		// JSON numbers decode as float64; integral values must not grow a
		// fractional suffix here ("1234", never "1234.000000").
		return strconv.FormatFloat(c, 'f', -1, 64)
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	default:
		return strings.TrimSpace(strconvAny(c))
	}
}

func strconvAny(v any) string {
	type stringer interface{ String() string }
	if s, ok := v.(stringer); ok {
		return s.String()
	}
	return ""
}

// StripNumericArtifact removes a trailing literal ".0" left behind when a
// digit-only value round-trips through spreadsheet numeric auto-detection
// (a password "1234" stored as a number exports as "1234.0"). The suffix is
// stripped only when the remaining stem is all digits; anything else is
// returned unchanged.
func StripNumericArtifact(s string) string {
	stem, ok := strings.CutSuffix(s, ".0")
	if !ok || stem == "" {
		return s
	}
	for _, r := range stem {
		if r < '0' || r > '9' {
			return s
		}
	}
	return stem
}
