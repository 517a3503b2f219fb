// Package flatten converts nested remote payloads into flat string-valued
// records. The two entity families use different key-joining conventions:
// member and question records join nested keys with no separator
// ("latestParty.id" -> "latestPartyid"), constituency records join with an
// underscore ("currentRepresentation.member" -> "currentRepresentation_member").
package flatten

import (
	"strconv"

	"github.com/westminster-data/parlsync/internal/core/domain"
)

// Map flattens a raw payload, joining nested keys with sep. List-valued
// fields (attachment lists, grouped-question cross-references) carry no
// tabular value and are skipped.
func Map(raw domain.RawRecord, sep string) domain.Record {
	out := make(domain.Record, len(raw))
	walk(map[string]any(raw), "", sep, out)
	return out
}

func walk(node map[string]any, prefix, sep string, out domain.Record) {
	for key, value := range node {
		flat := key
		if prefix != "" {
			flat = prefix + sep + key
		}
		switch v := value.(type) {
		case map[string]any:
			walk(v, flat, sep, out)
		case []any:
			// skipped
		default:
			out[flat] = formatValue(v)
		}
	}
}

// formatValue renders a JSON scalar the way the archive stores it. JSON
// numbers arrive as float64; integral values must not grow a ".0" suffix or
// identical rows would stop comparing equal across a write/read cycle.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return ""
	}
}
