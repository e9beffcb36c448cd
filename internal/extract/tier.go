package extract

import "strings"

// DefaultTier is assumed when a submission carries no tier answer at all.
const DefaultTier = "Starter"

// tierAliases maps the raw labels the form tool has used for each
// subscription level onto the canonical vocabulary.
var tierAliases = map[string]string{
	"starter": "Starter",
	"start":   "Starter",
	"basic":   "Starter",
	"growth":  "Growth",
	"grow":    "Growth",
	"premium": "Premium",
	"pro":     "Premium",
}

// NormalizeTier maps a raw tier answer onto the canonical vocabulary
// (Starter, Growth, Premium). Unrecognized values pass through title-cased so
// a new upstream label is stored readably rather than rejected. Empty input
// falls back to DefaultTier. The function is idempotent.
func NormalizeTier(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if cleaned == "" {
		cleaned = strings.ToLower(DefaultTier)
	}
	if canonical, ok := tierAliases[cleaned]; ok {
		return canonical
	}
	return strings.ToUpper(cleaned[:1]) + cleaned[1:]
}
