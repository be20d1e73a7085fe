package narrative

import (
	"encoding/json"
	"strings"
)

// Narration is the narrator's answer for one turn
type Narration struct {
	Narrative        string   `json:"narrative"`
	SuggestedActions []string `json:"suggested_actions,omitempty"`
}

// ParseNarration reads the narrator's JSON answer. Code fences and text around
// the object are ignored. Anything that is not a usable object becomes the
// narrative verbatim.
func ParseNarration(text string) Narration {
	trimmed := strings.TrimSpace(text)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		var n Narration
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &n); err == nil && strings.TrimSpace(n.Narrative) != "" {
			n.Narrative = strings.TrimSpace(n.Narrative)
			n.SuggestedActions = cleanSuggestions(n.SuggestedActions)
			return n
		}
	}
	return Narration{Narrative: trimmed}
}

func cleanSuggestions(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
