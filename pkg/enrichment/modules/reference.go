package modules

import (
	"context"
	"slices"
	"strings"

	"github.com/jwebster45206/turn-engine/pkg/enrichment"
	"golang.org/x/text/cases"
)

// ReferenceEntry is one piece of background knowledge
type ReferenceEntry struct {
	Topic    string   `json:"topic"`
	Keywords []string `json:"keywords,omitempty"`
	Text     string   `json:"text"`
}

// ReferenceData lists entries whose topic or keywords appear in the action text
type ReferenceData struct {
	Query   string           `json:"query"`
	Matches []ReferenceEntry `json:"matches,omitempty"`
}

// ReferenceModule answers look-up style actions from a fixed knowledge base
type ReferenceModule struct {
	entries []ReferenceEntry
}

// NewReferenceModule creates a reference module over entries
func NewReferenceModule(entries []ReferenceEntry) *ReferenceModule {
	return &ReferenceModule{entries: slices.Clone(entries)}
}

func (m *ReferenceModule) ID() string                                  { return ReferenceID }
func (m *ReferenceModule) Dependencies() []enrichment.ModuleDependency { return nil }

func (m *ReferenceModule) Enrich(ctx context.Context, ec enrichment.EnrichedContext) (enrichment.ModuleEnrichmentResult, error) {
	fold := cases.Fold()
	query := fold.String(ec.Action.Text)

	d := ReferenceData{Query: ec.Action.Text}
	for _, e := range m.entries {
		if err := ctx.Err(); err != nil {
			return enrichment.ModuleEnrichmentResult{}, err
		}
		terms := append([]string{e.Topic}, e.Keywords...)
		for _, term := range terms {
			term = strings.TrimSpace(term)
			if term != "" && strings.Contains(query, fold.String(term)) {
				d.Matches = append(d.Matches, e)
				break
			}
		}
	}
	return enrichment.ModuleEnrichmentResult{
		ModuleID:        ReferenceID,
		Data:            d,
		EnrichmentLevel: enrichment.LevelFull,
	}, nil
}
