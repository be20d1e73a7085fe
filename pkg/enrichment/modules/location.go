package modules

import (
	"context"
	"slices"

	"github.com/jwebster45206/turn-engine/pkg/enrichment"
	"github.com/jwebster45206/turn-engine/pkg/resolver"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

// maxNearby caps the nearby list
const maxNearby = 3

// Place is a catalog entry for nearby lookups
type Place struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Kind     string         `json:"kind,omitempty"`
	Position state.Position `json:"position"`
}

// NearbyPlace is a catalog place with its distance from the player
type NearbyPlace struct {
	Name       string  `json:"name"`
	Kind       string  `json:"kind,omitempty"`
	DistanceKm float64 `json:"distance_km"`
}

// LocationData is what the location module knows about where the player is
type LocationData struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Kind     string         `json:"kind,omitempty"`
	Position state.Position `json:"position"`
	Services []string       `json:"services,omitempty"`
	Nearby   []NearbyPlace  `json:"nearby,omitempty"`
}

// LocationModule resolves the player's location and the closest catalog places
type LocationModule struct {
	places []Place
}

// NewLocationModule creates a location module over a catalog of places
func NewLocationModule(places []Place) *LocationModule {
	return &LocationModule{places: slices.Clone(places)}
}

func (m *LocationModule) ID() string                                  { return LocationID }
func (m *LocationModule) Dependencies() []enrichment.ModuleDependency { return nil }

func (m *LocationModule) Enrich(_ context.Context, ec enrichment.EnrichedContext) (enrichment.ModuleEnrichmentResult, error) {
	s := ec.Subject
	d := LocationData{ID: s.LocationID, Name: "open street", Position: s.Position}
	if s.Location != nil {
		d.Name = s.Location.Name
		d.Kind = s.Location.Kind
		for _, svc := range s.Location.Services {
			d.Services = append(d.Services, svc.Name)
		}
	}
	d.Nearby = m.nearby(s.Position, s.LocationID)

	return enrichment.ModuleEnrichmentResult{
		ModuleID:        LocationID,
		Data:            d,
		EnrichmentLevel: enrichment.LevelStandard,
	}, nil
}

func (m *LocationModule) nearby(from state.Position, exclude string) []NearbyPlace {
	var out []NearbyPlace
	for _, p := range m.places {
		if p.ID == exclude {
			continue
		}
		out = append(out, NearbyPlace{
			Name:       p.Name,
			Kind:       p.Kind,
			DistanceKm: round2(resolver.Distance(from, p.Position)),
		})
	}
	slices.SortStableFunc(out, func(a, b NearbyPlace) int {
		switch {
		case a.DistanceKm < b.DistanceKm:
			return -1
		case a.DistanceKm > b.DistanceKm:
			return 1
		}
		return 0
	})
	if len(out) > maxNearby {
		out = out[:maxNearby]
	}
	return out
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
