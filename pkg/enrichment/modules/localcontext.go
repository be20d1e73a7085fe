package modules

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwebster45206/turn-engine/pkg/enrichment"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

// LocalContext is a short situational summary around the player
type LocalContext struct {
	Place      string   `json:"place"`
	Conditions string   `json:"conditions,omitempty"`
	Crowd      string   `json:"crowd"`
	Highlights []string `json:"highlights,omitempty"`
	Summary    string   `json:"summary"`
}

// NewLocalContextModule summarises the surroundings. It needs the location
// module and uses weather when available.
func NewLocalContextModule() *enrichment.FuncModule {
	deps := []enrichment.ModuleDependency{
		{ModuleID: LocationID, Required: true, Level: enrichment.LevelStandard},
		{ModuleID: WeatherID, Required: false, Level: enrichment.LevelMinimal},
	}
	return enrichment.NewFuncModule(LocalContextID, deps, localContext)
}

func localContext(_ context.Context, ec enrichment.EnrichedContext) (any, error) {
	loc, ok, err := dependencyData[LocationData](ec, LocationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("location data missing")
	}
	lc := LocalContext{Place: loc.Name, Crowd: crowd(loc.Kind, ec.Ambient.TimeOfDay)}

	weather, hasWeather, err := dependencyData[WeatherData](ec, WeatherID)
	if err != nil {
		return nil, err
	}
	if hasWeather {
		lc.Conditions = fmt.Sprintf("%s, %s", weather.Feel, weather.TimeOfDay)
	}

	for _, svc := range loc.Services {
		lc.Highlights = append(lc.Highlights, "offers "+svc)
	}
	for _, n := range loc.Nearby {
		lc.Highlights = append(lc.Highlights, fmt.Sprintf("%s %.1f km away", n.Name, n.DistanceKm))
	}

	who := ec.Subject.Name
	if who == "" {
		who = "The player"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s at %s", who, lc.Place)
	if lc.Conditions != "" {
		fmt.Fprintf(&b, " (%s)", lc.Conditions)
	}
	fmt.Fprintf(&b, "; %s", lc.Crowd)
	lc.Summary = b.String()
	return lc, nil
}

func crowd(kind, timeOfDay string) string {
	if timeOfDay == state.TimeNight {
		return "nearly deserted"
	}
	switch kind {
	case "market", "station", "cafe", "restaurant":
		if timeOfDay == state.TimeDawn {
			return "just opening up"
		}
		return "busy"
	case "park", "library", "museum":
		return "quiet"
	}
	return "a few passers-by"
}
