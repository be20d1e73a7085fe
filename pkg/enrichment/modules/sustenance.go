package modules

import (
	"context"

	"github.com/jwebster45206/turn-engine/pkg/enrichment"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

// Need thresholds on the 0..100 satiety scale
const (
	needLow      = 40.0
	needCritical = 15.0
)

// FoodOption is a service at the current location that restores a need
type FoodOption struct {
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	Affordable bool     `json:"affordable"`
	Restores   []string `json:"restores,omitempty"`
}

// SustenanceData reports how hungry and thirsty the player is and what is on offer
type SustenanceData struct {
	Hunger  float64      `json:"hunger"`
	Thirst  float64      `json:"thirst"`
	Status  string       `json:"status"`
	Options []FoodOption `json:"options,omitempty"`
}

// NewSustenanceModule reports needs and nearby food. It needs the location module.
func NewSustenanceModule() *enrichment.FuncModule {
	deps := []enrichment.ModuleDependency{
		{ModuleID: LocationID, Required: true, Level: enrichment.LevelMinimal},
	}
	return enrichment.NewFuncModule(SustenanceID, deps, sustenance)
}

func sustenance(_ context.Context, ec enrichment.EnrichedContext) (any, error) {
	if _, _, err := dependencyData[LocationData](ec, LocationID); err != nil {
		return nil, err
	}
	s := ec.Subject
	d := SustenanceData{
		Hunger: gauge(s.Physiology, state.NeedHunger),
		Thirst: gauge(s.Physiology, state.NeedThirst),
	}
	d.Status = needStatus(min(d.Hunger, d.Thirst))

	if s.Location == nil {
		return d, nil
	}
	for _, svc := range s.Location.Services {
		if svc.GrantsItem == nil {
			continue
		}
		var restores []string
		for _, need := range []string{state.NeedHunger, state.NeedThirst} {
			if svc.GrantsItem.Effects.Physiology[need] > 0 {
				restores = append(restores, need)
			}
		}
		if len(restores) == 0 {
			continue
		}
		d.Options = append(d.Options, FoodOption{
			Name:       svc.Name,
			Price:      svc.Price,
			Affordable: svc.Price <= s.Money,
			Restores:   restores,
		})
	}
	return d, nil
}

// gauge reads a need, treating a missing key as full
func gauge(m map[string]float64, key string) float64 {
	if v, ok := m[key]; ok {
		return v
	}
	return state.MaxGauge
}

func needStatus(v float64) string {
	switch {
	case v <= needCritical:
		return "critical"
	case v <= needLow:
		return "low"
	}
	return "fine"
}
