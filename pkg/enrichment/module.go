// Package enrichment runs pluggable modules that gather situational data for
// the narrator. Modules declare dependencies on other modules; the chain
// manager orders them and hands each one the results it asked for.
package enrichment

import (
	"context"
	"encoding/json"
	"maps"
	"time"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

// Level hints how much detail a dependent wants from a dependency.
// It is passed through to modules and never used for scheduling.
type Level string

const (
	LevelMinimal  Level = "minimal"
	LevelStandard Level = "standard"
	LevelFull     Level = "full"
)

// ModuleDependency is one declared dependency of a module
type ModuleDependency struct {
	ModuleID string `json:"module_id"`
	Required bool   `json:"required"`
	Level    Level  `json:"level,omitempty"`
}

// Module is a pluggable enrichment unit
type Module interface {
	ID() string
	Dependencies() []ModuleDependency
	Enrich(ctx context.Context, ec EnrichedContext) (ModuleEnrichmentResult, error)
}

// PlayerSnapshot is the part of the world a module may read
type PlayerSnapshot struct {
	GameID     string             `json:"game_id"`
	Turn       int                `json:"turn"`
	Name       string             `json:"name"`
	Position   state.Position     `json:"position"`
	LocationID string             `json:"location_id,omitempty"`
	Location   *state.Location    `json:"location,omitempty"`
	Money      float64            `json:"money"`
	Stats      map[string]float64 `json:"stats,omitempty"`
	Physiology map[string]float64 `json:"physiology,omitempty"`
	Inventory  []string           `json:"inventory,omitempty"`
	InCombat   bool               `json:"in_combat,omitempty"`
}

// ActionInfo is the action as modules see it
type ActionInfo struct {
	Kind    action.Kind `json:"kind"`
	Text    string      `json:"text"`
	Payload any         `json:"payload,omitempty"`
}

// EnrichedContext is the input to one module invocation. DependencyResults
// holds only the results of the dependencies that module declared.
type EnrichedContext struct {
	Subject           PlayerSnapshot                    `json:"subject"`
	Action            ActionInfo                        `json:"action"`
	Ambient           state.Ambient                     `json:"ambient"`
	DependencyResults map[string]ModuleEnrichmentResult `json:"dependency_results,omitempty"`
}

// Dependency returns the injected result for a dependency id
func (ec EnrichedContext) Dependency(id string) (ModuleEnrichmentResult, bool) {
	r, ok := ec.DependencyResults[id]
	return r, ok
}

// ModuleEnrichmentResult is what one module produced
type ModuleEnrichmentResult struct {
	ModuleID         string        `json:"module_id"`
	Data             any           `json:"data,omitempty"`
	EnrichmentLevel  Level         `json:"enrichment_level,omitempty"`
	DependenciesUsed []string      `json:"dependencies_used,omitempty"`
	ExecutionTime    time.Duration `json:"-"`
}

type resultJSON struct {
	ModuleID         string   `json:"module_id"`
	Data             any      `json:"data,omitempty"`
	EnrichmentLevel  Level    `json:"enrichment_level,omitempty"`
	DependenciesUsed []string `json:"dependencies_used,omitempty"`
	ExecutionTimeMs  float64  `json:"execution_time_ms"`
}

// MarshalJSON reports ExecutionTime as execution_time_ms
func (r ModuleEnrichmentResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		ModuleID:         r.ModuleID,
		Data:             r.Data,
		EnrichmentLevel:  r.EnrichmentLevel,
		DependenciesUsed: r.DependenciesUsed,
		ExecutionTimeMs:  float64(r.ExecutionTime.Microseconds()) / 1000,
	})
}

// UnmarshalJSON reads execution_time_ms back into ExecutionTime
func (r *ModuleEnrichmentResult) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ModuleEnrichmentResult{
		ModuleID:         raw.ModuleID,
		Data:             raw.Data,
		EnrichmentLevel:  raw.EnrichmentLevel,
		DependenciesUsed: raw.DependenciesUsed,
		ExecutionTime:    time.Duration(raw.ExecutionTimeMs * float64(time.Millisecond)),
	}
	return nil
}

// CascadeResult is the outcome of one or more merged cascades
type CascadeResult struct {
	Results        map[string]ModuleEnrichmentResult `json:"results"`
	ExecutionChain []string                          `json:"execution_chain"`
}

// Data returns the payload a module produced
func (c *CascadeResult) Data(moduleID string) (any, bool) {
	if c == nil {
		return nil, false
	}
	r, ok := c.Results[moduleID]
	return r.Data, ok
}

// NewContext builds the base context for a turn from the reduced world state
func NewContext(ws *state.WorldState, act action.Action, amb state.Ambient) EnrichedContext {
	ec := EnrichedContext{
		Action:  ActionInfo{Kind: act.Kind, Text: act.Text, Payload: act.Payload()},
		Ambient: amb,
	}
	if ws == nil {
		return ec
	}
	p := ws.Player
	ec.Subject = PlayerSnapshot{
		GameID:     ws.GameID.String(),
		Turn:       ws.Turn,
		Name:       p.Name,
		Position:   p.Position,
		LocationID: p.LocationID,
		Money:      p.Money,
		Stats:      maps.Clone(p.Stats),
		Physiology: maps.Clone(p.Physiology),
		InCombat:   ws.InCombat(),
	}
	if loc, ok := ws.CurrentLocation(); ok {
		ec.Subject.Location = &loc
	}
	for _, it := range p.Inventory {
		ec.Subject.Inventory = append(ec.Subject.Inventory, it.Name)
	}
	return ec
}

// EnrichFunc computes a module's data from its context
type EnrichFunc func(ctx context.Context, ec EnrichedContext) (any, error)

// FuncModule adapts a function into a Module
type FuncModule struct {
	ModuleID string
	Deps     []ModuleDependency
	Level    Level
	Fn       EnrichFunc
}

// NewFuncModule creates a module from fn
func NewFuncModule(id string, deps []ModuleDependency, fn EnrichFunc) *FuncModule {
	return &FuncModule{ModuleID: id, Deps: deps, Level: LevelStandard, Fn: fn}
}

func (m *FuncModule) ID() string                       { return m.ModuleID }
func (m *FuncModule) Dependencies() []ModuleDependency { return m.Deps }

func (m *FuncModule) Enrich(ctx context.Context, ec EnrichedContext) (ModuleEnrichmentResult, error) {
	var data any
	if m.Fn != nil {
		var err error
		if data, err = m.Fn(ctx, ec); err != nil {
			return ModuleEnrichmentResult{}, err
		}
	}
	return ModuleEnrichmentResult{ModuleID: m.ModuleID, Data: data, EnrichmentLevel: m.Level}, nil
}
