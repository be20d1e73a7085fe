// Package modules holds the stock enrichment modules registered by the worker
// and the CLI, plus a cache decorator for expensive ones.
package modules

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/turn-engine/pkg/enrichment"
)

// Module ids. The cascade rule table refers to these.
const (
	WeatherID      = "weather"
	LocationID     = "location"
	LocalContextID = "local-context"
	SustenanceID   = "sustenance"
	ReferenceID    = "reference"
)

// Options configures the stock module set
type Options struct {
	// Places is the catalog the location module searches for nearby points of interest
	Places []Place
	// Entries backs the reference module
	Entries []ReferenceEntry
	// Cache, when set, wraps the location and reference modules
	Cache    Cache
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// Defaults builds the stock modules
func Defaults(opts Options) []enrichment.Module {
	var location enrichment.Module = NewLocationModule(opts.Places)
	var reference enrichment.Module = NewReferenceModule(opts.Entries)
	if opts.Cache != nil {
		location = NewCachedModule(location, opts.Cache, opts.CacheTTL, opts.Logger)
		reference = NewCachedModule(reference, opts.Cache, opts.CacheTTL, opts.Logger)
	}
	return []enrichment.Module{
		NewWeatherModule(),
		location,
		NewLocalContextModule(),
		NewSustenanceModule(),
		reference,
	}
}

// Register adds the stock modules to cm
func Register(cm *enrichment.ChainManager, opts Options) {
	for _, m := range Defaults(opts) {
		cm.RegisterModule(m)
	}
}

// decodeData reads a dependency payload as T. Payloads that went through the
// cache come back as generic JSON and are re-decoded.
func decodeData[T any](data any) (T, error) {
	var out T
	switch v := data.(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
		return out, fmt.Errorf("nil %T payload", v)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return out, fmt.Errorf("failed to re-encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode payload as %T: %w", out, err)
	}
	return out, nil
}

// dependencyData decodes the result injected for dependency id. A dependency
// that produced no data counts as absent.
func dependencyData[T any](ec enrichment.EnrichedContext, id string) (T, bool, error) {
	r, ok := ec.Dependency(id)
	if !ok || r.Data == nil {
		var zero T
		return zero, false, nil
	}
	v, err := decodeData[T](r.Data)
	if err != nil {
		return v, true, fmt.Errorf("dependency %s: %w", id, err)
	}
	return v, true, nil
}
