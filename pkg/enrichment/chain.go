package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jwebster45206/turn-engine/pkg/enrichment"

// visit states for dependency resolution
const (
	unvisited = iota
	inProgress
	done
)

// ChainManager is a registry of modules that resolves and runs dependency chains.
// It is safe for concurrent use; cascades for different roots may run in parallel.
type ChainManager struct {
	mu      sync.RWMutex
	modules map[string]Module
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewChainManager creates an empty registry. A nil logger uses slog.Default().
func NewChainManager(logger *slog.Logger) *ChainManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChainManager{
		modules: make(map[string]Module),
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
}

// RegisterModule adds m, replacing any module with the same id
func (cm *ChainManager) RegisterModule(m Module) {
	if m == nil {
		return
	}
	id := m.ID()
	cm.mu.Lock()
	_, exists := cm.modules[id]
	cm.modules[id] = m
	cm.mu.Unlock()

	if exists {
		cm.logger.Warn("Enrichment module re-registered, replacing previous entry", "module_id", id)
		return
	}
	cm.logger.Debug("Enrichment module registered", "module_id", id)
}

// Module returns the registered module with the given id
func (cm *ChainManager) Module(id string) (Module, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	m, ok := cm.modules[id]
	return m, ok
}

// ModuleIDs returns the registered ids in sorted order
func (cm *ChainManager) ModuleIDs() []string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return slices.Sorted(maps.Keys(cm.modules))
}

// ResolveOrder returns every module reachable from rootID, each after all of
// its dependencies
func (cm *ChainManager) ResolveOrder(rootID string) ([]string, error) {
	mods, err := cm.resolve(rootID)
	if err != nil {
		return nil, err
	}
	order := make([]string, len(mods))
	for i, m := range mods {
		order[i] = m.ID()
	}
	return order, nil
}

// frame is one module on the explicit traversal stack
type frame struct {
	module Module
	deps   []ModuleDependency
	next   int
}

// resolve walks the graph depth-first without recursion. A module is
// appended once all of its dependencies are done (post-order).
func (cm *ChainManager) resolve(rootID string) ([]Module, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	root, ok := cm.modules[rootID]
	if !ok {
		return nil, &IntegrityError{Kind: ErrModuleNotFound, ModuleID: rootID}
	}

	color := map[string]int{rootID: inProgress}
	stack := []*frame{{module: root, deps: root.Dependencies()}}
	var order []Module

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < len(top.deps) {
			dep := top.deps[top.next]
			top.next++

			switch color[dep.ModuleID] {
			case done:
				continue
			case inProgress:
				return nil, &IntegrityError{Kind: ErrCircularDependency, ModuleID: dep.ModuleID}
			}

			m, ok := cm.modules[dep.ModuleID]
			if !ok {
				return nil, &IntegrityError{
					Kind:       ErrModuleNotFound,
					ModuleID:   dep.ModuleID,
					RequiredBy: top.module.ID(),
				}
			}
			color[dep.ModuleID] = inProgress
			stack = append(stack, &frame{module: m, deps: m.Dependencies()})
			continue
		}

		color[top.module.ID()] = done
		order = append(order, top.module)
		stack = stack[:len(stack)-1]
	}
	return order, nil
}

// EnrichWithCascade resolves the chain rooted at rootID and runs it in order.
// Any integrity violation or module error aborts the whole cascade; no
// partial result is returned.
func (cm *ChainManager) EnrichWithCascade(ctx context.Context, base EnrichedContext, rootID string) (*CascadeResult, error) {
	ctx, span := cm.tracer.Start(ctx, "enrichment.cascade",
		trace.WithAttributes(attribute.String("enrichment.root", rootID)))
	defer span.End()

	fail := func(err error) (*CascadeResult, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	mods, err := cm.resolve(rootID)
	if err != nil {
		return fail(err)
	}

	results := make(map[string]ModuleEnrichmentResult, len(mods))
	order := make([]string, 0, len(mods))
	for _, m := range mods {
		if err := ctx.Err(); err != nil {
			return fail(fmt.Errorf("cascade %s interrupted before %s: %w", rootID, m.ID(), err))
		}

		ec, used, err := injectDependencies(base, m, results)
		if err != nil {
			return fail(err)
		}

		res, err := cm.execute(ctx, m, ec)
		if err != nil {
			return fail(err)
		}
		if res.ModuleID == "" {
			res.ModuleID = m.ID()
		}
		if res.DependenciesUsed == nil {
			res.DependenciesUsed = used
		}
		results[m.ID()] = res
		order = append(order, m.ID())
	}

	span.SetAttributes(attribute.Int("enrichment.modules", len(order)))
	cm.logger.Debug("Cascade complete",
		"root", rootID,
		"chain", order)

	return &CascadeResult{Results: results, ExecutionChain: order}, nil
}

// injectDependencies builds m's own context from base plus the results of the
// dependencies m declared
func injectDependencies(base EnrichedContext, m Module, results map[string]ModuleEnrichmentResult) (EnrichedContext, []string, error) {
	ec := base
	ec.Subject = cloneSubject(base.Subject)
	ec.DependencyResults = make(map[string]ModuleEnrichmentResult)

	var used []string
	for _, dep := range m.Dependencies() {
		r, ok := results[dep.ModuleID]
		if !ok {
			if dep.Required {
				return EnrichedContext{}, nil, &IntegrityError{
					Kind:       ErrDependencyInjection,
					ModuleID:   m.ID(),
					Dependency: dep.ModuleID,
				}
			}
			continue
		}
		ec.DependencyResults[dep.ModuleID] = r
		used = append(used, dep.ModuleID)
	}
	return ec, used, nil
}

func cloneSubject(s PlayerSnapshot) PlayerSnapshot {
	c := s
	c.Stats = maps.Clone(s.Stats)
	c.Physiology = maps.Clone(s.Physiology)
	c.Inventory = slices.Clone(s.Inventory)
	if s.Location != nil {
		loc := *s.Location
		loc.Services = slices.Clone(s.Location.Services)
		c.Location = &loc
	}
	return c
}

func (cm *ChainManager) execute(ctx context.Context, m Module, ec EnrichedContext) (ModuleEnrichmentResult, error) {
	ctx, span := cm.tracer.Start(ctx, "enrichment.module",
		trace.WithAttributes(attribute.String("enrichment.module_id", m.ID())))
	defer span.End()

	start := time.Now()
	res, err := m.Enrich(ctx, ec)
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ModuleEnrichmentResult{}, fmt.Errorf("module %s: %w", m.ID(), err)
	}
	if res.ExecutionTime <= 0 {
		res.ExecutionTime = elapsed
	}
	return res, nil
}
