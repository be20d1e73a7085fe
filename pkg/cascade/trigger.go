// Package cascade decides which enrichment chains an action needs and runs
// them as one merged cascade.
package cascade

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/enrichment"
	"github.com/jwebster45206/turn-engine/pkg/state"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/jwebster45206/turn-engine/pkg/cascade"

// MergeMode controls how several root cascades are combined
type MergeMode string

const (
	// MergeConcurrent runs roots in parallel; the merged chain is in completion order
	MergeConcurrent MergeMode = "concurrent"
	// MergeSequential runs roots one at a time in sorted order so each root's
	// topological order survives in the merged chain
	MergeSequential MergeMode = "sequential"
)

// ParseMergeMode reads a merge mode from configuration
func ParseMergeMode(s string) (MergeMode, error) {
	switch MergeMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MergeConcurrent:
		return MergeConcurrent, nil
	case MergeSequential:
		return MergeSequential, nil
	}
	return "", fmt.Errorf("unknown cascade merge mode %q", s)
}

// Enricher runs one dependency chain. *enrichment.ChainManager implements it.
type Enricher interface {
	EnrichWithCascade(ctx context.Context, base enrichment.EnrichedContext, rootID string) (*enrichment.CascadeResult, error)
}

// Trigger selects roots for an action and merges their cascades
type Trigger struct {
	chain   Enricher
	rules   []Rule
	mode    MergeMode
	timeout time.Duration
	logger  *slog.Logger
	tracer  trace.Tracer
}

// Option configures a Trigger
type Option func(*Trigger)

// WithRules replaces the rule table
func WithRules(rules []Rule) Option {
	return func(t *Trigger) {
		t.rules = append([]Rule(nil), rules...)
	}
}

// WithMergeMode selects how roots are combined
func WithMergeMode(m MergeMode) Option {
	return func(t *Trigger) {
		t.mode = m
	}
}

// WithTimeout bounds the whole join. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(t *Trigger) {
		t.timeout = d
	}
}

// New creates a trigger over chain using DefaultRules and concurrent merging
func New(chain Enricher, logger *slog.Logger, opts ...Option) *Trigger {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Trigger{
		chain:  chain,
		rules:  DefaultRules(),
		mode:   MergeConcurrent,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// DetermineRelevantModules returns the sorted root module ids for act
func (t *Trigger) DetermineRelevantModules(act action.Action) []string {
	return relevantModules(t.rules, act)
}

// RunCascadeForAction runs every relevant root against one base context built
// from ws. It returns nil when no module is relevant or when any root fails.
func (t *Trigger) RunCascadeForAction(ctx context.Context, ws *state.WorldState, act action.Action, amb state.Ambient) *enrichment.CascadeResult {
	roots := t.DetermineRelevantModules(act)
	if len(roots) == 0 {
		t.logger.Debug("No enrichment roots for action", "kind", act.Kind)
		return nil
	}

	ctx, span := t.tracer.Start(ctx, "cascade.run", trace.WithAttributes(
		attribute.StringSlice("cascade.roots", roots),
		attribute.String("cascade.merge_mode", string(t.mode)),
	))
	defer span.End()

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	base := enrichment.NewContext(ws, act, amb)

	var (
		res *enrichment.CascadeResult
		err error
	)
	if t.mode == MergeSequential {
		res, err = t.runSequential(ctx, base, roots)
	} else {
		res, err = t.runConcurrent(ctx, base, roots)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.logger.Error("Enrichment cascade failed, no enrichment available",
			"roots", roots,
			"integrity", enrichment.IsIntegrityError(err),
			"error", err)
		return nil
	}

	span.SetAttributes(attribute.Int("cascade.modules", len(res.ExecutionChain)))
	return res
}

func (t *Trigger) runSequential(ctx context.Context, base enrichment.EnrichedContext, roots []string) (*enrichment.CascadeResult, error) {
	m := newMerger()
	for _, root := range roots {
		res, err := t.chain.EnrichWithCascade(ctx, base, root)
		if err != nil {
			return nil, fmt.Errorf("root %s: %w", root, err)
		}
		m.add(res)
	}
	return m.result(), nil
}

func (t *Trigger) runConcurrent(ctx context.Context, base enrichment.EnrichedContext, roots []string) (*enrichment.CascadeResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	m := newMerger()
	for _, root := range roots {
		g.Go(func() error {
			res, err := t.chain.EnrichWithCascade(gctx, base, root)
			if err != nil {
				return fmt.Errorf("root %s: %w", root, err)
			}
			m.add(res)
			return nil
		})
	}

	// Modules that ignore cancellation must not hold the turn past the budget
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
		return m.result(), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("cascade join: %w", ctx.Err())
	}
}

// merger unions root results: last write wins per module id, the chain is a
// de-duplicated union in arrival order
type merger struct {
	mu      sync.Mutex
	results map[string]enrichment.ModuleEnrichmentResult
	chain   []string
	seen    map[string]bool
}

func newMerger() *merger {
	return &merger{
		results: make(map[string]enrichment.ModuleEnrichmentResult),
		seen:    make(map[string]bool),
	}
}

func (m *merger) add(res *enrichment.CascadeResult) {
	if res == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	maps.Copy(m.results, res.Results)
	for _, id := range res.ExecutionChain {
		if !m.seen[id] {
			m.seen[id] = true
			m.chain = append(m.chain, id)
		}
	}
}

func (m *merger) result() *enrichment.CascadeResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &enrichment.CascadeResult{
		Results:        maps.Clone(m.results),
		ExecutionChain: append([]string(nil), m.chain...),
	}
}
