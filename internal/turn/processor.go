// Package turn processes one queued player action end to end: resolve, reduce,
// enrich and narrate.
package turn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/turn-engine/internal/logger"
	"github.com/jwebster45206/turn-engine/internal/services"
	svcevents "github.com/jwebster45206/turn-engine/internal/services/events"
	"github.com/jwebster45206/turn-engine/pkg/cascade"
	"github.com/jwebster45206/turn-engine/pkg/events"
	"github.com/jwebster45206/turn-engine/pkg/narrative"
	"github.com/jwebster45206/turn-engine/pkg/queue"
	"github.com/jwebster45206/turn-engine/pkg/reducer"
	"github.com/jwebster45206/turn-engine/pkg/resolver"
	"github.com/jwebster45206/turn-engine/pkg/skillcheck"
)

const narrateTimeout = 30 * time.Second

// Processor handles the core turn processing logic.
// It is used by the worker and by the resolve CLI.
type Processor struct {
	reducer      *reducer.Reducer
	trigger      *cascade.Trigger
	narrator     services.Narrator
	broadcaster  *svcevents.Broadcaster
	narratorName string
	historyLimit int
	logger       *slog.Logger
}

type Option func(*Processor)

// WithNarrator enables prose. Without one, turns complete with no narration.
func WithNarrator(n services.Narrator) Option {
	return func(p *Processor) { p.narrator = n }
}

// WithBroadcaster publishes enrichment.unavailable when a cascade degrades
func WithBroadcaster(b *svcevents.Broadcaster) Option {
	return func(p *Processor) { p.broadcaster = b }
}

func WithNarratorName(name string) Option {
	return func(p *Processor) { p.narratorName = name }
}

func WithHistoryLimit(limit int) Option {
	return func(p *Processor) { p.historyLimit = limit }
}

// NewProcessor creates a processor around trigger
func NewProcessor(trigger *cascade.Trigger, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		reducer:      reducer.New(logger),
		trigger:      trigger,
		historyLimit: narrative.DefaultHistoryLimit,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process resolves one turn request. Missing enrichment and narrator failures
// degrade the result; only invalid input and plumbing failures return an error.
func (p *Processor) Process(ctx context.Context, req *queue.TurnRequest) (*queue.TurnResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid turn request: %w", err)
	}
	log := logger.WithGame(p.logger, req.GameID.String(), req.RequestID)

	// Resolution is deterministic for a given snapshot, action, ambient and seed
	r := resolver.New(skillcheck.NewSeededRoller(req.Seed), log)
	evs := r.Resolve(req.State, req.Action, req.Ambient)

	next, err := p.reducer.Apply(req.State, evs)
	if err != nil {
		return nil, fmt.Errorf("failed to apply turn events: %w", err)
	}
	next.Turn++

	enriched := p.trigger.RunCascadeForAction(ctx, next, req.Action, req.Ambient)
	if enriched == nil {
		if roots := p.trigger.DetermineRelevantModules(req.Action); len(roots) > 0 {
			log.Warn("Turn continues without enrichment", "roots", roots)
			if p.broadcaster != nil {
				if err := p.broadcaster.PublishEnrichmentUnavailable(ctx, req.GameID, req.RequestID, roots); err != nil {
					log.Error("Failed to publish enrichment unavailable event", "error", err)
				}
			}
		}
	}

	result := &queue.TurnResult{
		RequestID:           req.RequestID,
		GameID:              req.GameID,
		State:               next,
		Enrichment:          enriched,
		EnrichmentAvailable: enriched != nil,
	}
	if err := result.SetEvents(evs); err != nil {
		return nil, err
	}

	nc := narrative.Prepare(next, req.Action, evs, enriched)
	result.Narration = p.narrate(ctx, log, nc, req)

	result.CompletedAt = time.Now().UTC()
	log.Debug("Turn processed",
		"turn", next.Turn,
		"events", len(evs),
		"notices", events.Count(evs, events.KindTextNotice),
		"enrichment_available", result.EnrichmentAvailable,
		"narrated", result.Narration != nil)
	return result, nil
}

// narrate asks the narrator for prose. Any failure yields nil.
func (p *Processor) narrate(ctx context.Context, log *slog.Logger, nc narrative.Context, req *queue.TurnRequest) *narrative.Narration {
	if p.narrator == nil {
		return nil
	}

	messages, err := narrative.New().
		WithContext(nc).
		WithNarratorName(p.narratorName).
		WithHistory(req.History).
		WithHistoryLimit(p.historyLimit).
		Build()
	if err != nil {
		log.Error("Failed to build narrator messages", "error", err)
		return nil
	}

	narrateCtx, cancel := context.WithTimeout(ctx, narrateTimeout)
	defer cancel()

	n, err := p.narrator.Narrate(narrateCtx, messages)
	if err != nil {
		if errors.Is(err, services.ErrQuotaExceeded) {
			log.Warn("Narrator quota exceeded, turn completes without prose")
			return nil
		}
		log.Error("Narrator failed, turn completes without prose", "error", err)
		return nil
	}
	return n
}
