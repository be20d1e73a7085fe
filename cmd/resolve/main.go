// Command resolve runs one turn from a JSON file and prints the result.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jwebster45206/turn-engine/internal/config"
	"github.com/jwebster45206/turn-engine/internal/logger"
	"github.com/jwebster45206/turn-engine/internal/services"
	"github.com/jwebster45206/turn-engine/internal/telemetry"
	"github.com/jwebster45206/turn-engine/internal/turn"
	"github.com/jwebster45206/turn-engine/pkg/cascade"
	"github.com/jwebster45206/turn-engine/pkg/enrichment"
	"github.com/jwebster45206/turn-engine/pkg/enrichment/modules"
	"github.com/jwebster45206/turn-engine/pkg/queue"
)

func main() {
	catalogPath := flag.String("catalog", "", "catalog JSON with places and reference entries")
	narratorName := flag.String("narrator", "none", "narrator to use: none, mock or anthropic")
	mergeMode := flag.String("mode", string(cascade.MergeConcurrent), "cascade merge mode: concurrent or sequential")
	width := flag.Int("width", 80, "output width")
	asJSON := flag.Bool("json", false, "print the turn result as JSON")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <turn.json>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := logger.New(os.Stderr, "", level)

	if err := run(log, flag.Arg(0), *catalogPath, *narratorName, *mergeMode, *width, *asJSON); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

func run(log *slog.Logger, turnPath, catalogPath, narratorName, mergeMode string, width int, asJSON bool) error {
	ctx := context.Background()

	req, err := queue.LoadTurnFile(turnPath)
	if err != nil {
		return err
	}
	catalog, err := modules.LoadCatalog(catalogPath)
	if err != nil {
		return err
	}
	mode, err := cascade.ParseMergeMode(mergeMode)
	if err != nil {
		return err
	}

	narrator, cfg, err := selectNarrator(narratorName, log)
	if err != nil {
		return err
	}
	if cfg != nil {
		shutdown, err := telemetry.Setup(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	opts := catalog.Options()
	opts.Logger = log
	chain := enrichment.NewChainManager(log)
	modules.Register(chain, opts)

	popts := []turn.Option{}
	if narrator != nil {
		popts = append(popts, turn.WithNarrator(narrator))
		if cfg != nil {
			popts = append(popts, turn.WithNarratorName(cfg.NarratorName), turn.WithHistoryLimit(cfg.HistoryLimit))
		}
	}
	p := turn.NewProcessor(cascade.New(chain, log, cascade.WithMergeMode(mode)), log, popts...)

	res, err := p.Process(ctx, req)
	if err != nil {
		return err
	}

	if asJSON {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	out, err := render(req, res, width)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// selectNarrator builds the requested narrator. The anthropic narrator reads
// its key and model from the environment.
func selectNarrator(name string, log *slog.Logger) (services.Narrator, *config.Config, error) {
	switch name {
	case "", "none":
		return nil, nil, nil
	case config.ProviderMock:
		return services.NewMockNarrator(), nil, nil
	case config.ProviderAnthropic:
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		if cfg.AnthropicAPIKey == "" {
			return nil, nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic narrator")
		}
		return services.NewAnthropicNarrator(cfg.AnthropicAPIKey, cfg.ModelName, log), cfg, nil
	}
	return nil, nil, fmt.Errorf("unknown narrator %q", name)
}
