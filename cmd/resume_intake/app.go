package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-intake/internal/config"
	"github.com/jonathan/resume-intake/internal/consolidation"
	"github.com/jonathan/resume-intake/internal/extraction"
	"github.com/jonathan/resume-intake/internal/ingestion"
	"github.com/jonathan/resume-intake/internal/llm"
	"github.com/jonathan/resume-intake/internal/logging"
	"github.com/jonathan/resume-intake/internal/observability"
	"github.com/jonathan/resume-intake/internal/pipeline"
	"github.com/jonathan/resume-intake/internal/prompts"
	"github.com/jonathan/resume-intake/internal/store"
)

// addGlobalFlags registers the flags shared by every command
func addGlobalFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "Path to a JSON or YAML config file (values can be overridden by other flags)")
	f.BoolP("verbose", "v", false, "Print detailed progress and debug logs")
	f.String("store", "", "Document store driver: memory, postgres, redis or minio")
	f.String("db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	f.String("api-key", "", "LLM API key (defaults to GEMINI_API_KEY or OPENAI_API_KEY env var)")
	f.String("provider", "", "LLM provider: gemini or openai")
	f.String("user-id", "", "Owner of the canonical resume record")
}

// resolveConfig layers config file, environment, flags and defaults, in
// increasing order of priority except for defaults which only fill gaps.
func resolveConfig(cmd *cobra.Command, getenv func(string) string) (config.Config, error) {
	flags := cmd.Flags()

	var cfg config.Config
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	cfg.ApplyEnv(getenv)

	for name, dst := range map[string]*string{
		"store":    &cfg.Store.Driver,
		"db-url":   &cfg.Store.DatabaseURL,
		"api-key":  &cfg.LLM.APIKey,
		"provider": &cfg.LLM.Provider,
		"user-id":  &cfg.UserID,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if !flags.Changed("api-key") {
		cfg.ApplyAPIKeyEnv(getenv)
	}
	if cfg.Verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// app holds the wired components one command invocation needs
type app struct {
	cfg         config.Config
	logger      zerolog.Logger
	store       store.Store
	client      llm.Client
	coordinator *pipeline.Coordinator
	printer     *observability.Printer
	out         io.Writer
}

// newApp opens the configured store and, when withLLM is set, the LLM client
func newApp(ctx context.Context, cfg config.Config, withLLM bool) (*app, error) {
	logger := logging.Init(cfg.Logging)

	s, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	var client llm.Client
	if withLLM {
		client, err = llm.NewClient(ctx, cfg.LLM.ToLLM(), cfg.LLM.APIKey)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
	}
	return assemble(cfg, logger, s, client, os.Stdout), nil
}

// assemble wires the pipeline around an already-open store and client.
// client may be nil for commands that only read the store.
func assemble(cfg config.Config, logger zerolog.Logger, s store.Store, client llm.Client, out io.Writer) *app {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		store:   s,
		client:  client,
		printer: observability.NewPrinter(out),
		out:     out,
	}
	if client == nil {
		return a
	}

	set := prompts.MustResume()
	extract := llm.NewCompletionClient(client, llm.TierStandard, logger)
	repairer := extract.WithTier(llm.TierLite)
	merge := extract.WithTier(llm.TierAdvanced)

	worker := extraction.NewWorker(s, extract,
		extraction.Prompts{Extraction: set.Extraction, Repair: set.Repair, Version: set.Version},
		extraction.WithLogger(logger),
		extraction.WithRepairCompleter(repairer),
	)
	engine := consolidation.NewEngine(s, merge,
		consolidation.Prompts{Consolidation: set.Consolidation, Repair: set.Repair, Version: set.Version},
		consolidation.WithLogger(logger),
		consolidation.WithUserID(cfg.UserID),
		consolidation.WithRepairCompleter(repairer),
	)
	a.coordinator = pipeline.NewCoordinator(worker, engine, pipeline.WithLogger(logger))
	return a
}

// Close releases the LLM client and the store
func (a *app) Close() {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("llm.close.error")
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("store.close.error")
	}
}

// ingestFiles stores each sourceId=path pair before a command runs
func (a *app) ingestFiles(ctx context.Context, files map[string]string) error {
	for sourceID, path := range files {
		if _, ok := a.cfg.Mapping(sourceID); !ok {
			return fmt.Errorf("unknown source %q", sourceID)
		}
		meta, err := ingestion.IngestFile(ctx, a.store, sourceID, path)
		if err != nil {
			return err
		}
		if a.cfg.Verbose {
			_, _ = fmt.Fprintf(a.out, "Ingested %s (%s, %d characters)\n", sourceID, meta.Format, meta.Characters)
		}
	}
	return nil
}

// withApp resolves config, builds the app and runs fn with it
func withApp(cmd *cobra.Command, withLLM bool, fn func(ctx context.Context, a *app) error) error {
	cfg, err := resolveConfig(cmd, os.Getenv)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cfg, withLLM)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
