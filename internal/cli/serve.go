package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mindline/internal/config"
	"mindline/internal/logger"
	"mindline/internal/observability"
	"mindline/internal/server"
	"mindline/pkg/chat"
	"mindline/pkg/directory"
	"mindline/pkg/session"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Mindline API server",
	Long: `Run the Mindline API server in the foreground.
Starts the session janitor, loads the services directory, and serves the
chat API until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, lg, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer lg.Close()

	if cfg.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required (set OPENAI_API_KEY or configure ai.api_key)")
	}

	observability.EnsureRegistered()

	store := session.NewStore()
	janitor := session.NewJanitor(store, session.JanitorConfig{
		TTL:             cfg.Session.TTL(),
		InactivityLimit: cfg.Session.InactivityLimit(),
		MaxSessions:     cfg.Session.MaxSessions,
		Interval:        cfg.Session.CleanupInterval(),
	})
	if err := janitor.Start(); err != nil {
		return fmt.Errorf("failed to start session janitor: %w", err)
	}
	defer func() {
		if err := janitor.Stop(); err != nil {
			log.Warn().Err(err).Msg("Janitor stop failed")
		}
	}()

	embedKey := cfg.Directory.APIKey
	if embedKey == "" {
		embedKey = cfg.AI.APIKey
	}
	embedder := directory.NewOpenAIEmbedder(embedKey, cfg.Directory.EmbeddingModel)

	dirStore, err := directory.Open(cfg.Directory.DBPath, embedder.Dimension())
	if err != nil {
		return fmt.Errorf("failed to open directory store: %w", err)
	}
	defer dirStore.Close()

	retriever := directory.NewRetriever(dirStore, embedder, cfg.Directory.TopK)

	watcher, err := startDatasetSync(cmd.Context(), cfg, dirStore, embedder)
	if err != nil {
		return err
	}
	if watcher != nil {
		defer watcher.Stop()
	}

	provider, err := buildProvider(cfg.AI)
	if err != nil {
		return err
	}

	orchestrator := chat.NewOrchestrator(store, retriever, provider, chat.Config{
		Model:          cfg.AI.Model,
		Temperature:    cfg.AI.Temperature,
		MaxTokens:      cfg.AI.MaxTokens,
		RequestTimeout: time.Duration(cfg.AI.RequestTimeoutSeconds) * time.Second,
	})

	srv := server.New(server.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		CORSOrigins: cfg.Server.CORSOrigins,
		Debug:       cfg.Logging.Level == "debug",
	}, store, orchestrator, server.StatsConfig{
		MaxSessions:       cfg.Session.MaxSessions,
		TTLHours:          cfg.Session.TTLHours,
		InactivityMinutes: cfg.Session.InactivityMinutes,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// loadConfigAndLogger loads configuration and installs the global logger,
// applying the --log-level flag on top of the file and environment.
func loadConfigAndLogger() (*config.Config, *logger.Logger, error) {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	lg, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
		File:   cfg.Logging.File,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, lg, nil
}

// buildProvider constructs the configured completion provider.
func buildProvider(ai config.AIConfig) (chat.CompletionProvider, error) {
	switch ai.Provider {
	case "openai":
		return chat.NewOpenAIProvider(ai.APIKey), nil
	case "anthropic":
		return chat.NewAnthropicProvider(ai.APIKey), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", ai.Provider)
	}
}

// startDatasetSync runs an initial ingest of the configured dataset and
// keeps the directory store current as the file changes on disk. Returns a
// nil watcher when no dataset is configured.
func startDatasetSync(ctx context.Context, cfg *config.Config, dirStore *directory.Store, embedder directory.EmbeddingProvider) (*directory.DatasetWatcher, error) {
	if cfg.Directory.DatasetPath == "" {
		return nil, nil
	}

	indexer := directory.NewIndexer(dirStore, embedder)
	ingest := func() {
		n, err := indexer.IndexFile(ctx, cfg.Directory.DatasetPath)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.Directory.DatasetPath).Msg("Dataset ingest failed")
			return
		}
		log.Info().Int("records", n).Str("path", cfg.Directory.DatasetPath).Msg("Dataset ingested")
	}
	ingest()

	watcher, err := directory.NewDatasetWatcher(log.Logger, ingest)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset watcher: %w", err)
	}
	if err := watcher.Watch(cfg.Directory.DatasetPath); err != nil {
		watcher.Stop()
		return nil, fmt.Errorf("failed to watch dataset: %w", err)
	}
	return watcher, nil
}
