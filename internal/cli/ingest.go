package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mindline/pkg/directory"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dataset.json]",
	Short: "Load a services dataset into the directory store",
	Long: `Load a JSON dataset of mental health services into the directory store.
Each record is validated, embedded, and upserted; unchanged records are
skipped. With no argument the configured dataset path is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, lg, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer lg.Close()

	datasetPath := cfg.Directory.DatasetPath
	if len(args) > 0 {
		datasetPath = args[0]
	}
	if datasetPath == "" {
		return fmt.Errorf("no dataset path given and directory.dataset_path is not configured")
	}

	embedKey := cfg.Directory.APIKey
	if embedKey == "" {
		embedKey = cfg.AI.APIKey
	}
	if embedKey == "" {
		return fmt.Errorf("an OpenAI API key is required for embeddings (set OPENAI_API_KEY)")
	}
	embedder := directory.NewOpenAIEmbedder(embedKey, cfg.Directory.EmbeddingModel)

	store, err := directory.Open(cfg.Directory.DBPath, embedder.Dimension())
	if err != nil {
		return fmt.Errorf("failed to open directory store: %w", err)
	}
	defer store.Close()

	indexer := directory.NewIndexer(store, embedder)
	n, err := indexer.IndexFile(cmd.Context(), datasetPath)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d records from %s\n", n, datasetPath)
	return nil
}
