package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	embeddingrepo "github.com/elguarir/gitex-assistant/internal/repository/embedding"
	exhibitorrepo "github.com/elguarir/gitex-assistant/internal/repository/exhibitor"
	openaitransport "github.com/elguarir/gitex-assistant/internal/transport/openai"
	indexuc "github.com/elguarir/gitex-assistant/internal/usecase/index"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Embed exhibitors missing from the vector index",
	Long: `Reconcile compares the exhibitor store against the embedding index
and embeds whatever is missing. The run is idempotent: rerunning after
a failure recomputes the same missing set and writes nothing twice.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := connectStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	embedder := openaitransport.NewEmbedder(&openaitransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	svc := indexuc.New(
		exhibitorrepo.New(store),
		embeddingrepo.New(store, cfg.Embedding.Dimensions),
		embedder,
		cfg.Embedding.MaxBatchSize,
		logger,
	)

	report, err := svc.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	logger.Info("Reconcile finished",
		zap.Int("total", report.Total),
		zap.Int("missing", report.Missing),
		zap.Int("embedded", report.Embedded),
	)
	fmt.Printf("Exhibitors: %d, missing embeddings: %d, embedded this run: %d\n",
		report.Total, report.Missing, report.Embedded)
	return nil
}
