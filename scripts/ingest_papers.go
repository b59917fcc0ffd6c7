package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"alfredoptarigan/research-advisor/internal/config"
	"alfredoptarigan/research-advisor/internal/logger"
	"alfredoptarigan/research-advisor/internal/repositories"
	"alfredoptarigan/research-advisor/internal/services"
)

var (
	ingestLimit       int
	ingestBatchSize   int
	ingestConcurrency int
	ingestStatsOnly   bool
)

var rootCmd = &cobra.Command{
	Use:   "ingest_papers",
	Short: "Embed crawled papers and index them in Qdrant",
	Long:  "Loads papers without embeddings from the Postgres catalogue, embeds title and abstract with Gemini, upserts the vectors into Qdrant and marks the rows as embedded.",
	RunE:  runIngest,
}

func init() {
	rootCmd.Flags().IntVarP(&ingestLimit, "limit", "l", 0, "Maximum number of papers to process (0 = all pending)")
	rootCmd.Flags().IntVarP(&ingestBatchSize, "batch-size", "b", services.DefaultIngestBatchSize, "Papers fetched and indexed per batch")
	rootCmd.Flags().IntVarP(&ingestConcurrency, "concurrency", "c", services.DefaultIngestConcurrency, "Concurrent embedding requests")
	rootCmd.Flags().BoolVar(&ingestStatsOnly, "stats", false, "Print embedding statistics and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runIngest(cmd *cobra.Command, _ []string) error {
	// Load configuration
	cfg := config.Load()
	log := logger.New("ingest-papers", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return err
	}
	paperRepo := repositories.NewPaperRepository(db)

	if ingestStatsOnly {
		return printStats(paperRepo)
	}

	if cfg.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}

	// Initialize services
	geminiService, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:            cfg.Gemini.APIKey,
		Model:             cfg.Gemini.Model,
		EmbedModel:        cfg.Gemini.EmbedModel,
		RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
	}, log)
	if err != nil {
		return err
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		cfg.Qdrant.VectorSize,
		log,
	)
	if err != nil {
		return err
	}
	if err := qdrantService.InitCollection(ctx); err != nil {
		return err
	}

	ingestor := services.NewPaperIngestor(paperRepo, geminiService, qdrantService, log)

	log.Info().
		Int("limit", ingestLimit).
		Int("batch_size", ingestBatchSize).
		Int("concurrency", ingestConcurrency).
		Msg("starting paper ingestion")

	report, err := ingestor.Ingest(ctx, services.IngestionOptions{
		Limit:       ingestLimit,
		BatchSize:   ingestBatchSize,
		Concurrency: ingestConcurrency,
		Retry: services.RetryPolicy{
			MaxAttempts:  3,
			InitialDelay: 2 * time.Second,
			MaxDelay:     8 * time.Second,
		},
	})
	if report != nil {
		printReport(report)
	}
	if err != nil {
		return err
	}

	return printStats(paperRepo)
}

func printReport(report *services.IngestionReport) {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Ingestion Summary:")
	fmt.Printf("   Processed:    %d papers\n", report.Processed)
	fmt.Printf("   Successful:   %d papers\n", report.Successful)
	fmt.Printf("   Failed:       %d papers\n", report.Failed)
	fmt.Printf("   Success rate: %.1f%%\n", report.SuccessRate())
	fmt.Printf("   Duration:     %s\n", report.Duration.Round(time.Second))
	fmt.Println(strings.Repeat("=", 60))
}

func printStats(paperRepo repositories.PaperRepository) error {
	stats, err := paperRepo.Stats()
	if err != nil {
		return err
	}

	rate := 0.0
	if stats.Total > 0 {
		rate = float64(stats.Embedded) / float64(stats.Total) * 100
	}

	fmt.Println("Embedding Statistics:")
	fmt.Printf("   Total papers:    %d\n", stats.Total)
	fmt.Printf("   With embeddings: %d\n", stats.Embedded)
	fmt.Printf("   Pending:         %d\n", stats.Pending)
	fmt.Printf("   Coverage:        %.1f%%\n", rate)
	return nil
}
