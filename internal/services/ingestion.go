package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"alfredoptarigan/research-advisor/internal/logger"
	"alfredoptarigan/research-advisor/internal/models"
	"alfredoptarigan/research-advisor/internal/repositories"
)

const (
	DefaultIngestBatchSize   = 100
	DefaultIngestConcurrency = 5
)

type IngestionOptions struct {
	// Limit caps the number of papers processed; 0 means all pending papers.
	Limit       int
	BatchSize   int
	Concurrency int
	Retry       RetryPolicy
}

// IngestionReport summarises one ingestion pass.
type IngestionReport struct {
	Processed  int
	Successful int
	Failed     int
	Duration   time.Duration
}

func (r *IngestionReport) SuccessRate() float64 {
	if r.Processed == 0 {
		return 0
	}
	return float64(r.Successful) / float64(r.Processed) * 100
}

// PaperIngestor embeds catalogue papers that have no vector yet and indexes
// them in Qdrant.
type PaperIngestor interface {
	Ingest(ctx context.Context, opts IngestionOptions) (*IngestionReport, error)
}

type paperIngestor struct {
	paperRepo repositories.PaperRepository
	gemini    GeminiService
	index     QdrantService
	log       *logger.Logger
}

func NewPaperIngestor(
	paperRepo repositories.PaperRepository,
	gemini GeminiService,
	index QdrantService,
	log *logger.Logger,
) PaperIngestor {
	return &paperIngestor{
		paperRepo: paperRepo,
		gemini:    gemini,
		index:     index,
		log:       log.WithComponent("ingestion"),
	}
}

// Ingest implements PaperIngestor. A paper whose embedding keeps failing is
// counted and skipped; it stays pending for the next pass.
func (p *paperIngestor) Ingest(ctx context.Context, opts IngestionOptions) (*IngestionReport, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultIngestBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultIngestConcurrency
	}

	started := time.Now()
	report := &IngestionReport{}

	var afterID uint64
	for {
		batchSize := opts.BatchSize
		if opts.Limit > 0 {
			remaining := opts.Limit - report.Processed
			if remaining <= 0 {
				break
			}
			if remaining < batchSize {
				batchSize = remaining
			}
		}

		papers, err := p.paperRepo.FindPendingEmbedding(afterID, batchSize)
		if err != nil {
			return report, err
		}
		if len(papers) == 0 {
			break
		}
		afterID = papers[len(papers)-1].ID

		vectors, err := p.embedBatch(ctx, papers, opts)
		if err != nil {
			return report, err
		}

		if err := p.index.UpsertPapers(ctx, vectors); err != nil {
			return report, fmt.Errorf("failed to index batch: %w", err)
		}

		ids := make([]uint64, 0, len(vectors))
		for _, v := range vectors {
			ids = append(ids, v.Paper.ID)
		}
		if err := p.paperRepo.MarkEmbedded(ids, time.Now()); err != nil {
			return report, err
		}

		report.Processed += len(papers)
		report.Successful += len(vectors)
		report.Failed += len(papers) - len(vectors)

		p.log.Info().
			Int("batch", len(papers)).
			Int("embedded", len(vectors)).
			Int("processed_total", report.Processed).
			Msg("batch ingested")
	}

	report.Duration = time.Since(started)
	return report, nil
}

// embedBatch embeds papers with bounded concurrency. Only context errors
// abort the batch; other failures drop the paper.
func (p *paperIngestor) embedBatch(ctx context.Context, papers []models.PaperRecord, opts IngestionOptions) ([]PaperVector, error) {
	embeddings := make([][]float32, len(papers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, paper := range papers {
		g.Go(func() error {
			text := BuildPaperEmbeddingText(paper.Title, paper.Abstract)
			embedding, err := Retry(gctx, opts.Retry, p.log, "paper_embedding", func(ctx context.Context) ([]float32, error) {
				return p.gemini.GenerateEmbedding(ctx, text)
			})
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				p.log.Warn().Err(err).Uint64("paper_id", paper.ID).Msg("failed to embed paper")
				return nil
			}
			embeddings[i] = embedding
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("embedding batch aborted: %w", err)
	}

	vectors := make([]PaperVector, 0, len(papers))
	for i, paper := range papers {
		if embeddings[i] == nil {
			continue
		}
		vectors = append(vectors, PaperVector{Paper: paper, Embedding: embeddings[i]})
	}
	return vectors, nil
}
