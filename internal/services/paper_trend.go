package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"alfredoptarigan/research-advisor/internal/logger"
	"alfredoptarigan/research-advisor/internal/models"
)

// TrendLimit is the paper count requested by the analysis pipeline.
const TrendLimit = 10

// PaperTrendClient fetches a trend narrative and at most limit papers for the
// classified interests.
type PaperTrendClient interface {
	GetTrend(ctx context.Context, mainInterest models.Interest, detailed []models.Interest, limit int) (*models.PaperTrendResult, error)
}

type paperTrendRequest struct {
	MainInterest      models.Interest   `json:"main_interest"`
	DetailedInterests []models.Interest `json:"detailed_interests"`
	Limit             int               `json:"limit"`
}

type paperTrendPayload struct {
	TrendSummary *string        `json:"trend_summary" validate:"required"`
	Papers       []models.Paper `json:"papers" validate:"required"`
}

func (p *paperTrendPayload) toResult(limit int) *models.PaperTrendResult {
	papers := p.Papers
	if limit > 0 && len(papers) > limit {
		papers = papers[:limit]
	}
	return &models.PaperTrendResult{
		TrendSummary: *p.TrendSummary,
		Papers:       papers,
	}
}

type httpPaperTrendClient struct {
	endpoint   string
	httpClient *http.Client
	log        *logger.Logger
}

// NewHTTPPaperTrendClient talks to a remote trend service at baseURL.
func NewHTTPPaperTrendClient(baseURL string, timeout time.Duration, log *logger.Logger) PaperTrendClient {
	return &httpPaperTrendClient{
		endpoint:   strings.TrimRight(baseURL, "/") + "/paper-trend",
		httpClient: newHTTPClient(timeout),
		log:        log.WithComponent("paper_trend_http"),
	}
}

// GetTrend implements PaperTrendClient.
func (c *httpPaperTrendClient) GetTrend(ctx context.Context, mainInterest models.Interest, detailed []models.Interest, limit int) (*models.PaperTrendResult, error) {
	if detailed == nil {
		detailed = []models.Interest{}
	}

	c.log.Debug().
		Str("main_interest", string(mainInterest)).
		Int("detailed", len(detailed)).
		Int("limit", limit).
		Msg("calling paper trend service")

	var payload paperTrendPayload
	req := paperTrendRequest{MainInterest: mainInterest, DetailedInterests: detailed, Limit: limit}
	if err := postJSON(ctx, c.httpClient, c.endpoint, req, &payload); err != nil {
		return nil, err
	}

	return payload.toResult(limit), nil
}

type qdrantPaperTrendClient struct {
	gemini        GeminiService
	index         QdrantService
	promptBuilder *PromptBuilder
	timeout       time.Duration
	log           *logger.Logger
}

// NewQdrantPaperTrendClient answers trend lookups from the local paper index:
// the interests are embedded, the nearest papers retrieved, and Gemini writes
// the narrative over them.
func NewQdrantPaperTrendClient(gemini GeminiService, index QdrantService, timeout time.Duration, log *logger.Logger) PaperTrendClient {
	return &qdrantPaperTrendClient{
		gemini:        gemini,
		index:         index,
		promptBuilder: NewPromptBuilder(),
		timeout:       timeout,
		log:           log.WithComponent("paper_trend_qdrant"),
	}
}

// GetTrend implements PaperTrendClient.
func (c *qdrantPaperTrendClient) GetTrend(ctx context.Context, mainInterest models.Interest, detailed []models.Interest, limit int) (*models.PaperTrendResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	query := c.promptBuilder.BuildTrendQuery(mainInterest, detailed)
	embedding, err := c.gemini.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed trend query: %w", err)
	}

	papers, err := c.index.SearchPapers(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search papers: %w", err)
	}
	if len(papers) > limit {
		papers = papers[:limit]
	}

	c.log.Debug().Str("query", query).Int("papers", len(papers)).Msg("paper index searched")

	if len(papers) == 0 {
		return &models.PaperTrendResult{Papers: []models.Paper{}}, nil
	}

	prompt := c.promptBuilder.BuildTrendSummaryPrompt(mainInterest, detailed, papers)
	summary, err := c.gemini.GenerateText(ctx, prompt, 0.5)
	if err != nil {
		return nil, fmt.Errorf("failed to generate trend summary: %w", err)
	}

	return &models.PaperTrendResult{
		TrendSummary: strings.TrimSpace(summary),
		Papers:       papers,
	}, nil
}

type retryingPaperTrendClient struct {
	next   PaperTrendClient
	policy RetryPolicy
	log    *logger.Logger
}

// WithPaperTrendRetry decorates next with a bounded retry policy.
func WithPaperTrendRetry(next PaperTrendClient, policy RetryPolicy, log *logger.Logger) PaperTrendClient {
	if policy.attempts() <= 1 {
		return next
	}
	return &retryingPaperTrendClient{next: next, policy: policy, log: log}
}

// GetTrend implements PaperTrendClient.
func (c *retryingPaperTrendClient) GetTrend(ctx context.Context, mainInterest models.Interest, detailed []models.Interest, limit int) (*models.PaperTrendResult, error) {
	return Retry(ctx, c.policy, c.log, "paper_trend", func(ctx context.Context) (*models.PaperTrendResult, error) {
		return c.next.GetTrend(ctx, mainInterest, detailed, limit)
	})
}
