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

// CVAnalysisClient sends extracted CV text and the raw interest list to the
// analysis capability. One outbound call per invocation, no caching.
type CVAnalysisClient interface {
	Analyze(ctx context.Context, text string, interests []models.Interest) (*models.CVAnalysisResult, error)
}

type cvAnalysisRequest struct {
	Text      string            `json:"text"`
	Interests []models.Interest `json:"interests"`
}

// cvAnalysisPayload uses pointers so a missing field can be told apart from
// an empty one.
type cvAnalysisPayload struct {
	Trend       *string            `json:"trend" validate:"required"`
	Professors  []models.Professor `json:"professors" validate:"required"`
	Feedback    *string            `json:"feedback" validate:"required"`
	Improvement *string            `json:"improvement" validate:"required"`
	Project     *string            `json:"project" validate:"required"`
}

func (p *cvAnalysisPayload) toResult() *models.CVAnalysisResult {
	return &models.CVAnalysisResult{
		Trend:       *p.Trend,
		Professors:  p.Professors,
		Feedback:    *p.Feedback,
		Improvement: *p.Improvement,
		Project:     *p.Project,
	}
}

type httpCVAnalysisClient struct {
	endpoint   string
	httpClient *http.Client
	log        *logger.Logger
}

// NewHTTPCVAnalysisClient talks to a remote analysis service at baseURL.
func NewHTTPCVAnalysisClient(baseURL string, timeout time.Duration, log *logger.Logger) CVAnalysisClient {
	return &httpCVAnalysisClient{
		endpoint:   strings.TrimRight(baseURL, "/") + "/analyze-cv",
		httpClient: newHTTPClient(timeout),
		log:        log.WithComponent("cv_analysis_http"),
	}
}

// Analyze implements CVAnalysisClient.
func (c *httpCVAnalysisClient) Analyze(ctx context.Context, text string, interests []models.Interest) (*models.CVAnalysisResult, error) {
	c.log.Debug().
		Int("text_chars", len(text)).
		Int("interests", len(interests)).
		Msg("calling cv analysis service")

	var payload cvAnalysisPayload
	if err := postJSON(ctx, c.httpClient, c.endpoint, cvAnalysisRequest{Text: text, Interests: interests}, &payload); err != nil {
		return nil, err
	}

	return payload.toResult(), nil
}

type geminiCVAnalysisClient struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	timeout       time.Duration
	log           *logger.Logger
}

// NewGeminiCVAnalysisClient produces the analysis bundle with Gemini directly.
func NewGeminiCVAnalysisClient(gemini GeminiService, timeout time.Duration, log *logger.Logger) CVAnalysisClient {
	return &geminiCVAnalysisClient{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		timeout:       timeout,
		log:           log.WithComponent("cv_analysis_gemini"),
	}
}

// Analyze implements CVAnalysisClient.
func (c *geminiCVAnalysisClient) Analyze(ctx context.Context, text string, interests []models.Interest) (*models.CVAnalysisResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	prompt := c.promptBuilder.BuildCVAnalysisPrompt(text, interests)
	c.log.Debug().Int("prompt_chars", len(prompt)).Msg("cv analysis prompt built")

	response, err := c.gemini.GenerateJSON(ctx, prompt, 0.3)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CV analysis: %w", err)
	}

	var payload cvAnalysisPayload
	if err := decodeValidated([]byte(response), &payload); err != nil {
		return nil, err
	}

	return payload.toResult(), nil
}

type retryingCVAnalysisClient struct {
	next   CVAnalysisClient
	policy RetryPolicy
	log    *logger.Logger
}

// WithCVAnalysisRetry decorates next with a bounded retry policy.
func WithCVAnalysisRetry(next CVAnalysisClient, policy RetryPolicy, log *logger.Logger) CVAnalysisClient {
	if policy.attempts() <= 1 {
		return next
	}
	return &retryingCVAnalysisClient{next: next, policy: policy, log: log}
}

// Analyze implements CVAnalysisClient.
func (c *retryingCVAnalysisClient) Analyze(ctx context.Context, text string, interests []models.Interest) (*models.CVAnalysisResult, error) {
	return Retry(ctx, c.policy, c.log, "cv_analysis", func(ctx context.Context) (*models.CVAnalysisResult, error) {
		return c.next.Analyze(ctx, text, interests)
	})
}
