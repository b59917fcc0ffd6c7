package services

import (
	"context"
	"errors"
	"time"

	"alfredoptarigan/research-advisor/internal/logger"
	"alfredoptarigan/research-advisor/internal/models"
)

var errNoInterests = errors.New("no interests selected")

// StageObserver is told about every stage the run enters, in order.
type StageObserver func(stage models.PipelineStage)

type runOptions struct {
	observer  StageObserver
	requestID string
}

type RunOption func(*runOptions)

func WithStageObserver(observer StageObserver) RunOption {
	return func(o *runOptions) {
		o.observer = observer
	}
}

func WithRequestID(requestID string) RunOption {
	return func(o *runOptions) {
		o.requestID = requestID
	}
}

// AnalysisOrchestrator runs one CV + interests submission through extraction,
// CV analysis, interest classification and trend lookup. The first failing
// stage aborts the run; a partial report is never returned.
type AnalysisOrchestrator interface {
	RunAnalysis(ctx context.Context, file *models.CVFile, interests []models.Interest, opts ...RunOption) (*models.UnifiedReport, error)
}

type analysisOrchestrator struct {
	extractor         TextExtractor
	classifier        InterestClassifier
	cvAnalysis        CVAnalysisClient
	paperTrend        PaperTrendClient
	extractionTimeout time.Duration
	log               *logger.Logger
}

func NewAnalysisOrchestrator(
	extractor TextExtractor,
	classifier InterestClassifier,
	cvAnalysis CVAnalysisClient,
	paperTrend PaperTrendClient,
	extractionTimeout time.Duration,
	log *logger.Logger,
) AnalysisOrchestrator {
	return &analysisOrchestrator{
		extractor:         extractor,
		classifier:        classifier,
		cvAnalysis:        cvAnalysis,
		paperTrend:        paperTrend,
		extractionTimeout: extractionTimeout,
		log:               log.WithComponent("orchestrator"),
	}
}

// RunAnalysis implements AnalysisOrchestrator. Every error it returns is a
// *PipelineError.
func (o *analysisOrchestrator) RunAnalysis(ctx context.Context, file *models.CVFile, interests []models.Interest, opts ...RunOption) (*models.UnifiedReport, error) {
	options := runOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	log := o.log
	if options.requestID != "" {
		log = log.WithRequestID(options.requestID)
	}

	enter := func(stage models.PipelineStage) {
		if options.observer != nil {
			options.observer(stage)
		}
	}
	fail := func(kind ErrorKind, stage models.PipelineStage, err error) error {
		enter(models.StageFailed)
		pe := newPipelineError(kind, stage, err)
		log.Error().Err(err).
			Str("kind", string(kind)).
			Str("stage", string(stage)).
			Msg("analysis run failed")
		return pe
	}

	// Precondition check: no external call on invalid input
	if err := ValidateAnalysisRequest(file, interests); err != nil {
		return nil, fail(KindInvalidRequest, models.StageIdle, err.Err)
	}

	runStart := time.Now()

	// Step 1: Extract text
	enter(models.StageExtracting)
	if err := ctx.Err(); err != nil {
		return nil, fail(KindExtractionFailed, models.StageExtracting, err)
	}
	started := time.Now()
	text, err := o.extract(ctx, file)
	if err != nil {
		return nil, fail(KindExtractionFailed, models.StageExtracting, err)
	}
	log.Debug().
		Str("stage", string(models.StageExtracting)).
		Dur("duration", time.Since(started)).
		Int("chars", len(text)).
		Msg("stage completed")

	// Step 2: Analyze CV with the raw interest list
	enter(models.StageAnalyzingCV)
	if err := ctx.Err(); err != nil {
		return nil, fail(KindAnalysisServiceFailed, models.StageAnalyzingCV, err)
	}
	started = time.Now()
	cvResult, err := o.cvAnalysis.Analyze(ctx, text, interests)
	if err != nil {
		return nil, fail(KindAnalysisServiceFailed, models.StageAnalyzingCV, err)
	}
	log.Debug().
		Str("stage", string(models.StageAnalyzingCV)).
		Dur("duration", time.Since(started)).
		Int("professors", len(cvResult.Professors)).
		Msg("stage completed")

	// Step 3: Classify interests
	enter(models.StageClassifyingInterests)
	classified := o.classifier.Classify(interests)
	log.Debug().
		Str("stage", string(models.StageClassifyingInterests)).
		Str("main_interest", string(classified.Main)).
		Int("detailed", len(classified.Detailed)).
		Msg("stage completed")

	// Step 4: Fetch paper trend for the classified split
	enter(models.StageFetchingTrend)
	if err := ctx.Err(); err != nil {
		return nil, fail(KindTrendServiceFailed, models.StageFetchingTrend, err)
	}
	started = time.Now()
	trend, err := o.paperTrend.GetTrend(ctx, classified.Main, classified.Detailed, TrendLimit)
	if err != nil {
		return nil, fail(KindTrendServiceFailed, models.StageFetchingTrend, err)
	}
	log.Debug().
		Str("stage", string(models.StageFetchingTrend)).
		Dur("duration", time.Since(started)).
		Int("papers", len(trend.Papers)).
		Msg("stage completed")

	// Step 5: Merge
	enter(models.StageMerging)
	report := models.NewUnifiedReport(cvResult, trend)

	enter(models.StageSucceeded)
	log.Info().
		Dur("duration", time.Since(runStart)).
		Int("papers", len(report.Papers)).
		Msg("analysis run succeeded")

	return report, nil
}

// ValidateAnalysisRequest reports a missing file or an empty interest list
// as an InvalidRequest failure. A present but empty file is accepted.
func ValidateAnalysisRequest(file *models.CVFile, interests []models.Interest) *PipelineError {
	if file == nil {
		return newPipelineError(KindInvalidRequest, models.StageIdle, errNoFile)
	}
	if len(interests) == 0 {
		return newPipelineError(KindInvalidRequest, models.StageIdle, errNoInterests)
	}
	return nil
}

func (o *analysisOrchestrator) extract(ctx context.Context, file *models.CVFile) (string, error) {
	if o.extractionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.extractionTimeout)
		defer cancel()
	}
	return o.extractor.Extract(ctx, file)
}
