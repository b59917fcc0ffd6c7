package services

import (
	"context"
	"errors"
	"sync"

	"alfredoptarigan/research-advisor/internal/models"
)

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, file *models.CVFile) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeCVAnalysis struct {
	result       *models.CVAnalysisResult
	err          error
	calls        int
	gotText      string
	gotInterests []models.Interest
}

func (f *fakeCVAnalysis) Analyze(ctx context.Context, text string, interests []models.Interest) (*models.CVAnalysisResult, error) {
	f.calls++
	f.gotText = text
	f.gotInterests = append([]models.Interest(nil), interests...)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakePaperTrend struct {
	result      *models.PaperTrendResult
	err         error
	calls       int
	gotMain     models.Interest
	gotDetailed []models.Interest
	gotLimit    int
}

func (f *fakePaperTrend) GetTrend(ctx context.Context, mainInterest models.Interest, detailed []models.Interest, limit int) (*models.PaperTrendResult, error) {
	f.calls++
	f.gotMain = mainInterest
	f.gotDetailed = append([]models.Interest(nil), detailed...)
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeGemini is safe for concurrent use; ingestion embeds in parallel.
type fakeGemini struct {
	mu         sync.Mutex
	embedding  []float32
	failEmbed  map[string]bool
	text       string
	json       string
	err        error
	embedCalls int
	textCalls  int
	prompts    []string
}

func (f *fakeGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedCalls++
	if f.failEmbed[text] {
		return nil, errors.New("embedding quota exceeded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.embedding, nil
}

func (f *fakeGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textCalls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeGemini) GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textCalls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.json, nil
}

type fakeQdrant struct {
	mu        sync.Mutex
	papers    []models.Paper
	searchErr error
	upsertErr error
	gotLimit  int
	upserted  []PaperVector
}

func (f *fakeQdrant) InitCollection(ctx context.Context) error {
	return nil
}

func (f *fakeQdrant) UpsertPapers(ctx context.Context, papers []PaperVector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, papers...)
	return nil
}

func (f *fakeQdrant) SearchPapers(ctx context.Context, queryEmbedding []float32, limit int) ([]models.Paper, error) {
	f.gotLimit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.papers, nil
}

type orchestratorFunc func(ctx context.Context, file *models.CVFile, interests []models.Interest, opts ...RunOption) (*models.UnifiedReport, error)

func (f orchestratorFunc) RunAnalysis(ctx context.Context, file *models.CVFile, interests []models.Interest, opts ...RunOption) (*models.UnifiedReport, error) {
	return f(ctx, file, interests, opts...)
}

func sampleCVResult() *models.CVAnalysisResult {
	return &models.CVAnalysisResult{
		Trend: "Vision transformers dominate recent benchmarks.",
		Professors: []models.Professor{
			{Name: "Kim Jiwon", Affiliation: "KAIST", ResearchAreas: []string{"Computer Vision"}},
		},
		Feedback:    "Strong publication record.",
		Improvement: "Add open-source contributions.",
		Project:     "Efficient ViT distillation.",
	}
}

func sampleTrendResult() *models.PaperTrendResult {
	return &models.PaperTrendResult{
		TrendSummary: "Research is moving toward foundation models.",
		Papers: []models.Paper{
			{Title: "An Image is Worth 16x16 Words", Year: 2021},
			{Title: "Segment Anything", Year: 2023},
		},
	}
}

func samplePDF() *models.CVFile {
	return &models.CVFile{Name: "cv.pdf", Data: []byte("%PDF-1.4 fake")}
}
