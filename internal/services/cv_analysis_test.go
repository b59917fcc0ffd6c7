package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/research-advisor/internal/logger"
	"alfredoptarigan/research-advisor/internal/models"
)

const cvAnalysisBody = `{
  "trend": "Vision transformers dominate.",
  "professors": [{"name": "Kim Jiwon", "affiliation": "KAIST", "research_areas": ["Computer Vision"]}],
  "feedback": "Strong.",
  "improvement": "More open source.",
  "project": "ViT distillation."
}`

func TestHTTPCVAnalysisClient_Analyze(t *testing.T) {
	var received cvAnalysisRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/analyze-cv", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(cvAnalysisBody))
	}))
	defer server.Close()

	client := NewHTTPCVAnalysisClient(server.URL+"/", 5*time.Second, logger.Nop())
	result, err := client.Analyze(context.Background(), "cv text", interests("Computer Vision (CV)", "Transformers"))

	require.NoError(t, err)
	assert.Equal(t, "cv text", received.Text)
	assert.Equal(t, interests("Computer Vision (CV)", "Transformers"), received.Interests)

	assert.Equal(t, "Vision transformers dominate.", result.Trend)
	require.Len(t, result.Professors, 1)
	assert.Equal(t, "KAIST", result.Professors[0].Affiliation)
	assert.Equal(t, "ViT distillation.", result.Project)
}

func TestHTTPCVAnalysisClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "missing field",
			status: http.StatusOK,
			body:   `{"trend": "x", "professors": [], "feedback": "y", "improvement": "z"}`,
			check: func(t *testing.T, err error) {
				var malformed *MalformedResponseError
				assert.ErrorAs(t, err, &malformed)
			},
		},
		{
			name:   "invalid json",
			status: http.StatusOK,
			body:   `<html>oops</html>`,
			check: func(t *testing.T, err error) {
				var malformed *MalformedResponseError
				assert.ErrorAs(t, err, &malformed)
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `internal`,
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
				assert.True(t, statusErr.Retryable())
			},
		},
		{
			name:   "bad request",
			status: http.StatusBadRequest,
			body:   `{"detail": "text required"}`,
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.False(t, statusErr.Retryable())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewHTTPCVAnalysisClient(server.URL, 5*time.Second, logger.Nop())
			result, err := client.Analyze(context.Background(), "cv", interests("Multimodal"))

			assert.Nil(t, result)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestHTTPCVAnalysisClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewHTTPCVAnalysisClient(server.URL, 50*time.Millisecond, logger.Nop())
	_, err := client.Analyze(context.Background(), "cv", interests("Multimodal"))

	assert.Error(t, err)
}

func TestGeminiCVAnalysisClient_Analyze(t *testing.T) {
	t.Run("valid bundle", func(t *testing.T) {
		gemini := &fakeGemini{json: cvAnalysisBody}
		client := NewGeminiCVAnalysisClient(gemini, time.Second, logger.Nop())

		result, err := client.Analyze(context.Background(), "Jane Doe CV", interests("Multimodal", "Agents"))

		require.NoError(t, err)
		assert.Equal(t, "Strong.", result.Feedback)
		require.Len(t, gemini.prompts, 1)
		assert.Contains(t, gemini.prompts[0], "Jane Doe CV")
		assert.Contains(t, gemini.prompts[0], "- Multimodal\n- Agents")
	})

	t.Run("incomplete bundle", func(t *testing.T) {
		gemini := &fakeGemini{json: `{"trend": "only trend"}`}
		client := NewGeminiCVAnalysisClient(gemini, time.Second, logger.Nop())

		_, err := client.Analyze(context.Background(), "cv", interests("Multimodal"))

		var malformed *MalformedResponseError
		assert.ErrorAs(t, err, &malformed)
	})

	t.Run("model error", func(t *testing.T) {
		gemini := &fakeGemini{err: errors.New("quota")}
		client := NewGeminiCVAnalysisClient(gemini, time.Second, logger.Nop())

		_, err := client.Analyze(context.Background(), "cv", interests("Multimodal"))

		assert.ErrorContains(t, err, "quota")
	})
}

func TestWithCVAnalysisRetry(t *testing.T) {
	t.Run("retries retryable failures", func(t *testing.T) {
		inner := &flakyCVAnalysis{failures: 2, err: &StatusError{StatusCode: 503}}
		client := WithCVAnalysisRetry(inner, fastPolicy, logger.Nop())

		result, err := client.Analyze(context.Background(), "cv", interests("Multimodal"))

		require.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, 3, inner.calls)
	})

	t.Run("malformed responses are retried up to the limit", func(t *testing.T) {
		inner := &flakyCVAnalysis{failures: 10, err: &MalformedResponseError{Err: errors.New("missing project")}}
		client := WithCVAnalysisRetry(inner, fastPolicy, logger.Nop())

		_, err := client.Analyze(context.Background(), "cv", interests("Multimodal"))

		require.Error(t, err)
		assert.Equal(t, 3, inner.calls)
	})

	t.Run("single attempt policy returns the client unchanged", func(t *testing.T) {
		inner := &fakeCVAnalysis{}
		assert.Same(t, CVAnalysisClient(inner), WithCVAnalysisRetry(inner, NoRetry, logger.Nop()))
	})
}

type flakyCVAnalysis struct {
	failures int
	err      error
	calls    int
}

func (f *flakyCVAnalysis) Analyze(ctx context.Context, text string, interests []models.Interest) (*models.CVAnalysisResult, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return sampleCVResult(), nil
}
