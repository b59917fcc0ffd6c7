package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestNewRPMLimiter(t *testing.T) {
	assert.Equal(t, rate.Inf, newRPMLimiter(0).Limit())

	limiter := newRPMLimiter(60)
	assert.Equal(t, rate.Limit(1), limiter.Limit())
	assert.Equal(t, 6, limiter.Burst())

	assert.Equal(t, 1, newRPMLimiter(5).Burst())
}

func TestExtractJSON(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"trend\": \"x\"}\n```":     `{"trend": "x"}`,
		"Here you go: {\"a\": [1, 2]} thanks": `{"a": [1, 2]}`,
		"[{\"title\": \"p\"}]":                 `[{"title": "p"}]`,
		"  plain  ":                           "plain",
	}

	for input, want := range tests {
		assert.Equal(t, want, extractJSON(input))
	}
}
