package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alfredoptarigan/research-advisor/internal/models"
)

func interests(values ...string) []models.Interest {
	out := make([]models.Interest, 0, len(values))
	for _, v := range values {
		out = append(out, models.Interest(v))
	}
	return out
}

func TestInterestClassifier_Classify(t *testing.T) {
	classifier := NewInterestClassifier(DefaultMainInterests)

	tests := []struct {
		name         string
		input        []models.Interest
		wantMain     models.Interest
		wantDetailed []models.Interest
	}{
		{
			name:         "taxonomy label first",
			input:        interests("Computer Vision (CV)", "Transformers"),
			wantMain:     "Computer Vision (CV)",
			wantDetailed: interests("Transformers"),
		},
		{
			name:         "taxonomy label in the middle",
			input:        interests("Transformers", "Multimodal", "Diffusion"),
			wantMain:     "Multimodal",
			wantDetailed: interests("Transformers", "Diffusion"),
		},
		{
			name:         "first of several taxonomy labels wins",
			input:        interests("RLHF", "Natural Language Processing (NLP)", "Computer Vision (CV)"),
			wantMain:     "Natural Language Processing (NLP)",
			wantDetailed: interests("RLHF", "Computer Vision (CV)"),
		},
		{
			name:         "no taxonomy label falls back to first",
			input:        interests("Robotics"),
			wantMain:     "Robotics",
			wantDetailed: interests(),
		},
		{
			name:         "no taxonomy label with several interests",
			input:        interests("Robotics", "SLAM"),
			wantMain:     "Robotics",
			wantDetailed: interests("SLAM"),
		},
		{
			name:         "duplicate main removes first occurrence only",
			input:        interests("Multimodal", "Agents", "Multimodal"),
			wantMain:     "Multimodal",
			wantDetailed: interests("Agents", "Multimodal"),
		},
		{
			name:         "match is exact",
			input:        interests("computer vision (cv)", "Computer Vision"),
			wantMain:     "computer vision (cv)",
			wantDetailed: interests("Computer Vision"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.input)
			assert.Equal(t, tt.wantMain, got.Main)
			assert.Equal(t, tt.wantDetailed, got.Detailed)
		})
	}
}

func TestInterestClassifier_Properties(t *testing.T) {
	classifier := NewInterestClassifier(DefaultMainInterests)

	inputs := [][]models.Interest{
		interests("Robotics"),
		interests("Transformers", "Machine Learning / Deep Learning (ML/DL)"),
		interests("A", "B", "C", "Multimodal", "D"),
		interests("Multimodal", "Multimodal"),
	}

	for _, input := range inputs {
		first := classifier.Classify(input)
		second := classifier.Classify(input)

		assert.Equal(t, first, second, "classification must be deterministic")
		assert.Contains(t, input, first.Main)
		assert.Len(t, first.Detailed, len(input)-1)
	}
}

func TestInterestClassifier_DoesNotMutateInput(t *testing.T) {
	classifier := NewInterestClassifier(DefaultMainInterests)
	input := interests("Transformers", "Computer Vision (CV)", "Diffusion")
	snapshot := append([]models.Interest(nil), input...)

	classifier.Classify(input)

	assert.Equal(t, snapshot, input)
}

func TestInterestClassifier_EmptyInput(t *testing.T) {
	classifier := NewInterestClassifier(DefaultMainInterests)

	var got models.ClassifiedInterests
	assert.NotPanics(t, func() { got = classifier.Classify(nil) })
	assert.Empty(t, got.Main)
	assert.Empty(t, got.Detailed)
}

func TestInterestClassifier_CustomTaxonomy(t *testing.T) {
	classifier := NewInterestClassifier(NewTaxonomy("Robotics"))

	got := classifier.Classify(interests("Computer Vision (CV)", "Robotics"))

	assert.Equal(t, models.Interest("Robotics"), got.Main)
	assert.Equal(t, interests("Computer Vision (CV)"), got.Detailed)
}

func TestTaxonomy_Labels(t *testing.T) {
	taxonomy := NewTaxonomy("B", "A", "B")

	labels := taxonomy.Labels()
	assert.Equal(t, interests("B", "A"), labels)

	labels[0] = "mutated"
	assert.True(t, taxonomy.Contains("B"))
	assert.Equal(t, interests("B", "A"), taxonomy.Labels())
}
