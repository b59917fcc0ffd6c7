package services

import (
	"alfredoptarigan/research-advisor/internal/models"
)

// Taxonomy is the fixed set of main-interest labels, in display order.
type Taxonomy struct {
	labels []models.Interest
	index  map[models.Interest]struct{}
}

func NewTaxonomy(labels ...models.Interest) Taxonomy {
	t := Taxonomy{index: make(map[models.Interest]struct{}, len(labels))}
	for _, label := range labels {
		if _, dup := t.index[label]; dup {
			continue
		}
		t.index[label] = struct{}{}
		t.labels = append(t.labels, label)
	}
	return t
}

// DefaultMainInterests is the taxonomy offered by the upload form.
var DefaultMainInterests = NewTaxonomy(
	"Natural Language Processing (NLP)",
	"Computer Vision (CV)",
	"Multimodal",
	"Machine Learning / Deep Learning (ML/DL)",
)

func (t Taxonomy) Contains(interest models.Interest) bool {
	_, ok := t.index[interest]
	return ok
}

// Labels returns a copy of the labels in declaration order.
func (t Taxonomy) Labels() []models.Interest {
	return append([]models.Interest(nil), t.labels...)
}

// InterestClassifier splits interests into one main interest and the rest.
type InterestClassifier interface {
	Classify(interests []models.Interest) models.ClassifiedInterests
}

type interestClassifier struct {
	taxonomy Taxonomy
}

func NewInterestClassifier(taxonomy Taxonomy) InterestClassifier {
	return &interestClassifier{taxonomy: taxonomy}
}

// Classify picks the first taxonomy label in submission order, or the first
// interest when none matches, and removes only that first occurrence from the
// detailed list. Empty input yields an empty result.
func (c *interestClassifier) Classify(interests []models.Interest) models.ClassifiedInterests {
	if len(interests) == 0 {
		return models.ClassifiedInterests{Detailed: []models.Interest{}}
	}

	mainIdx := 0
	for i, interest := range interests {
		if c.taxonomy.Contains(interest) {
			mainIdx = i
			break
		}
	}

	detailed := make([]models.Interest, 0, len(interests)-1)
	detailed = append(detailed, interests[:mainIdx]...)
	detailed = append(detailed, interests[mainIdx+1:]...)

	return models.ClassifiedInterests{
		Main:     interests[mainIdx],
		Detailed: detailed,
	}
}
