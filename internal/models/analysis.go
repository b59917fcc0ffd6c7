package models

// Interest is a research-area label. Equality is exact string match.
type Interest string

// CVFile is an uploaded résumé held in memory for one pipeline run.
type CVFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the number of bytes in the upload.
func (f *CVFile) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}

// AnalysisRequest is built once per submission and discarded afterwards.
type AnalysisRequest struct {
	File      *CVFile
	Interests []Interest
}

// ClassifiedInterests is the main/detailed split sent to the trend capability.
type ClassifiedInterests struct {
	Main     Interest   `json:"main_interest"`
	Detailed []Interest `json:"detailed_interests"`
}

type Professor struct {
	Name          string   `json:"name"`
	Affiliation   string   `json:"affiliation,omitempty"`
	ResearchAreas []string `json:"research_areas,omitempty"`
	Homepage      string   `json:"homepage,omitempty"`
	Reason        string   `json:"reason,omitempty"`
}

// CVAnalysisResult is relayed as-is from the analysis capability.
type CVAnalysisResult struct {
	Trend       string      `json:"trend"`
	Professors  []Professor `json:"professors"`
	Feedback    string      `json:"feedback"`
	Improvement string      `json:"improvement"`
	Project     string      `json:"project"`
}

type Paper struct {
	Title      string   `json:"title"`
	Authors    []string `json:"authors,omitempty"`
	Abstract   string   `json:"abstract,omitempty"`
	Year       int      `json:"year,omitempty"`
	Venue      string   `json:"venue,omitempty"`
	URL        string   `json:"url,omitempty"`
	Similarity float32  `json:"similarity,omitempty"`
}

type PaperTrendResult struct {
	TrendSummary string  `json:"trend_summary"`
	Papers       []Paper `json:"papers"`
}

// UnifiedReport is the only value the pipeline constructs itself.
type UnifiedReport struct {
	Trend       string      `json:"trend"`
	Professors  []Professor `json:"professors"`
	Feedback    string      `json:"feedback"`
	Improvement string      `json:"improvement"`
	Project     string      `json:"project"`
	PaperTrend  string      `json:"paperTrend"`
	Papers      []Paper     `json:"papers"`
}

// NewUnifiedReport merges both collaborator responses. CV-analysis fields pass
// through unchanged; the trend summary is exposed as PaperTrend.
func NewUnifiedReport(cv *CVAnalysisResult, trend *PaperTrendResult) *UnifiedReport {
	return &UnifiedReport{
		Trend:       cv.Trend,
		Professors:  cv.Professors,
		Feedback:    cv.Feedback,
		Improvement: cv.Improvement,
		Project:     cv.Project,
		PaperTrend:  trend.TrendSummary,
		Papers:      trend.Papers,
	}
}
