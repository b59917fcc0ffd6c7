package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/research-advisor/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildCVAnalysisPrompt creates prompt for research-career CV analysis
func (pb *PromptBuilder) BuildCVAnalysisPrompt(cvText string, interests []models.Interest) string {
	if strings.TrimSpace(cvText) == "" {
		cvText = "(no text could be extracted from the CV)"
	}

	return fmt.Sprintf(`You are an experienced graduate admissions advisor helping a student plan a research career.

RESEARCH INTERESTS:
%s

CANDIDATE CV:
%s

Your task is to analyse the CV against the stated research interests.

Provide:
1. trend - current research trends in these areas (3-5 sentences)
2. professors - up to 5 professors whose labs match the interests, with affiliation and why they fit
3. feedback - honest feedback on how well the CV supports these interests (3-5 sentences)
4. improvement - concrete suggestions to strengthen the CV
5. project - one suggested research project the candidate could start now

Return your response in the following JSON format:
{
  "trend": "<text>",
  "professors": [
    {"name": "<name>", "affiliation": "<university / lab>", "research_areas": ["<area>"], "homepage": "<url or empty>", "reason": "<why this professor fits>"}
  ],
  "feedback": "<text>",
  "improvement": "<text>",
  "project": "<text>"
}

Be specific and reference actual items from the CV.`,
		formatInterestList(interests), cvText)
}

// BuildTrendSummaryPrompt creates prompt for the paper trend narrative
func (pb *PromptBuilder) BuildTrendSummaryPrompt(mainInterest models.Interest, detailed []models.Interest, papers []models.Paper) string {
	return fmt.Sprintf(`You are a research analyst summarising recent publications.

MAIN FIELD:
%s

DETAILED TOPICS:
%s

RECENT PAPERS:
%s

Write a concise trend summary (4-6 sentences) describing where research in the main field is heading,
how the detailed topics fit in, and which of the listed papers best illustrate the trend.

Return ONLY the summary text, no JSON format needed.`,
		mainInterest, formatInterestList(detailed), FormatPaperContext(papers))
}

// BuildTrendQuery creates the text embedded to search the paper index
func (pb *PromptBuilder) BuildTrendQuery(mainInterest models.Interest, detailed []models.Interest) string {
	if len(detailed) == 0 {
		return string(mainInterest)
	}

	parts := make([]string, 0, len(detailed))
	for _, interest := range detailed {
		parts = append(parts, string(interest))
	}
	return fmt.Sprintf("%s: %s", mainInterest, strings.Join(parts, ", "))
}

// BuildPaperEmbeddingText combines title and abstract for indexing
func BuildPaperEmbeddingText(title, abstract string) string {
	return fmt.Sprintf("Title: %s\n\nAbstract: %s", strings.TrimSpace(title), strings.TrimSpace(abstract))
}

// FormatPaperContext renders papers as numbered context blocks
func FormatPaperContext(papers []models.Paper) string {
	if len(papers) == 0 {
		return "No relevant papers found."
	}

	var parts []string
	for i, paper := range papers {
		header := fmt.Sprintf("--- Paper %d (Score: %.2f) ---\n%s", i+1, paper.Similarity, strings.TrimSpace(paper.Title))
		if paper.Year > 0 {
			header = fmt.Sprintf("%s (%d)", header, paper.Year)
		}
		parts = append(parts, header+"\n"+strings.TrimSpace(paper.Abstract))
	}

	return strings.Join(parts, "\n\n")
}

func formatInterestList(interests []models.Interest) string {
	if len(interests) == 0 {
		return "- (none)"
	}

	lines := make([]string, 0, len(interests))
	for _, interest := range interests {
		lines = append(lines, "- "+string(interest))
	}
	return strings.Join(lines, "\n")
}
