package models

type AnalyzeResponse struct {
	RequestID string         `json:"request_id"`
	Report    *UnifiedReport `json:"report"`
}

type RunAcceptedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Stage string `json:"stage,omitempty"`
}

type TaxonomyResponse struct {
	MainInterests []Interest `json:"main_interests"`
}
