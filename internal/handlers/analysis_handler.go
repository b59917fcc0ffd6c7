package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/research-advisor/internal/logger"
	"alfredoptarigan/research-advisor/internal/models"
	"alfredoptarigan/research-advisor/internal/services"
)

type AnalysisHandler struct {
	orchestrator services.AnalysisOrchestrator
	uploads      services.UploadReader
	log          *logger.Logger
}

func NewAnalysisHandler(
	orchestrator services.AnalysisOrchestrator,
	uploads services.UploadReader,
	log *logger.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		orchestrator: orchestrator,
		uploads:      uploads,
		log:          log.WithComponent("analysis_handler"),
	}
}

// HandleAnalyze handles POST /analyze and blocks until the report is ready.
func (h *AnalysisHandler) HandleAnalyze(c *fiber.Ctx) error {
	locale := localeFrom(c)
	requestID := requestIDFrom(c)

	file, interests, err := readAnalysisForm(c, h.uploads)
	if err != nil {
		h.log.Warn().Err(err).Str("request_id", requestID).Msg("rejected upload")
		return uploadErrorResponse(c, err, locale)
	}

	report, err := h.orchestrator.RunAnalysis(
		c.UserContext(),
		file,
		interests,
		services.WithRequestID(requestID),
	)
	if err != nil {
		return pipelineErrorResponse(c, err, locale)
	}

	return c.JSON(models.AnalyzeResponse{
		RequestID: requestID,
		Report:    report,
	})
}
