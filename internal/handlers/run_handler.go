package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/research-advisor/internal/logger"
	"alfredoptarigan/research-advisor/internal/models"
	"alfredoptarigan/research-advisor/internal/repositories"
	"alfredoptarigan/research-advisor/internal/services"
)

type RunHandler struct {
	worker  services.Worker
	uploads services.UploadReader
	log     *logger.Logger
}

func NewRunHandler(worker services.Worker, uploads services.UploadReader, log *logger.Logger) *RunHandler {
	return &RunHandler{
		worker:  worker,
		uploads: uploads,
		log:     log.WithComponent("run_handler"),
	}
}

// HandleSubmit handles POST /analyses
func (h *RunHandler) HandleSubmit(c *fiber.Ctx) error {
	locale := localeFrom(c)

	file, interests, err := readAnalysisForm(c, h.uploads)
	if err != nil {
		return uploadErrorResponse(c, err, locale)
	}

	if pe := services.ValidateAnalysisRequest(file, interests); pe != nil {
		return errorResponse(c, pe.Kind, locale, pe.Stage)
	}

	state, err := h.worker.Submit(services.AnalysisJob{
		File:      file,
		Interests: interests,
		Locale:    locale,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to enqueue analysis run")
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: "Analysis queue is busy, please retry later",
			Code:  "QUEUE_UNAVAILABLE",
		})
	}

	// Return run ID immediately
	return c.Status(fiber.StatusAccepted).JSON(models.RunAcceptedResponse{
		ID:     state.ID,
		Status: string(state.Status),
	})
}

// HandleGet handles GET /analyses/:id
func (h *RunHandler) HandleGet(c *fiber.Ctx) error {
	id, ok := parseRunID(c.Params("id"))
	if !ok {
		return invalidRunID(c)
	}

	state, err := h.worker.Get(id)
	if err != nil {
		return runLookupError(c, err)
	}

	return c.JSON(state)
}

// HandleCancel handles DELETE /analyses/:id
func (h *RunHandler) HandleCancel(c *fiber.Ctx) error {
	id, ok := parseRunID(c.Params("id"))
	if !ok {
		return invalidRunID(c)
	}

	state, err := h.worker.Cancel(id)
	if err != nil {
		return runLookupError(c, err)
	}

	return c.JSON(state)
}

func parseRunID(idParam string) (string, bool) {
	runID, err := uuid.Parse(idParam)
	if err != nil {
		return "", false
	}
	return runID.String(), true
}

func invalidRunID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: "Invalid analysis ID format",
		Code:  string(services.KindInvalidRequest),
	})
}

func runLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repositories.ErrRunNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "Analysis not found",
			Code:  "NOT_FOUND",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: "internal server error",
		Code:  "INTERNAL",
	})
}
