package handlers

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/research-advisor/internal/models"
	"alfredoptarigan/research-advisor/internal/services"
)

const (
	formFieldCV        = "cv"
	formFieldInterests = "interests"
)

func localeFrom(c *fiber.Ctx) string {
	return services.ParseLocale(c.Get(fiber.HeaderAcceptLanguage))
}

// requestIDFrom prefers the id set by the requestid middleware.
func requestIDFrom(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return id
	}
	if id := c.Get(fiber.HeaderXRequestID); id != "" {
		return id
	}
	return uuid.NewString()
}

// readAnalysisForm pulls the CV upload and the repeated interests field out of
// a multipart body. Missing parts are returned empty, not as errors, so the
// orchestrator's precondition check decides.
func readAnalysisForm(c *fiber.Ctx, uploads services.UploadReader) (*models.CVFile, []models.Interest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, nil
	}

	var header *multipart.FileHeader
	if files := form.File[formFieldCV]; len(files) > 0 {
		header = files[0]
	}

	file, err := uploads.ReadCV(header)
	if err != nil {
		return nil, nil, err
	}

	var interests []models.Interest
	for _, value := range form.Value[formFieldInterests] {
		if value = strings.TrimSpace(value); value != "" {
			interests = append(interests, models.Interest(value))
		}
	}

	return file, interests, nil
}

func errorResponse(c *fiber.Ctx, kind services.ErrorKind, locale string, stage models.PipelineStage) error {
	return c.Status(kind.StatusCode()).JSON(models.ErrorResponse{
		Error: services.Message(locale, kind),
		Code:  string(kind),
		Stage: string(stage),
	})
}

func pipelineErrorResponse(c *fiber.Ctx, err error, locale string) error {
	if pe, ok := services.AsPipelineError(err); ok {
		return errorResponse(c, pe.Kind, locale, pe.Stage)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: "internal server error",
		Code:  "INTERNAL",
	})
}

func uploadErrorResponse(c *fiber.Ctx, err error, locale string) error {
	switch {
	case errors.Is(err, services.ErrFileTooLarge):
		return errorResponse(c, services.KindFileTooLarge, locale, models.StageIdle)
	case errors.Is(err, services.ErrExtensionNotAllowed):
		return errorResponse(c, services.KindExtractionFailed, locale, models.StageIdle)
	default:
		return errorResponse(c, services.KindInvalidRequest, locale, models.StageIdle)
	}
}
