package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/research-advisor/internal/models"
	"alfredoptarigan/research-advisor/internal/services"
)

type InterestHandler struct {
	taxonomy services.Taxonomy
}

func NewInterestHandler(taxonomy services.Taxonomy) *InterestHandler {
	return &InterestHandler{taxonomy: taxonomy}
}

// HandleList handles GET /interests
func (h *InterestHandler) HandleList(c *fiber.Ctx) error {
	return c.JSON(models.TaxonomyResponse{
		MainInterests: h.taxonomy.Labels(),
	})
}
