package inventory

import (
	"pdv-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LabelRequest struct {
	Labels []struct {
		ProductID uint `json:"product_id"`
		Copies    int  `json:"copies"`
	} `json:"labels"`
}

// POST /api/products/labels — returns the printer command stream as
// text/plain and flags each included product as label-printed.
func PrintLabelsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LabelRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if len(body.Labels) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "no labels requested")
		}

		jobs := make([]LabelJob, 0, len(body.Labels))
		ids := make([]uint, 0, len(body.Labels))
		for _, l := range body.Labels {
			var p models.Product
			if err := db.First(&p, l.ProductID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "product not found")
			}
			jobs = append(jobs, LabelJob{Product: p, Copies: l.Copies})
			ids = append(ids, p.ID)
		}

		if err := db.Model(&models.Product{}).
			Where("id IN ?", ids).
			Update("label_printed", true).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not flag products")
		}

		c.Set("Content-Type", "text/plain; charset=utf-8")
		return c.SendString(RenderLabels(jobs))
	}
}
