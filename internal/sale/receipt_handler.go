package sale

import (
	"fmt"
	"strconv"

	"pdv-backend/internal/config"

	"github.com/gofiber/fiber/v2"
)

// GET /api/sales/:id/receipt — streams the generated PDF.
func ReceiptHandler(svc *Service, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid sale id")
		}

		sale, err := svc.Get(uint(id))
		if err != nil {
			return translateError(err)
		}

		pdfBytes, err := RenderReceipt(sale, cfg.StoreName)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not render receipt")
		}

		c.Set("Content-Type", "application/pdf")
		c.Set("Content-Disposition", fmt.Sprintf(`inline; filename="receipt-%d.pdf"`, sale.ID))
		return c.Send(pdfBytes)
	}
}
