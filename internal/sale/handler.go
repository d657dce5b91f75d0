package sale

import (
	"errors"
	"strconv"

	"pdv-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreateSaleRequest struct {
	CustomerID *uint         `json:"customer_id"`
	Items      []ItemRequest `json:"items"`
}

// translateError maps the service's typed failures onto HTTP statuses so the
// transaction outcome, not the handler, decides the response.
func translateError(err error) error {
	var (
		invalidQty *InvalidQuantityError
		notFound   *ProductNotFoundError
		noStock    *InsufficientStockError
	)
	switch {
	case errors.Is(err, ErrNoItems):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &invalidQty):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.As(err, &noStock):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrSaleNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrSaleAlreadyCancelled):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		logrus.WithError(err).Error("sale operation failed")
		return fiber.NewError(fiber.StatusInternalServerError, "sale operation failed")
	}
}

// POST /api/sales
func CreateSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		sale, err := svc.Create(body.CustomerID, body.Items)
		if err != nil {
			return translateError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(sale)
	}
}

// GET /api/sales
func ListSalesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sales []models.Sale
		if err := db.Preload("Customer").Order("id desc").Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list sales")
		}
		return c.JSON(sales)
	}
}

// GET /api/sales/:id
func GetSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid sale id")
		}

		sale, err := svc.Get(uint(id))
		if err != nil {
			return translateError(err)
		}
		return c.JSON(sale)
	}
}

// POST /api/sales/:id/cancel — reversal with stock restoration. The sale is
// never hard-deleted, only flagged.
func CancelSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid sale id")
		}

		sale, err := svc.Cancel(uint(id))
		if err != nil {
			return translateError(err)
		}
		return c.JSON(sale)
	}
}
