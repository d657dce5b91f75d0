package customer

import (
	"errors"
	"strings"

	"pdv-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var validate = validator.New()

type CustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	TaxID   string `json:"tax_id" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// conflictResponse echoes the submitted form back so the client can
// redisplay it alongside the error.
func conflictResponse(c *fiber.Ctx, status int, message string, body CustomerRequest) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"form":  body,
	})
}

// GET /api/customers
func ListCustomersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var customers []models.Customer
		if err := db.Order("name asc").Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list customers")
		}
		return c.JSON(customers)
	}
}

// GET /api/customers/:id
func GetCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cus models.Customer
		if err := db.First(&cus, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return c.JSON(cus)
	}
}

// POST /api/customers
func CreateCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		body.Name = strings.TrimSpace(body.Name)
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		taxID, err := NormalizeTaxID(body.TaxID)
		if err != nil {
			return conflictResponse(c, fiber.StatusBadRequest, err.Error(), body)
		}

		var count int64
		db.Model(&models.Customer{}).Where("tax_id = ?", taxID).Count(&count)
		if count > 0 {
			return conflictResponse(c, fiber.StatusConflict, "tax id already registered", body)
		}

		cus := models.Customer{
			Name:    body.Name,
			TaxID:   taxID,
			Email:   strings.TrimSpace(strings.ToLower(body.Email)),
			Phone:   strings.TrimSpace(body.Phone),
			Address: strings.TrimSpace(body.Address),
		}
		if err := db.Create(&cus).Error; err != nil {
			// A concurrent insert can slip past the count above; the
			// unique index is authoritative and maps to the same conflict.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflictResponse(c, fiber.StatusConflict, "tax id already registered", body)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "could not create customer")
		}

		return c.Status(fiber.StatusCreated).JSON(cus)
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cus models.Customer
		if err := db.First(&cus, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}

		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		body.Name = strings.TrimSpace(body.Name)
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		taxID, err := NormalizeTaxID(body.TaxID)
		if err != nil {
			return conflictResponse(c, fiber.StatusBadRequest, err.Error(), body)
		}

		// Duplicate check excludes the row being edited.
		var count int64
		db.Model(&models.Customer{}).
			Where("tax_id = ? AND id <> ?", taxID, cus.ID).
			Count(&count)
		if count > 0 {
			return conflictResponse(c, fiber.StatusConflict, "tax id already registered", body)
		}

		cus.Name = body.Name
		cus.TaxID = taxID
		cus.Email = strings.TrimSpace(strings.ToLower(body.Email))
		cus.Phone = strings.TrimSpace(body.Phone)
		cus.Address = strings.TrimSpace(body.Address)

		if err := db.Save(&cus).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflictResponse(c, fiber.StatusConflict, "tax id already registered", body)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "could not update customer")
		}
		return c.JSON(cus)
	}
}

// DELETE /api/customers/:id — hard delete; sales keep a dangling reference
// cleared to NULL.
func DeleteCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cus models.Customer
		if err := db.First(&cus, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Sale{}).
				Where("customer_id = ?", cus.ID).
				Update("customer_id", nil).Error; err != nil {
				return err
			}
			return tx.Delete(&cus).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete customer")
		}
		return c.JSON(fiber.Map{"deleted": cus.ID})
	}
}

// GET /api/customers/search?q= — typeahead. Case-insensitive partial match on
// name and email, plus a digits-only partial match on the tax id.
func SearchCustomersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return c.JSON([]models.Customer{})
		}

		like := "%" + strings.ToLower(q) + "%"
		dbq := db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
		if digits := NormalizeTaxIDPrefix(q); digits != "" {
			dbq = dbq.Or("tax_id LIKE ?", "%"+digits+"%")
		}

		var customers []models.Customer
		if err := dbq.Order("name asc").Limit(20).Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "search failed")
		}
		return c.JSON(customers)
	}
}
