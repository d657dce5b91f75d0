package inventory

import (
	"strings"

	"pdv-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ProductResponse struct {
	ID           uint     `json:"id"`
	Name         string   `json:"name"`
	Barcode      string   `json:"barcode"`
	UnitCost     float64  `json:"unit_cost"`
	SalePrice    *float64 `json:"sale_price"`
	Price        float64  `json:"price"` // resolved: sale price or unit cost
	Unit         string   `json:"unit"`
	Description  string   `json:"description"`
	LabelPrinted bool     `json:"label_printed"`
	Quantity     int      `json:"quantity"`
}

type CreateProductRequest struct {
	Name        string   `json:"name"`
	UnitCost    float64  `json:"unit_cost"`
	SalePrice   *float64 `json:"sale_price"`
	Unit        string   `json:"unit"`
	Description string   `json:"description"`
	Quantity    string   `json:"quantity"` // form input, garbage defaults to 0
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	UnitCost    *float64 `json:"unit_cost"`
	SalePrice   *float64 `json:"sale_price"`
	Unit        *string  `json:"unit"`
	Description *string  `json:"description"`
	Quantity    *string  `json:"quantity"`
}

func toProductResponse(p *models.Product, quantity int) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Barcode:      p.Barcode,
		UnitCost:     p.UnitCost,
		SalePrice:    p.SalePrice,
		Price:        p.Price(),
		Unit:         p.Unit,
		Description:  p.Description,
		LabelPrinted: p.LabelPrinted,
		Quantity:     quantity,
	}
}

type productRow struct {
	models.Product `gorm:"embedded"`
	Quantity       int
}

// GET /api/products?q= — list joined with stock, optional partial match on
// name or barcode.
func ListProductsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.Product{}).
			Select("products.*, COALESCE(stocks.quantity, 0) AS quantity").
			Joins("LEFT JOIN stocks ON stocks.product_id = products.id")

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + strings.ToLower(q) + "%"
			dbq = dbq.Where("LOWER(products.name) LIKE ? OR products.barcode LIKE ?", like, like)
		}

		var rows []productRow
		if err := dbq.Order("products.name asc").Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list products")
		}

		res := make([]ProductResponse, 0, len(rows))
		for i := range rows {
			res = append(res, toProductResponse(&rows[i].Product, rows[i].Quantity))
		}
		return c.JSON(res)
	}
}

// POST /api/products
// Two-step write: the barcode comes from the row id, which only exists after
// the insert, so the product is created and then updated inside one
// transaction. The stock row is created alongside.
func CreateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name is required")
		}

		quantity := ParseQuantity(body.Quantity)

		p := models.Product{
			Name:        body.Name,
			UnitCost:    body.UnitCost,
			SalePrice:   body.SalePrice,
			Unit:        strings.TrimSpace(body.Unit),
			Description: strings.TrimSpace(body.Description),
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			p.Barcode = BarcodeFromID(p.ID)
			if err := tx.Model(&p).Update("barcode", p.Barcode).Error; err != nil {
				return err
			}
			return tx.Create(&models.Stock{ProductID: p.ID, Quantity: quantity}).Error
		})
		if err != nil {
			logrus.WithError(err).Error("product create failed")
			return fiber.NewError(fiber.StatusInternalServerError, "could not create product")
		}

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(&p, quantity))
	}
}

// PUT /api/products/:id
func UpdateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Product
		if err := db.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name cannot be empty")
			}
			p.Name = name
		}
		if body.UnitCost != nil {
			p.UnitCost = *body.UnitCost
		}
		if body.SalePrice != nil {
			p.SalePrice = body.SalePrice
		}
		if body.Unit != nil {
			p.Unit = strings.TrimSpace(*body.Unit)
		}
		if body.Description != nil {
			p.Description = strings.TrimSpace(*body.Description)
		}
		// Barcode stays derived from the id even if the client sent one.
		p.Barcode = BarcodeFromID(p.ID)

		var quantity int
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&p).Error; err != nil {
				return err
			}
			var stock models.Stock
			if err := tx.Where("product_id = ?", p.ID).First(&stock).Error; err != nil {
				stock = models.Stock{ProductID: p.ID}
				if err := tx.Create(&stock).Error; err != nil {
					return err
				}
			}
			if body.Quantity != nil {
				stock.Quantity = ParseQuantity(*body.Quantity)
				if err := tx.Save(&stock).Error; err != nil {
					return err
				}
			}
			quantity = stock.Quantity
			return nil
		})
		if err != nil {
			logrus.WithError(err).Error("product update failed")
			return fiber.NewError(fiber.StatusInternalServerError, "could not update product")
		}

		return c.JSON(toProductResponse(&p, quantity))
	}
}

// DELETE /api/products/:id — hard delete, stock row included.
func DeleteProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Product
		if err := db.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}

		var refs int64
		db.Model(&models.SaleItem{}).Where("product_id = ?", p.ID).Count(&refs)
		if refs > 0 {
			return fiber.NewError(fiber.StatusConflict, "product has sales history and cannot be deleted")
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("product_id = ?", p.ID).Delete(&models.Stock{}).Error; err != nil {
				return err
			}
			return tx.Delete(&p).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete product")
		}
		return c.JSON(fiber.Map{"deleted": p.ID})
	}
}

// GET /api/products/barcode/:barcode — POS scanner lookup, JSON only.
func GetProductByBarcodeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var row productRow
		res := db.Model(&models.Product{}).
			Select("products.*, COALESCE(stocks.quantity, 0) AS quantity").
			Joins("LEFT JOIN stocks ON stocks.product_id = products.id").
			Where("products.barcode = ?", c.Params("barcode")).
			Limit(1).
			Scan(&row)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "lookup failed")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return c.JSON(toProductResponse(&row.Product, row.Quantity))
	}
}

// PATCH /api/products/:id/label-printed
func SetLabelPrintedHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Printed bool `json:"printed"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		res := db.Model(&models.Product{}).
			Where("id = ?", c.Params("id")).
			Update("label_printed", body.Printed)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update product")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return c.JSON(fiber.Map{"label_printed": body.Printed})
	}
}
