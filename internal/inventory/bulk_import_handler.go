package inventory

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// POST /api/products/import — bulk product creation from an .xlsx upload.
// The first row is the header and is always skipped. There is no file-level
// atomicity: rows already imported stay committed when a later row fails.
func BulkImportHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file upload is required")
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "only .xlsx files are accepted")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not open upload")
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not read spreadsheet")
		}
		defer excelFile.Close()

		sheets := excelFile.GetSheetList()
		if len(sheets) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "spreadsheet has no sheets")
		}

		rows, err := excelFile.GetRows(sheets[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not read sheet")
		}

		summary := ImportSummary{Errors: []RowError{}}
		for i, cells := range rows {
			if i == 0 {
				continue // header
			}
			rowNum := i + 1

			row, skip, err := ParseImportRow(cells)
			if skip {
				summary.Skipped++
				continue
			}
			if err != nil {
				summary.Errors = append(summary.Errors, RowError{Row: rowNum, Message: err.Error()})
				continue
			}

			if _, err := ImportProduct(db, row); err != nil {
				logrus.WithError(err).WithField("row", rowNum).Error("bulk import: row failed")
				summary.Errors = append(summary.Errors, RowError{Row: rowNum, Message: "database error"})
				continue
			}
			summary.Imported++
		}

		return c.JSON(summary)
	}
}
