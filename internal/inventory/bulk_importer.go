package inventory

import (
	"fmt"
	"strconv"
	"strings"

	"pdv-backend/internal/models"

	"gorm.io/gorm"
)

// Spreadsheet column layout, fixed by the supplier export:
// 0=description 1=quantity 2=total value 3=unit 4=unit price 5=sale price
const (
	colDescription = 0
	colQuantity    = 1
	colTotalValue  = 2
	colUnit        = 3
	colUnitPrice   = 4
	colSalePrice   = 5
)

type ImportRow struct {
	Description string
	Quantity    int
	Unit        string
	UnitPrice   float64
	SalePrice   *float64
}

type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportSummary struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

func cell(cells []string, i int) string {
	if i < len(cells) {
		return strings.TrimSpace(cells[i])
	}
	return ""
}

// parseDecimal accepts both "1234.56" and the comma-decimal form "1.234,56"
// that supplier spreadsheets routinely use.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return strconv.ParseFloat(s, 64)
}

// ParseImportRow maps one spreadsheet row onto an ImportRow. skip=true means
// the row is not product data (empty description or a TOTAL footer line).
func ParseImportRow(cells []string) (row ImportRow, skip bool, err error) {
	desc := cell(cells, colDescription)
	if desc == "" || strings.EqualFold(desc, "TOTAL") {
		return ImportRow{}, true, nil
	}

	row.Description = desc
	row.Unit = cell(cells, colUnit)
	row.Quantity = ParseQuantity(cell(cells, colQuantity))

	row.UnitPrice, err = parseDecimal(cell(cells, colUnitPrice))
	if err != nil {
		return ImportRow{}, false, fmt.Errorf("invalid unit price %q", cell(cells, colUnitPrice))
	}

	if sp := cell(cells, colSalePrice); sp != "" {
		v, perr := parseDecimal(sp)
		if perr != nil {
			return ImportRow{}, false, fmt.Errorf("invalid sale price %q", sp)
		}
		row.SalePrice = &v
	}

	return row, false, nil
}

// ImportProduct writes one spreadsheet row: product insert, barcode derived
// from the fresh id, stock insert. Each row gets its own transaction, so a
// failure mid-file leaves prior rows committed.
func ImportProduct(db *gorm.DB, row ImportRow) (*models.Product, error) {
	p := models.Product{
		Name:      row.Description,
		UnitCost:  row.UnitPrice,
		SalePrice: row.SalePrice,
		Unit:      row.Unit,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		p.Barcode = BarcodeFromID(p.ID)
		if err := tx.Model(&p).Update("barcode", p.Barcode).Error; err != nil {
			return err
		}
		return tx.Create(&models.Stock{ProductID: p.ID, Quantity: row.Quantity}).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
