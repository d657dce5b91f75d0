package sale

import (
	"bytes"
	"fmt"

	"pdv-backend/internal/models"

	"github.com/go-pdf/fpdf"
)

// RenderReceipt builds the printable PDF for one sale: store header, sale
// number and date, optional customer, itemized lines and the total. Cancelled
// sales carry a CANCELLED stamp so old printouts cannot pass as valid.
func RenderReceipt(sale *models.Sale, storeName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Receipt #%d", sale.ID), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, storeName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Receipt #%d", sale.ID), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, sale.CreatedAt.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")

	if sale.Customer != nil {
		pdf.CellFormat(0, 6, "Customer: "+sale.Customer.Name, "", 1, "C", false, 0, "")
	}

	if sale.Status == models.SaleStatusCancelled {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(0, 8, "CANCELLED", "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(90, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Unit price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for i := range sale.Items {
		item := &sale.Items[i]
		name := item.Product.Name
		if name == "" {
			name = fmt.Sprintf("product %d", item.ProductID)
		}
		pdf.CellFormat(90, 6, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("R$ %.2f", item.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("R$ %.2f", item.Subtotal()), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(145, 8, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, fmt.Sprintf("R$ %.2f", sale.Total), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
