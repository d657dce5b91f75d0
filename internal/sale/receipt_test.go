package sale

import (
	"bytes"
	"testing"
	"time"

	"pdv-backend/internal/models"
)

func TestRenderReceipt(t *testing.T) {
	sale := &models.Sale{
		ID:        3,
		Total:     48.0,
		Status:    models.SaleStatusNormal,
		CreatedAt: time.Date(2026, 8, 1, 14, 30, 0, 0, time.UTC),
		Customer:  &models.Customer{Name: "Maria Silva", TaxID: "12345678901"},
		Items: []models.SaleItem{
			{ProductID: 1, Quantity: 4, UnitPrice: 12.0, Product: models.Product{Name: "Cafe 500g"}},
		},
	}

	out, err := RenderReceipt(sale, "Mercearia Central")
	if err != nil {
		t.Fatalf("RenderReceipt: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output is not a PDF, starts with %q", out[:8])
	}
	if len(out) < 500 {
		t.Errorf("suspiciously small PDF: %d bytes", len(out))
	}
}

func TestRenderReceiptCancelled(t *testing.T) {
	sale := &models.Sale{
		ID:        4,
		Status:    models.SaleStatusCancelled,
		CreatedAt: time.Now(),
	}

	out, err := RenderReceipt(sale, "Mercearia Central")
	if err != nil {
		t.Fatalf("RenderReceipt: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}
