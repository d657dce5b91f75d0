package sale

import (
	"errors"
	"testing"

	"pdv-backend/internal/database"
	"pdv-backend/internal/inventory"
	"pdv-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, unitCost float64, salePrice *float64, quantity int) models.Product {
	t.Helper()
	p := models.Product{Name: name, UnitCost: unitCost, SalePrice: salePrice}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	p.Barcode = inventory.BarcodeFromID(p.ID)
	if err := db.Model(&p).Update("barcode", p.Barcode).Error; err != nil {
		t.Fatalf("seed barcode: %v", err)
	}
	if err := db.Create(&models.Stock{ProductID: p.ID, Quantity: quantity}).Error; err != nil {
		t.Fatalf("seed stock: %v", err)
	}
	return p
}

func stockOf(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var s models.Stock
	if err := db.Where("product_id = ?", productID).First(&s).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	return s.Quantity
}

// Worked example: quantity "10", no sale price, sell 3 units. Stock ends at 7
// and the total is unit cost times 3.
func TestCreateSaleFallsBackToUnitCost(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	p := seedProduct(t, db, "Cafe 500g", 12.0, nil, inventory.ParseQuantity("10"))

	sale, err := svc.Create(nil, []ItemRequest{{Barcode: p.Barcode, Quantity: 3}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if sale.Total != 36.0 {
		t.Errorf("total = %v, want 36.0 (3 x unit cost)", sale.Total)
	}
	if got := stockOf(t, db, p.ID); got != 7 {
		t.Errorf("stock = %d, want 7", got)
	}
}

func TestCreateSaleTotalIsSumOfSubtotals(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	sp := 15.9
	coffee := seedProduct(t, db, "Cafe 500g", 12.0, &sp, 20)
	rice := seedProduct(t, db, "Arroz 5kg", 22.5, nil, 20)

	sale, err := svc.Create(nil, []ItemRequest{
		{Barcode: coffee.Barcode, Quantity: 2},
		{Barcode: rice.Barcode, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	want := 2*15.9 + 1*22.5
	if sale.Total != want {
		t.Errorf("total = %v, want %v", sale.Total, want)
	}

	var sum float64
	for i := range sale.Items {
		sum += sale.Items[i].Subtotal()
	}
	if sale.Total != sum {
		t.Errorf("total %v != sum of subtotals %v", sale.Total, sum)
	}

	// Sale price edits after the fact must not touch the recorded item price.
	newPrice := 99.9
	if err := db.Model(&models.Product{}).Where("id = ?", coffee.ID).Update("sale_price", newPrice).Error; err != nil {
		t.Fatalf("price edit: %v", err)
	}
	var item models.SaleItem
	if err := db.Where("sale_id = ? AND product_id = ?", sale.ID, coffee.ID).First(&item).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	if item.UnitPrice != 15.9 {
		t.Errorf("item unit price = %v, want the price at time of sale", item.UnitPrice)
	}
}

func TestCreateSaleInsufficientStockRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	coffee := seedProduct(t, db, "Cafe 500g", 12.0, nil, 10)
	rice := seedProduct(t, db, "Arroz 5kg", 22.5, nil, 2)

	_, err := svc.Create(nil, []ItemRequest{
		{Barcode: coffee.Barcode, Quantity: 3}, // would succeed alone
		{Barcode: rice.Barcode, Quantity: 5},   // over stock
	})

	var noStock *InsufficientStockError
	if !errors.As(err, &noStock) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if noStock.Available != 2 || noStock.Requested != 5 {
		t.Errorf("error detail = %+v", noStock)
	}

	// Nothing from the request may persist.
	if got := stockOf(t, db, coffee.ID); got != 10 {
		t.Errorf("coffee stock = %d, want untouched 10", got)
	}
	if got := stockOf(t, db, rice.ID); got != 2 {
		t.Errorf("rice stock = %d, want untouched 2", got)
	}
	var sales, items int64
	db.Model(&models.Sale{}).Count(&sales)
	db.Model(&models.SaleItem{}).Count(&items)
	if sales != 0 || items != 0 {
		t.Errorf("rolled-back sale left rows: sales=%d items=%d", sales, items)
	}
}

func TestCreateSaleUnknownBarcodeRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	coffee := seedProduct(t, db, "Cafe 500g", 12.0, nil, 10)

	_, err := svc.Create(nil, []ItemRequest{
		{Barcode: coffee.Barcode, Quantity: 2},
		{Barcode: "999999999999", Quantity: 1},
	})

	var notFound *ProductNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want ProductNotFoundError", err)
	}

	if got := stockOf(t, db, coffee.ID); got != 10 {
		t.Errorf("already-processed line must be rolled back, stock = %d", got)
	}
	var items int64
	db.Model(&models.SaleItem{}).Count(&items)
	if items != 0 {
		t.Errorf("line items left behind: %d", items)
	}
}

func TestCreateSaleValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	if _, err := svc.Create(nil, nil); !errors.Is(err, ErrNoItems) {
		t.Errorf("empty items: err = %v, want ErrNoItems", err)
	}

	p := seedProduct(t, db, "Cafe 500g", 12.0, nil, 10)
	_, err := svc.Create(nil, []ItemRequest{{Barcode: p.Barcode, Quantity: 0}})
	var invalidQty *InvalidQuantityError
	if !errors.As(err, &invalidQty) {
		t.Errorf("zero quantity: err = %v, want InvalidQuantityError", err)
	}
	if got := stockOf(t, db, p.ID); got != 10 {
		t.Errorf("stock touched by invalid request: %d", got)
	}
}

func TestCancelSaleRestoresStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	coffee := seedProduct(t, db, "Cafe 500g", 12.0, nil, 10)
	rice := seedProduct(t, db, "Arroz 5kg", 22.5, nil, 8)

	sale, err := svc.Create(nil, []ItemRequest{
		{Barcode: coffee.Barcode, Quantity: 4},
		{Barcode: rice.Barcode, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cancelled, err := svc.Cancel(sale.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != models.SaleStatusCancelled {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}

	if got := stockOf(t, db, coffee.ID); got != 10 {
		t.Errorf("coffee stock = %d, want restored 10", got)
	}
	if got := stockOf(t, db, rice.ID); got != 8 {
		t.Errorf("rice stock = %d, want restored 8", got)
	}

	// The sale survives as a cancelled record, never deleted.
	var count int64
	db.Model(&models.Sale{}).Count(&count)
	if count != 1 {
		t.Errorf("sale row count = %d, want 1", count)
	}
}

func TestCancelSaleTwiceIsRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	p := seedProduct(t, db, "Cafe 500g", 12.0, nil, 10)
	sale, err := svc.Create(nil, []ItemRequest{{Barcode: p.Barcode, Quantity: 4}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Cancel(sale.ID); err != nil {
		t.Fatalf("first Cancel: %v", err)
	}
	if _, err := svc.Cancel(sale.ID); !errors.Is(err, ErrSaleAlreadyCancelled) {
		t.Fatalf("second Cancel: err = %v, want ErrSaleAlreadyCancelled", err)
	}

	// Stock must not be restored twice.
	if got := stockOf(t, db, p.ID); got != 10 {
		t.Errorf("stock = %d, want 10 after a single restoration", got)
	}
}

func TestCancelMissingSale(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	if _, err := svc.Cancel(1234); !errors.Is(err, ErrSaleNotFound) {
		t.Errorf("err = %v, want ErrSaleNotFound", err)
	}
}

func TestCreateSaleWithCustomer(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	cus := models.Customer{Name: "Maria Silva", TaxID: "12345678901"}
	if err := db.Create(&cus).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	p := seedProduct(t, db, "Cafe 500g", 12.0, nil, 10)

	sale, err := svc.Create(&cus.ID, []ItemRequest{{Barcode: p.Barcode, Quantity: 1}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sale.CustomerID == nil || *sale.CustomerID != cus.ID {
		t.Errorf("customer not linked: %+v", sale.CustomerID)
	}

	unknown := uint(999)
	if _, err := svc.Create(&unknown, []ItemRequest{{Barcode: p.Barcode, Quantity: 1}}); err == nil {
		t.Error("unknown customer should fail the sale")
	}
}
