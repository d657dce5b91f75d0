package customer

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pdv-backend/internal/database"
	"pdv-backend/internal/models"

	"github.com/gofiber/fiber/v2"
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

func newTestApp(db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Post("/customers", CreateCustomerHandler(db))
	app.Put("/customers/:id", UpdateCustomerHandler(db))
	app.Get("/customers/search", SearchCustomersHandler(db))
	return app
}

func postJSON(t *testing.T, app *fiber.App, method, url string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(method, url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return resp
}

func TestCreateCustomerNormalizesTaxID(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(db)

	resp := postJSON(t, app, http.MethodPost, "/customers", CustomerRequest{
		Name:  "Maria Silva",
		TaxID: "123.456.789-01",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var stored models.Customer
	if err := db.First(&stored).Error; err != nil {
		t.Fatalf("customer not stored: %v", err)
	}
	if stored.TaxID != "12345678901" {
		t.Errorf("stored tax id = %q, want normalized digits", stored.TaxID)
	}
}

func TestCreateCustomerRejectsMalformedTaxID(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(db)

	for _, taxID := range []string{"1234567890", "12345678901x", "not-a-tax-id"} {
		resp := postJSON(t, app, http.MethodPost, "/customers", CustomerRequest{
			Name:  "Maria Silva",
			TaxID: taxID,
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("tax id %q: status = %d, want 400", taxID, resp.StatusCode)
		}
	}

	var count int64
	db.Model(&models.Customer{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected requests must not create rows, found %d", count)
	}
}

func TestCreateCustomerDuplicateTaxID(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(db)

	first := postJSON(t, app, http.MethodPost, "/customers", CustomerRequest{
		Name:  "Maria Silva",
		TaxID: "12345678901",
	})
	if first.StatusCode != http.StatusCreated {
		t.Fatalf("first create: status = %d", first.StatusCode)
	}

	dup := postJSON(t, app, http.MethodPost, "/customers", CustomerRequest{
		Name:  "Outro Nome",
		TaxID: "123.456.789-01", // same digits, different punctuation
	})
	if dup.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate create: status = %d, want 409", dup.StatusCode)
	}

	// The error payload echoes the submitted form.
	var payload struct {
		Error string          `json:"error"`
		Form  CustomerRequest `json:"form"`
	}
	if err := json.NewDecoder(dup.Body).Decode(&payload); err != nil {
		t.Fatalf("decode conflict payload: %v", err)
	}
	if payload.Form.Name != "Outro Nome" {
		t.Errorf("conflict payload should preserve form input, got %+v", payload.Form)
	}

	var count int64
	db.Model(&models.Customer{}).Count(&count)
	if count != 1 {
		t.Errorf("duplicate must not mutate the store, found %d rows", count)
	}
}

// A second request can insert the same tax id between the handler's
// duplicate count and its own insert. The callback plays the rival insert
// right before the handler's one, so the unique index fires; the handler
// must answer with the same 409 conflict payload, not a generic failure.
func TestCreateCustomerConcurrentDuplicateIsConflict(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(db)

	raced := false
	err := db.Callback().Create().Before("gorm:create").Register("rival_insert", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "customers" {
			return
		}
		raced = true
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			`INSERT INTO customers (name, tax_id, email, phone, address, created_at, updated_at)
			 VALUES ('Rival', '12345678901', '', '', '', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	resp := postJSON(t, app, http.MethodPost, "/customers", CustomerRequest{
		Name:  "Maria Silva",
		TaxID: "123.456.789-01",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}

	var payload struct {
		Error string          `json:"error"`
		Form  CustomerRequest `json:"form"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode conflict payload: %v", err)
	}
	if payload.Form.Name != "Maria Silva" {
		t.Errorf("conflict payload should preserve form input, got %+v", payload.Form)
	}

	var count int64
	db.Model(&models.Customer{}).Count(&count)
	if count != 1 {
		t.Errorf("only the rival row may persist, found %d", count)
	}
}

func TestUpdateCustomerAllowsOwnTaxID(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(db)

	cus := models.Customer{Name: "Maria Silva", TaxID: "12345678901"}
	if err := db.Create(&cus).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := postJSON(t, app, http.MethodPut, "/customers/1", CustomerRequest{
		Name:  "Maria S. Santos",
		TaxID: "123.456.789-01", // unchanged, self must be excluded from the check
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status = %d, want 200", resp.StatusCode)
	}
}

func TestSearchCustomers(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(db)

	seed := []models.Customer{
		{Name: "Maria Silva", TaxID: "11111111111", Email: "maria@example.com"},
		{Name: "Joao Souza", TaxID: "22222222222", Email: "joao@example.com"},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	cases := []struct {
		q    string
		want string
	}{
		{"maria", "Maria Silva"},       // name, case-insensitive
		{"joao@", "Joao Souza"},        // email
		{"222.222", "Joao Souza"},      // punctuated tax id fragment
	}
	for _, tc := range cases {
		resp := postJSON(t, app, http.MethodGet, "/customers/search?q="+tc.q, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("search %q: status = %d", tc.q, resp.StatusCode)
		}
		var got []models.Customer
		if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(got) != 1 || got[0].Name != tc.want {
			t.Errorf("search %q: got %+v, want single %q", tc.q, got, tc.want)
		}
	}
}
