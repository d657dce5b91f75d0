package main

import (
	"strings"
	"time"

	"pdv-backend/internal/admin"
	"pdv-backend/internal/auth"
	"pdv-backend/internal/config"
	"pdv-backend/internal/customer"
	"pdv-backend/internal/database"
	"pdv-backend/internal/inventory"
	"pdv-backend/internal/sale"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file, reading configuration from the environment")
	}

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to database")
	}

	saleSvc := sale.NewService(db)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			logrus.WithError(err).Error("unexpected error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	// Throttle credential endpoints: 10 attempts per minute per IP.
	authLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
	})

	api := app.Group("/api")

	// Public
	api.Post("/auth/setup", authLimiter, auth.SetupHandler(db, cfg))
	api.Post("/auth/login", authLimiter, auth.LoginHandler(db, cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))
	protected.Post("/me/password", authLimiter, admin.ChangePasswordHandler(db))

	// Products and stock
	protected.Get("/products", inventory.ListProductsHandler(db))
	protected.Post("/products", inventory.CreateProductHandler(db))
	protected.Get("/products/barcode/:barcode", inventory.GetProductByBarcodeHandler(db))
	protected.Put("/products/:id", inventory.UpdateProductHandler(db))
	protected.Patch("/products/:id/label-printed", inventory.SetLabelPrintedHandler(db))
	protected.Post("/products/labels", inventory.PrintLabelsHandler(db))
	protected.Post("/products/import", inventory.BulkImportHandler(db))

	// Customers
	protected.Get("/customers", customer.ListCustomersHandler(db))
	protected.Get("/customers/search", customer.SearchCustomersHandler(db))
	protected.Get("/customers/:id", customer.GetCustomerHandler(db))
	protected.Post("/customers", customer.CreateCustomerHandler(db))
	protected.Put("/customers/:id", customer.UpdateCustomerHandler(db))

	// Sales
	protected.Post("/sales", sale.CreateSaleHandler(saleSvc))
	protected.Get("/sales", sale.ListSalesHandler(db))
	protected.Get("/sales/:id", sale.GetSaleHandler(saleSvc))
	protected.Get("/sales/:id/receipt", sale.ReceiptHandler(saleSvc, cfg))
	protected.Post("/sales/:id/cancel", sale.CancelSaleHandler(saleSvc))

	// Admin only
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireAdmin())

	adminRoutes.Get("/users", admin.ListUsersHandler(db))
	adminRoutes.Post("/users", admin.CreateUserHandler(db))
	adminRoutes.Put("/users/:id", admin.UpdateUserHandler(db))
	adminRoutes.Delete("/users/:id", admin.DeleteUserHandler(db))
	adminRoutes.Delete("/products/:id", inventory.DeleteProductHandler(db))
	adminRoutes.Delete("/customers/:id", customer.DeleteCustomerHandler(db))

	logrus.WithField("port", cfg.HTTPPort).Info("server listening")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
