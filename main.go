package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/northmart/shop-backend/app/addresses"
	"github.com/northmart/shop-backend/app/auth"
	"github.com/northmart/shop-backend/app/catalog"
	"github.com/northmart/shop-backend/app/delivery"
	"github.com/northmart/shop-backend/app/orders"
	"github.com/northmart/shop-backend/app/payments"
	"github.com/northmart/shop-backend/models"
	"github.com/northmart/shop-backend/storage"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file, relying on environment")
	}

	db, err := gorm.Open(postgres.Open(os.Getenv("DATABASE_URL")), &gorm.Config{})
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}

	if err := migrate(db); err != nil {
		logger.Error("migration failed", "err", err)
		os.Exit(1)
	}

	imageStore, err := storage.NewDiskImageStore(envOr("IMAGE_DIR", "images"))
	if err != nil {
		logger.Error("failed to init image store", "err", err)
		os.Exit(1)
	}

	usersRepo := models.NewUsersRepository(db)
	addressesRepo := models.NewAddressesRepository(db)
	productsRepo := models.NewProductsRepository(db)
	ordersRepo := models.NewOrdersRepository(db)

	deletionService := catalog.NewDeletionService(productsRepo, imageStore, logger)
	carrier := delivery.NewClient(delivery.Config{
		URL:              os.Getenv("DELIVERY_API_URL"),
		Token:            os.Getenv("DELIVERY_API_TOKEN"),
		WarehouseAddress: os.Getenv("DELIVERY_WAREHOUSE_ADDRESS"),
		EmergencyName:    os.Getenv("DELIVERY_CONTACT_NAME"),
		EmergencyPhone:   os.Getenv("DELIVERY_CONTACT_PHONE"),
	}, logger)
	paymentsClient := payments.NewClient(payments.Config{
		URL:       os.Getenv("PAYMENTS_API_URL"),
		ShopID:    os.Getenv("PAYMENTS_SHOP_ID"),
		SecretKey: os.Getenv("PAYMENTS_SECRET_KEY"),
	})

	catalogHandler := catalog.NewCatalogHandler(productsRepo, deletionService, imageStore)
	orderHandler := orders.NewOrderHandler(
		orders.NewBuilder(addressesRepo, productsRepo),
		ordersRepo,
		carrier,
	)
	addressHandler := addresses.NewAddressHandler(addressesRepo)
	paymentHandler := payments.NewPaymentHandler(paymentsClient)

	mux := http.NewServeMux()

	// public catalog
	mux.HandleFunc("GET /products", catalogHandler.HandleGet)
	mux.HandleFunc("GET /products/{id}", catalogHandler.HandleGetProduct)

	// authenticated surface
	authed := http.NewServeMux()
	authed.HandleFunc("POST /products", catalogHandler.HandleCreate)
	authed.HandleFunc("DELETE /products/{id}", catalogHandler.HandleSoftDelete)
	authed.HandleFunc("POST /products/{id}/restore", catalogHandler.HandleRestore)
	authed.HandleFunc("DELETE /products/{id}/purge", catalogHandler.HandleHardDelete)
	authed.HandleFunc("POST /products/purge-expired", catalogHandler.HandlePurgeExpired)
	authed.HandleFunc("GET /orders", orderHandler.HandleList)
	authed.HandleFunc("POST /orders", orderHandler.HandleCreate)
	authed.HandleFunc("GET /addresses", addressHandler.HandleGetAll)
	authed.HandleFunc("POST /addresses", addressHandler.HandleCreate)
	authed.HandleFunc("POST /pay", paymentHandler.HandleCreate)
	mux.Handle("/", auth.Middleware(usersRepo, authed))

	srv := &http.Server{
		Addr:              ":" + envOr("PORT", "8080"),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Product{},
		&models.Description{},
		&models.Inventory{},
		&models.Order{},
		&models.OrderLine{},
	); err != nil {
		return err
	}
	// Name uniqueness holds among active products only; a deleted
	// product may share its name with a live replacement.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_products_active_name ON products (name) WHERE NOT deleted`,
	).Error
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
