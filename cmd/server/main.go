package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/carvohq/carvo-backend/internal/config"
	"github.com/carvohq/carvo-backend/internal/database"
	"github.com/carvohq/carvo-backend/internal/handler"
	"github.com/carvohq/carvo-backend/internal/middleware"
	"github.com/carvohq/carvo-backend/internal/queue"
	"github.com/carvohq/carvo-backend/internal/repository"
	"github.com/carvohq/carvo-backend/internal/router"
	queue_publisher "github.com/carvohq/carvo-backend/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	if err := database.Migrate(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.MigrationsPath); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; rate limiting and caching degrade to no-ops when
	// the client is nil.
	rdb := config.NewRedisClient()

	queue_publisher.Configure(cfg.AMQPURL)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.Metrics())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	otps := repository.NewOTPRepo(db)
	resets := repository.NewResetRepo(db)
	cars := repository.NewCarRepo(db)
	categories := repository.NewCategoryRepo(db)
	parts := repository.NewPartRepo(db)
	coupons := repository.NewCouponRepo(db)
	orders := repository.NewOrderRepo(db)
	payments := repository.NewPaymentRepo(db)
	customizations := repository.NewCustomizationRepo(db)
	quotations := repository.NewQuotationRepo(db)
	bookings := repository.NewBookingRepo(db)
	complaints := repository.NewComplaintRepo(db)
	notifications := repository.NewNotificationRepo(db)
	gallery := repository.NewGalleryRepo(db)
	invoices := repository.NewInvoiceRepo(db)
	audit := repository.NewAuditRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens, otps, resets)
	catalogH := handler.NewCatalogHandler(cars, categories, parts)
	orderH := handler.NewOrderHandler(db, orders, parts, coupons, notifications)
	paymentH := handler.NewPaymentHandler(cfg, db, payments, orders, bookings, quotations, notifications)
	couponH := handler.NewCouponHandler(coupons)
	deliveryH := handler.NewDeliveryHandler(db, orders, payments, notifications)
	workflowH := handler.NewWorkflowHandler(cars, customizations, quotations, bookings, notifications)
	providerH := handler.NewProviderHandler(quotations, bookings, notifications)
	supportH := handler.NewSupportHandler(complaints, notifications)
	notificationH := handler.NewNotificationHandler(notifications, rdb)
	adminH := handler.NewAdminHandler(cfg, db, users, orders, parts, notifications, audit)
	galleryH := handler.NewGalleryHandler(gallery)
	invoiceH := handler.NewInvoiceHandler(invoices, orders)

	router.RegisterRoutes(e)
	router.RegisterPublic(e, catalogH, galleryH)
	router.RegisterAuth(e, authH, notificationH, cfg.JWTSecret)
	router.RegisterCustomer(e, orderH, paymentH, couponH, workflowH, supportH, invoiceH, cfg.JWTSecret)
	router.RegisterDelivery(e, deliveryH, cfg.JWTSecret)
	router.RegisterProvider(e, providerH, cfg.JWTSecret)
	router.RegisterSeller(e, catalogH, cfg.JWTSecret)
	router.RegisterSupport(e, supportH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, catalogH, couponH, galleryH, cfg.JWTSecret)

	// The event consumer runs for the life of the process, reconnecting to
	// the broker with backoff.
	go func() {
		if err := queue.StartEventConsumer(cfg.AMQPURL, notifications); err != nil {
			log.Printf("event consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
