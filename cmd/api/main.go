package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fruitpos-backend/internal/cache"
	"fruitpos-backend/internal/config"
	"fruitpos-backend/internal/handler"
	"fruitpos-backend/internal/middleware"
	"fruitpos-backend/internal/model"
	"fruitpos-backend/internal/repository"
	"fruitpos-backend/internal/service"
	"fruitpos-backend/internal/ws"
	"fruitpos-backend/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	// 1. Load config
	cfg := config.LoadConfig()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// 2. Setup database
	db := database.ConnectDB(cfg)
	// Schema migrations proper live in cmd/migrate; AutoMigrate here only
	// covers fresh databases.
	if err := db.AutoMigrate(&model.User{}, &model.Product{}, &model.Transaction{}); err != nil {
		logrus.Fatalf("auto-migration failed: %v", err)
	}

	// 3. Seed default admin user
	seedAdmin(db, cfg)

	// 4. Optional Redis cache for analytics
	var analyticsCache *cache.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		analyticsCache = cache.New(rdb)
		logrus.Info("analytics cache enabled")
	}

	// 5. Setup WebSocket hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 6. Dependency injection (wiring layers)
	secret := []byte(cfg.JWTSecret)

	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	userRepo := repository.NewUserRepo(db)

	authService := service.NewAuthService(userRepo, secret)
	catalogService := service.NewCatalogService(productRepo, wsHub)
	salesService := service.NewSalesService(productRepo, txRepo, analyticsCache, wsHub)
	analyticsService := service.NewAnalyticsService(txRepo, analyticsCache)
	userService := service.NewUserService(userRepo)

	authHandler := handler.NewAuthHandler(authService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	salesHandler := handler.NewSalesHandler(salesService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	userHandler := handler.NewUserHandler(userService)

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "FruitPOS Backend v1.0",
	})

	app.Use(logger.New())  // Request logging
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 8. Routes
	api := app.Group("/api")

	// ============ PUBLIC ROUTES ============
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(secret))
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	// Catalog
	protected.Get("/products", catalogHandler.GetProducts)
	protected.Get("/products/:id", catalogHandler.GetProduct)
	protected.Post("/products", adminOnly, catalogHandler.CreateProduct)
	protected.Put("/products/:id/reduce-stock", salesHandler.ReduceStock)
	protected.Put("/products/:id", adminOnly, catalogHandler.UpdateProduct)
	protected.Delete("/products/:id", adminOnly, catalogHandler.DeleteProduct)

	// Ledger
	protected.Get("/transactions", salesHandler.GetTransactions)
	protected.Post("/transactions", salesHandler.CreateTransaction)

	// Analytics
	protected.Get("/analytics/summary", analyticsHandler.GetSummary)
	protected.Get("/analytics/best-selling", analyticsHandler.GetBestSelling)
	protected.Get("/analytics/daily-sales", analyticsHandler.GetDailySales)

	// User management (admin only)
	protected.Get("/users", adminOnly, userHandler.GetUsers)
	protected.Get("/users/:id", adminOnly, userHandler.GetUser)
	protected.Put("/users/:id", adminOnly, userHandler.UpdateUser)
	protected.Delete("/users/:id", adminOnly, userHandler.DeleteUser)

	// WebSocket route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			logrus.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	logrus.Info("Server exited")
}

// seedAdmin creates the default admin account if no admin exists yet
func seedAdmin(db *gorm.DB, cfg *config.Config) {
	var count int64
	db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}

	admin := &model.User{
		Username: cfg.AdminUser,
		Role:     model.RoleAdmin,
	}
	if err := admin.SetPassword(cfg.AdminPass); err != nil {
		logrus.Warnf("failed to hash admin password: %v", err)
		return
	}

	if err := db.Create(admin).Error; err != nil {
		logrus.Warnf("failed to create admin user: %v", err)
	} else {
		logrus.Infof("admin user created: %s", cfg.AdminUser)
	}
}
