package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-resto-ops/internal/config"
	"go-resto-ops/internal/events"
	"go-resto-ops/internal/events/kafka"
	"go-resto-ops/internal/handler"
	"go-resto-ops/internal/model"
	"go-resto-ops/internal/repository"
	"go-resto-ops/internal/service"
	"go-resto-ops/internal/ws"
	"go-resto-ops/pkg/database"
	"go-resto-ops/pkg/jwt"
	applog "go-resto-ops/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	zlog := applog.Must(cfg.Env)
	defer zlog.Sync()

	// 2. Setup Database
	dsn := cfg.DatabaseURL
	if cfg.DBDriver == config.DriverSQLite {
		dsn = cfg.DBPath
	}
	db := database.Connect(database.Options{Driver: cfg.DBDriver, DSN: dsn, Quiet: cfg.IsProduction()})
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	// 3. Seed the first admin profile
	seedAdmin(db, cfg, zlog)

	// 4. Event sinks: websocket hub, plus Kafka when brokers are configured
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	wsHub := ws.NewHub(zlog.Named("ws"))
	go wsHub.Run(ctx)

	publisher := events.Fanout{wsHub}
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix, zlog.Named("kafka"))
		defer kp.Close()
		publisher = append(publisher, kp)
		zlog.Info("kafka publishing enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewStockTransactionRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	profileRepo := repository.NewProfileRepo(db)
	statsRepo := repository.NewStatsRepo(db)

	ledger := service.NewLedgerService(db, productRepo, txRepo, publisher, zlog, cfg.RecentTransactionsLimit)
	productService := service.NewProductService(db, productRepo, ledger, publisher, zlog)
	orderService := service.NewOrderService(db, orderRepo, productRepo, profileRepo, ledger, publisher, zlog, cfg.DecrementStockOnFulfill)
	authService := service.NewAuthService(profileRepo, jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL), zlog)
	teamService := service.NewTeamService(profileRepo, zlog)
	dashService := service.NewDashboardService(statsRepo, txRepo, orderRepo, ledger)
	reportService := service.NewReportService(productRepo, orderRepo, txRepo, zlog)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.AllowOrigins}))

	// 7. Routes
	handler.Register(app, authService, handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Products:  handler.NewProductHandler(productService, ledger),
		Inventory: handler.NewInventoryHandler(ledger),
		Orders:    handler.NewOrderHandler(orderService),
		Team:      handler.NewTeamHandler(teamService),
		Dashboard: handler.NewDashboardHandler(dashService),
		Reports:   handler.NewReportHandler(reportService),
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(c) {
			return
		}
		defer wsHub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Panic("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	stop()
	if err := app.Shutdown(); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}
	zlog.Info("server exited")
}

// seedAdmin creates the configured admin profile when no profile exists yet.
func seedAdmin(db *gorm.DB, cfg *config.Config, zlog *zap.Logger) {
	profiles := repository.NewProfileRepo(db)
	ctx := context.Background()

	n, err := profiles.Count(ctx)
	if err != nil {
		zlog.Warn("failed to count profiles", zap.Error(err))
		return
	}
	if n > 0 {
		return
	}

	admin := &model.Profile{
		Email:     cfg.SeedAdminEmail,
		FirstName: "Restaurant",
		LastName:  "Administrator",
		Role:      model.RoleAdmin,
		IsActive:  true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(cfg.SeedAdminPassword); err != nil {
		zlog.Warn("failed to hash admin password", zap.Error(err))
		return
	}
	if err := profiles.Create(ctx, admin); err != nil {
		zlog.Warn("failed to create admin profile", zap.Error(err))
		return
	}
	zlog.Info("admin profile created", zap.String("email", admin.Email))
}
