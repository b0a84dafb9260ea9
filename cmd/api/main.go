package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/livestockhub/marketplace-api/internal/config"
	"github.com/livestockhub/marketplace-api/internal/handler"
	"github.com/livestockhub/marketplace-api/internal/middleware"
	"github.com/livestockhub/marketplace-api/internal/model"
	"github.com/livestockhub/marketplace-api/internal/repository"
	"github.com/livestockhub/marketplace-api/internal/service"
	"github.com/livestockhub/marketplace-api/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	amqpCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer amqpCh.Close()

	if err := worker.SetupRabbitMQ(amqpCh); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	// Repositories
	userRepo := repository.NewUserRepository(dbPool)
	categoryRepo := repository.NewCategoryRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	cartRepo := repository.NewCartRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)
	notificationRepo := repository.NewNotificationRepository(dbPool)
	reportRepo := repository.NewReportRepository(dbPool)

	// Services
	notifier := service.NewAMQPNotifier(amqpCh, worker.NotificationQueue, log)
	authSvc := service.NewAuthService(userRepo, notifier, cfg.JWT.Secret, cfg.JWT.Expiration)
	catalogSvc := service.NewCatalogService(categoryRepo)
	productSvc := service.NewProductService(productRepo, catalogSvc, redisClient)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	orderSvc := service.NewOrderService(orderRepo, cartRepo, productRepo, notifier, redisClient, model.CancelFromAnyActive)
	notificationSvc := service.NewNotificationService(notificationRepo)
	reportSvc := service.NewReportService(reportRepo)
	adminSvc := service.NewAdminService(userRepo, orderRepo, reportRepo, notifier)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	categoryH := handler.NewCategoryHandler(catalogSvc)
	productH := handler.NewProductHandler(productSvc)
	cartH := handler.NewCartHandler(cartSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	notificationH := handler.NewNotificationHandler(notificationSvc)
	reportH := handler.NewReportHandler(reportSvc)
	adminH := handler.NewAdminHandler(adminSvc)
	healthH := handler.NewHealthHandler(dbPool, redisClient, amqpConn)

	// Worker
	notificationWorker := worker.NewNotificationWorker(amqpCh, notificationRepo, redisClient, log)

	authRequired := middleware.AuthMiddleware(cfg.JWT.Secret)

	// Router
	router := gin.Default()
	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)

		// Public catalog
		v1.GET("/products", productH.List)
		v1.GET("/products/:id", productH.GetByID)
		v1.GET("/categories", categoryH.ListRoots)
		v1.GET("/categories/search", categoryH.Search)
		v1.GET("/categories/:id/subcategories", categoryH.Subcategories)
		v1.GET("/livestock-types", categoryH.LivestockTypes)
		v1.GET("/livestock-types/:type/animal-types", categoryH.AnimalTypes)

		profile := v1.Group("/profile", authRequired)
		profile.GET("", authH.GetProfile)
		profile.PUT("", authH.UpdateProfile)

		cart := v1.Group("/cart", authRequired)
		cart.GET("", cartH.Get)
		cart.POST("/items", cartH.AddItem)
		cart.PUT("/items/:id", cartH.UpdateItem)
		cart.DELETE("/items/:id", cartH.RemoveItem)
		cart.DELETE("", cartH.Clear)

		orders := v1.Group("/orders", authRequired)
		orders.POST("/checkout", orderH.Checkout)
		orders.GET("", orderH.ListMine)
		orders.GET("/:id", orderH.GetByID)
		orders.PUT("/:id/status", orderH.UpdateStatus)

		notifications := v1.Group("/notifications", authRequired)
		notifications.GET("", notificationH.List)
		notifications.PUT("/:id/read", notificationH.MarkRead)
		notifications.GET("/unread-count", notificationH.UnreadCount)

		seller := v1.Group("/seller", authRequired, middleware.RequireRole(model.RoleSeller), middleware.ApprovedSellerOnly(userRepo))
		seller.GET("/profile", authH.GetSellerProfile)
		seller.PUT("/profile", authH.UpdateSellerProfile)
		seller.GET("/products", productH.ListMine)
		seller.POST("/products", productH.Create)
		seller.PUT("/products/:id", productH.Update)
		seller.DELETE("/products/:id", productH.Delete)
		seller.PUT("/products/:id/active", productH.SetActive)
		seller.GET("/orders", orderH.ListForSeller)
		seller.PUT("/order-items/:id/status", orderH.UpdateItemStatus)
		seller.GET("/reports", reportH.SellerReport)

		admin := v1.Group("/admin", authRequired, middleware.RequireRole(model.RoleAdmin))
		admin.GET("/dashboard", adminH.Dashboard)
		admin.GET("/users", adminH.ListUsers)
		admin.PUT("/users/:id/approve", adminH.ApproveSeller)
		admin.PUT("/users/:id/active", adminH.SetUserActive)
		admin.GET("/orders", orderH.ListAll)
		admin.PUT("/orders/:id/status", orderH.UpdateStatus)
		admin.POST("/categories", categoryH.Create)
		admin.PUT("/categories/:id/active", categoryH.SetActive)
		admin.PUT("/products/:id", productH.Update)
		admin.DELETE("/products/:id", productH.Delete)
		admin.PUT("/products/:id/active", productH.SetActive)
		admin.GET("/reports", reportH.AdminReport)
	}

	if err := notificationWorker.Start(ctx); err != nil {
		log.Error("start notification worker", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	notificationWorker.Stop()
	time.Sleep(500 * time.Millisecond)
	cancel()
	log.Info("server stopped")
}
