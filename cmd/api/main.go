package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/roamly/roamly-backend/internal/config"
	"github.com/roamly/roamly-backend/internal/gateway"
	"github.com/roamly/roamly-backend/internal/handler"
	"github.com/roamly/roamly-backend/internal/middleware"
	"github.com/roamly/roamly-backend/internal/migration"
	"github.com/roamly/roamly-backend/internal/repository"
	"github.com/roamly/roamly-backend/internal/routes"
	"github.com/roamly/roamly-backend/internal/service"
	pkgcache "github.com/roamly/roamly-backend/pkg/cache"
	"github.com/roamly/roamly-backend/pkg/jwt"
	pkglogger "github.com/roamly/roamly-backend/pkg/logger"
	pkgredis "github.com/roamly/roamly-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           Roamly Backend API
// @version         1.0
// @description     Roamly Tour Marketplace - Backend API
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	pkglogger.Info("Connected to Redis")

	cacheService := pkgcache.NewService(redisClient)

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn, cfg.JWT.RefreshIn)

	stripeGateway := gateway.NewStripeGateway(&gateway.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		APIBase:       cfg.Stripe.APIBase,
	})

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tourRepo := repository.NewTourRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	blogRepo := repository.NewBlogRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, jwtManager)
	tourService := service.NewTourService(tourRepo, userRepo)
	bookingService := service.NewBookingService(bookingRepo, tourRepo, userRepo)
	subscriptionService := service.NewSubscriptionService(
		subscriptionRepo, userRepo, paymentRepo, bookingRepo,
		stripeGateway, cacheService, cfg.Frontend.URL,
	)
	paymentService := service.NewPaymentService(paymentRepo, bookingRepo, stripeGateway)
	blogService := service.NewBlogService(blogRepo, userRepo, subscriptionRepo)

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = cfg.Frontend.URL
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "Stripe-Signature"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           86400,
	}))

	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "roamly-backend",
			"time":    time.Now().Unix(),
		})
	})

	routes.Setup(router, &routes.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Tour:         handler.NewTourHandler(tourService),
		Booking:      handler.NewBookingHandler(bookingService),
		Subscription: handler.NewSubscriptionHandler(subscriptionService),
		Payment:      handler.NewPaymentHandler(paymentService),
		Blog:         handler.NewBlogHandler(blogService),
	}, jwtManager, subscriptionService)

	// Periodic sweep for subscriptions whose period lapsed without a
	// deletion webhook (missed deliveries, provider outages).
	go runExpirySweep(subscriptionService)

	go reportDBConnections(db)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.Info("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initDB opens the MySQL connection with pool settings
func initDB(cfg *config.Config) (*gorm.DB, error) {
	mysqlCfg, err := mysqldriver.ParseDSN(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("invalid DSN: %w", err)
	}
	if mysqlCfg.Params == nil {
		mysqlCfg.Params = map[string]string{}
	}
	// Booking dates and billing periods are stored in UTC
	mysqlCfg.Params["time_zone"] = "'+00:00'"

	logMode := gormlogger.Warn
	if cfg.IsDevelopment() {
		logMode = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(mysqlCfg.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func runExpirySweep(subs service.SubscriptionService) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := subs.ExpireLapsedSubscriptions(ctx)
		cancel()
		if err != nil {
			pkglogger.Error("Subscription expiry sweep failed: %v", err)
			continue
		}
		if n > 0 {
			pkglogger.Info("Expired %d lapsed subscriptions", n)
		}
	}
}

func reportDBConnections(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	for range time.Tick(15 * time.Second) {
		middleware.SetDBConnectionsActive(float64(sqlDB.Stats().OpenConnections))
	}
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
