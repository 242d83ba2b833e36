package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sublethub/sublethub-backend/internal/config"
	"github.com/sublethub/sublethub-backend/internal/domain"
	"github.com/sublethub/sublethub-backend/internal/gateway"
	"github.com/sublethub/sublethub-backend/internal/handler"
	"github.com/sublethub/sublethub-backend/internal/identity"
	"github.com/sublethub/sublethub-backend/internal/mailer"
	"github.com/sublethub/sublethub-backend/internal/middleware"
	"github.com/sublethub/sublethub-backend/internal/repository"
	"github.com/sublethub/sublethub-backend/internal/routes"
	"github.com/sublethub/sublethub-backend/internal/service"
	pkgcache "github.com/sublethub/sublethub-backend/pkg/cache"
	"github.com/sublethub/sublethub-backend/pkg/jwt"
	pkglogger "github.com/sublethub/sublethub-backend/pkg/logger"
	pkgredis "github.com/sublethub/sublethub-backend/pkg/redis"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.Init(env)

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Get().Info().Msg("connected to MySQL")

	// Redis is optional: the cache degrades to a no-op without it
	var cacheSvc pkgcache.Service
	redisClient, err := pkgredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		pkglogger.Get().Warn().Err(err).Msg("Redis unavailable, running without cache")
		cacheSvc = pkgcache.NewService(nil)
	} else {
		cacheSvc = pkgcache.NewService(redisClient)
	}

	// Repositories
	listingRepo := repository.NewListingRepository(db)
	imageRepo := repository.NewListingImageRepository(db)
	savedRepo := repository.NewSavedListingRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	contactRepo := repository.NewContactMessageRepository(db)
	paymentRepo := repository.NewBoostPaymentRepository(db)

	// External clients
	checkoutGateway := gateway.NewStripeGateway(&gateway.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	})
	directory := identity.NewHTTPDirectory(cfg.Identity.BaseURL, cfg.Identity.APIKey)

	var mailSender mailer.Mailer
	if cfg.SMTP.Host != "" {
		mailSender = mailer.NewSMTP(&mailer.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		pkglogger.Get().Warn().Msg("SMTP not configured, mail notifications disabled")
		mailSender = mailer.Noop{}
	}

	// Services
	listingSvc := service.NewListingService(listingRepo, imageRepo, savedRepo, cacheSvc)
	searchSvc := service.NewSearchService(listingRepo, cacheSvc)
	boostSvc := service.NewBoostService(listingRepo, paymentRepo, checkoutGateway, cacheSvc,
		cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)
	messageSvc := service.NewMessageService(messageRepo, contactRepo, listingRepo, directory, mailSender)

	// Handlers
	listingHandler := handler.NewListingHandler(listingSvc)
	searchHandler := handler.NewSearchHandler(searchSvc)
	boostHandler := handler.NewBoostHandler(boostSvc)
	messageHandler := handler.NewMessageHandler(messageSvc)

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	allowOrigins := os.Getenv("CORS_ALLOW_ORIGINS")
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           86400,
	}))

	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	routes.Setup(router, listingHandler, searchHandler, boostHandler, messageHandler, jwtManager)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		pkglogger.Get().Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	pkglogger.Get().Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&domain.Listing{},
		&domain.ListingImage{},
		&domain.SavedListing{},
		&domain.Message{},
		&domain.ContactMessage{},
		&domain.BoostPayment{},
	); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
