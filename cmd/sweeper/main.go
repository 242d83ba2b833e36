package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sublethub/sublethub-backend/internal/config"
	"github.com/sublethub/sublethub-backend/internal/domain"
	"github.com/sublethub/sublethub-backend/internal/middleware"
	"github.com/sublethub/sublethub-backend/internal/repository"
	"github.com/sublethub/sublethub-backend/internal/service"
	pkgcache "github.com/sublethub/sublethub-backend/pkg/cache"
	pkglogger "github.com/sublethub/sublethub-backend/pkg/logger"
	pkgredis "github.com/sublethub/sublethub-backend/pkg/redis"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.Init(env)

	cfg, err := config.Load(configPath(env))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&domain.Listing{}); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	var cacheSvc pkgcache.Service
	redisClient, err := pkgredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		pkglogger.Get().Warn().Err(err).Msg("Redis unavailable, running without cache")
		cacheSvc = pkgcache.NewService(nil)
	} else {
		cacheSvc = pkgcache.NewService(redisClient)
	}

	staleAfter := time.Duration(cfg.Sweeper.StaleAfterDays) * 24 * time.Hour
	sweeper := service.NewSweeperService(repository.NewListingRepository(db), cacheSvc, staleAfter)

	run := func() {
		demoted, err := sweeper.Sweep(context.Background())
		if err != nil {
			pkglogger.Get().Error().Err(err).Msg("sweep failed")
			return
		}
		middleware.CountDemotedListings(demoted)
	}

	if *once {
		run()
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Sweeper.Schedule, run); err != nil {
		log.Fatalf("Invalid sweeper schedule %q: %v", cfg.Sweeper.Schedule, err)
	}
	c.Start()
	pkglogger.Get().Info().Str("schedule", cfg.Sweeper.Schedule).Msg("sweeper started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	pkglogger.Get().Info().Msg("sweeper shutting down")
	<-c.Stop().Done()
}

func configPath(env string) string {
	return "configs/config." + env + ".yaml"
}
