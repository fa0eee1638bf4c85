package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"libranet/internal/config"
	"libranet/internal/handlers"
	"libranet/internal/metrics"
	"libranet/internal/models"
	"libranet/internal/repositories"
	"libranet/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	itemRepo := repositories.NewItemRepository()
	userRepo := repositories.NewUserRepository()
	recordRepo := repositories.NewBorrowRecordRepository()
	fineRepo := repositories.NewFineRepository()

	lendingService := services.NewLendingService(itemRepo, userRepo, recordRepo, fineRepo, cfg.DailyFineRate,
		services.WithBorrowLimit(cfg.EnforceBorrowLimit),
		services.WithDefaultBorrowLimit(cfg.DefaultBorrowLimit),
		services.WithLocation(cfg.Location),
	)

	if cfg.SeedCatalog {
		if err := seed(lendingService); err != nil {
			log.Fatalf("failed to seed catalogue: %v", err)
		}
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(handlers.RequestID(), metrics.GinMiddleware(), handlers.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterRoutes(router, lendingService)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("Starting server on %s (fine rate %s/day, borrow limit enforced=%t)",
		cfg.ServerAddr, cfg.DailyFineRate, cfg.EnforceBorrowLimit)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// seed loads a small demo catalogue and one member.
func seed(svc services.LendingService) error {
	book, err := models.NewBook(101, "Design Patterns", []string{"Gamma", "Helm", "Johnson", "Vlissides"}, 395)
	if err != nil {
		return err
	}
	audio, err := models.NewAudiobook(102, "Clean Code (Audio)", []string{"Robert C. Martin"}, 9*time.Hour, "Narrator A")
	if err != nil {
		return err
	}
	magazine, err := models.NewEMagazine(103, "Tech Monthly", []string{"Editorial Team"}, 15, time.Now())
	if err != nil {
		return err
	}

	for _, item := range []*models.Item{book, audio, magazine} {
		if _, err := svc.AddItem(item); err != nil {
			return err
		}
	}
	if _, err := svc.AddUser(201, "Somen Mishra", 5); err != nil {
		return err
	}
	log.Printf("[INFO] seed: loaded 3 items and 1 user")
	return nil
}
