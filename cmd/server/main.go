package main // Entry point for the booking/payment HTTP service

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/amirulhm/cinema-booking-core/internal/config"     // Environment config loader
	"github.com/amirulhm/cinema-booking-core/internal/database"   // MySQL connection
	"github.com/amirulhm/cinema-booking-core/internal/handler"    // HTTP handlers
	"github.com/amirulhm/cinema-booking-core/internal/middleware" // Rate limiting middleware
	"github.com/amirulhm/cinema-booking-core/internal/queue"      // Order event publisher/consumer
	"github.com/amirulhm/cinema-booking-core/internal/repository" // Order and payment-log stores
	"github.com/amirulhm/cinema-booking-core/internal/router"     // Route registration
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use process env
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	orderRepo := repository.NewOrderRepo(db)
	logRepo := repository.NewPaymentLogRepo(db)

	orderHandler := handler.NewOrderHandler(orderRepo, logRepo, queue.PublishOrderConfirmed)
	paymentHandler := handler.NewPaymentHandler(cfg.SecretKey, orderRepo, logRepo)
	adminHandler := handler.NewAdminHandler(paymentHandler, logRepo)
	authHandler := handler.NewAuthHandler(cfg.AdminUser, cfg.AdminPassHash, cfg.JWTSecret, cfg.AccessTTLMin)

	// Rate limiter degrades to a pass-through when Redis is unavailable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Ops-side consumer of order.confirmed events; reconnects on its own.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterBooking(e, orderHandler, paymentHandler, limiter)
	router.RegisterAdmin(e, authHandler, adminHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
