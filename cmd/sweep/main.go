package main // One sweep cycle over the gateway's half-way bookings; run from cron

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/amirulhm/cinema-booking-core/internal/config"
	"github.com/amirulhm/cinema-booking-core/internal/gateway"
	"github.com/amirulhm/cinema-booking-core/internal/sweeper"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gw := gateway.New(gateway.Config{
		BaseURL:  cfg.GatewayBaseURL,
		Username: cfg.GatewayUser,
		Password: cfg.GatewayPass,
		Timeout:  cfg.GatewayTimeout,
	}, logger)

	sw := sweeper.New(gw,
		sweeper.WithStaleAfter(time.Duration(cfg.SweepStaleMin)*time.Minute),
		sweeper.WithAutoRelease(cfg.SweepAutoRelease),
		sweeper.WithLogger(logger),
	)

	// The whole cycle gets one deadline; a timed-out cycle is abandoned
	// and the next scheduled run picks the work up again.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	released, err := sw.Sweep(ctx, cfg.SweepWindowStart, cfg.SweepWindowSize)
	if err != nil {
		logger.Fatal("sweep failed", zap.Error(err), zap.Strings("released_before_failure", released))
	}
	logger.Info("sweep completed",
		zap.Int("stale", len(released)),
		zap.Strings("references", released))
}
