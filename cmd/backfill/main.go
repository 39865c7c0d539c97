package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"nightwatch/backend/config"
	"nightwatch/backend/internal/event"
	"nightwatch/backend/internal/repository"
	"nightwatch/backend/internal/service"
	"nightwatch/backend/pkg/database"
	applogger "nightwatch/backend/pkg/logger"
)

// Standalone entry point for the historical points backfill, for operators
// who prefer a one-shot run over the admin HTTP endpoint. Safe to re-run:
// already-credited bookings are skipped.
func main() {
	var (
		configPath = flag.String("config", "", "path to the config file")
		dryRun     = flag.Bool("dry-run", false, "compute the summary without writing ledger entries")
		timeout    = flag.Duration("timeout", 30*time.Minute, "abort the run after this long")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	}()

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("obtain sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	repo := repository.NewRepository(db)
	// The backfill only replays past lifecycle transitions; no reminders or
	// notifications should fire for them.
	points := service.NewPointsService(repo, event.NopBus{}, logger)
	migration := service.NewMigrationService(repo, points, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	summary, err := migration.Execute(ctx, *dryRun)
	if err != nil {
		logger.Fatal("backfill failed", zap.Error(err))
	}

	fmt.Printf("dry_run:          %v\n", summary.DryRun)
	fmt.Printf("bookings scanned: %d\n", summary.BookingsScanned)
	fmt.Printf("bookings skipped: %d\n", summary.BookingsSkipped)
	fmt.Printf("bookings failed:  %d\n", summary.BookingsFailed)
	fmt.Printf("entries written:  %d\n", summary.EntriesWritten)
	fmt.Printf("points total:     %d\n", summary.PointsTotal)
	fmt.Printf("users affected:   %d\n", summary.UsersAffected)

	if summary.BookingsFailed > 0 {
		os.Exit(2)
	}
}
