package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/config"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/database"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/services"
)

func main() {
	var (
		dbURLFlag string
		driver    string
		olderThan time.Duration
		dryRun    bool
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.StringVar(&driver, "driver", "postgres", "database driver: postgres or pgx")
	flag.DurationVar(&olderThan, "older-than", 168*time.Hour, "delete drafts not updated within this duration")
	flag.BoolVar(&dryRun, "dry-run", false, "report the number of saved drafts without deleting")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// .env is optional, it keeps secrets off the command line
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}
	if olderThan <= 0 {
		logger.Fatal("-older-than must be positive")
	}

	// minimal config, the full app config needs JWT secrets
	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		Driver:             driver,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	drafts := services.NewDraftPersistenceService(database.NewDraftRepository(db), olderThan, logger)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	before, err := drafts.Count(ctx)
	if err != nil {
		logger.Fatalf("Failed to count drafts: %v", err)
	}

	if dryRun {
		logger.WithField("drafts", before).Info("Dry run, nothing deleted")
		return
	}

	deleted, err := drafts.PurgeOlderThan(ctx, olderThan)
	if err != nil {
		logger.Fatalf("Failed to purge drafts: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"older_than": olderThan.String(),
		"before":     before,
		"deleted":    deleted,
		"remaining":  before - int(deleted),
	}).Info("Stale booking drafts purged")
}
