package main

import (
	"context"
	"flag"
	"os"
	"time"

	config "github.com/anjiri1684/learnlingo/configs"
	"github.com/anjiri1684/learnlingo/catalog"
	"github.com/anjiri1684/learnlingo/database"
	"github.com/anjiri1684/learnlingo/logger"
)

func main() {
	file := flag.String("file", "", "JSON file with teachers to seed; the bundled demo teachers are used when empty")
	flag.Parse()

	std := logger.NewStd("SEED")
	log := logger.NewRollbarLogger(std, logger.RollbarOptions{})

	cfg, err := config.Load()
	if err != nil {
		std.Fatalf("🔥 %v", err)
	}
	if cfg.DemoMode() {
		std.Fatal("🔥 DATABASE_URL is required to seed teachers")
	}

	teachers := catalog.Fixtures()
	if *file != "" {
		raw, err := os.ReadFile(*file)
		if err != nil {
			std.Fatalf("🔥 Failed to read %s: %v", *file, err)
		}
		if teachers, err = catalog.DecodeTeachers(raw); err != nil {
			std.Fatalf("🔥 Failed to parse %s: %v", *file, err)
		}
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		std.Fatalf("🔥 %v", err)
	}
	if err := database.Migrate(db); err != nil {
		std.Fatalf("🔥 %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := catalog.Seed(ctx, database.NewStore(db), teachers, log)
	log.Info("🎉 Seeding finished", map[string]interface{}{
		"added":   report.Added,
		"skipped": report.Skipped,
		"failed":  report.Failed,
		"total":   len(teachers),
	})
	if err != nil {
		std.Fatalf("🔥 %v", err)
	}
}
