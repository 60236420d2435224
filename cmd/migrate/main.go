package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"rentalscout/internal/config"
	"rentalscout/internal/database"
)

func main() {
	fmt.Println("🗃️  Rental Scout Cache Database Tool")
	fmt.Println("====================================")

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/migrate/main.go <command> [args]")
		fmt.Println("Commands:")
		fmt.Println("  migrate       - Create the database and apply pending migrations")
		fmt.Println("  status        - Show schema version and table sizes")
		fmt.Println("  purge         - Delete expired cache entries")
		fmt.Println("  runs [n]      - Show the last n enrichment runs (default 10)")
		os.Exit(1)
	}

	cfg := config.Load()
	dbPath := cfg.CacheDBPath
	if dbPath == "" {
		dbPath = "./data/rentalscout.db"
	}

	// Opening the database applies any pending migrations.
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "migrate":
		showStatus(ctx, db, dbPath)
		fmt.Println("✅ Database is up to date!")
	case "status":
		showStatus(ctx, db, dbPath)
	case "purge":
		n, err := db.PurgeExpired(ctx)
		if err != nil {
			log.Fatal("Failed to purge cache:", err)
		}
		fmt.Printf("🧹 Removed %d expired cache entries\n", n)
	case "runs":
		limit := 10
		if len(os.Args) >= 3 {
			if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
				limit = n
			}
		}
		showRuns(ctx, db, limit)
	default:
		log.Fatal("Unknown command:", os.Args[1])
	}
}

func showStatus(ctx context.Context, db *database.Database, dbPath string) {
	version, err := db.SchemaVersion(ctx)
	if err != nil {
		log.Fatal("Failed to read schema version:", err)
	}
	stats, err := db.Stats(ctx)
	if err != nil {
		log.Fatal("Failed to read stats:", err)
	}

	fmt.Printf("Database:        %s\n", dbPath)
	fmt.Printf("Schema version:  %d\n", version)
	fmt.Printf("Cache entries:   %d (%d expired)\n", stats.Entries, stats.Expired)
	fmt.Printf("Enrichment runs: %d\n", stats.Runs)
}

func showRuns(ctx context.Context, db *database.Database, limit int) {
	runs, err := db.RecentRuns(ctx, limit)
	if err != nil {
		log.Fatal("Failed to load runs:", err)
	}
	if len(runs) == 0 {
		fmt.Println("No enrichment runs recorded yet.")
		return
	}

	for _, r := range runs {
		status := "✅"
		if r.Error != "" {
			status = "❌"
		} else if !r.Stored {
			status = "⏭️ "
		}
		fmt.Printf("%s %s  %d/%d enriched, %d failed, %s  %s\n",
			status,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Enriched, r.Attempted, r.Failed,
			r.Duration().Round(time.Second),
			r.Key,
		)
		if r.Error != "" {
			fmt.Printf("   error: %s\n", r.Error)
		}
	}
}
