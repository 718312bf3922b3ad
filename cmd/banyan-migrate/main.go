// Command banyan-migrate applies or rolls back database schema
// migrations.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/scrypster/banyan/internal/config"
	"github.com/scrypster/banyan/internal/storage"
)

var (
	engine     = flag.String("engine", "", "Storage engine: sqlite or postgres (defaults to config)")
	dsn        = flag.String("dsn", "", "Database DSN (defaults to config)")
	dir        = flag.String("dir", "", "Migrations directory (defaults to config)")
	up         = flag.Bool("up", false, "Apply all pending migrations")
	down       = flag.Bool("down", false, "Roll back the most recent migration")
	versionCmd = flag.Bool("version", false, "Print the current migration version and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	engineFinal := cfg.Storage.StorageEngine
	if *engine != "" {
		engineFinal = *engine
	}

	var driver, dsnFinal string
	switch engineFinal {
	case "sqlite":
		driver = "sqlite"
		dsnFinal = cfg.Storage.DataPath + "/banyan.db"
	case "postgres":
		driver = "postgres"
		dsnFinal = cfg.Storage.PostgresURL
	default:
		log.Fatalf("Unknown storage engine: %s", engineFinal)
	}
	if *dsn != "" {
		dsnFinal = *dsn
	}

	dirFinal := cfg.Storage.MigrationsPath
	if *dir != "" {
		dirFinal = *dir
	}

	db, err := sql.Open(driver, dsnFinal)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	mgr, err := storage.NewMigrationManager(db, dirFinal, engineFinal)
	if err != nil {
		log.Fatalf("Failed to create migration manager: %v", err)
	}

	switch {
	case *up:
		if err := mgr.Up(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations applied")
	case *down:
		if err := mgr.Down(); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		log.Println("Rolled back one migration")
	case *versionCmd:
		version, dirty, err := mgr.Version()
		if err != nil {
			log.Fatalf("Failed to read version: %v", err)
		}
		fmt.Printf("Version: %d (dirty: %v)\n", version, dirty)
	default:
		flag.Usage()
		os.Exit(2)
	}
}
