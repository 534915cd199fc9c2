package main

import (
	"errors"
	"flag"
	"log"

	"karmafeed/internal/pkg/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	down := flag.Bool("down", false, "roll back one migration")
	force := flag.Int("force", -1, "force the schema version, then exit")
	dir := flag.String("path", "migrations", "migrations directory")
	flag.Parse()

	config.LoadConfig()
	cfg := config.GlobalConfig.Database
	if cfg.Driver != "postgres" {
		log.Fatalf("migrations target postgres, configured driver is %q", cfg.Driver)
	}

	m, err := migrate.New("file://"+*dir, cfg.URL())
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	switch {
	case *force >= 0:
		if err := m.Force(*force); err != nil {
			log.Fatal("Failed to force version:", err)
		}
		log.Printf("Forced version %d", *force)
		return
	case *down:
		err = m.Steps(-1)
	default:
		err = m.Up()
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			log.Fatalf("Database is dirty at version %d; fix it and rerun with -force %d", dirty.Version, dirty.Version-1)
		}
		log.Fatal(err)
	}

	version, isDirty, _ := m.Version()
	log.Printf("Migration successful, version=%d dirty=%v", version, isDirty)
}
