package main

import (
	"context"
	"flag"
	"log"
	"os"

	"techstore/internal/config"
	"techstore/internal/db"
	"techstore/internal/migrate"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of migrating up")
	version := flag.Bool("version", false, "print the applied schema version and exit")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	mg, err := migrate.Open(ctx, pool)
	if err != nil {
		logger.Fatalf("open migrator: %v", err)
	}
	defer mg.Close()

	switch {
	case *version:
		v, dirty, err := mg.Version()
		if err != nil {
			logger.Fatalf("read version: %v", err)
		}
		logger.Printf("schema version=%d dirty=%t", v, dirty)
	case *down > 0:
		if err := mg.Down(*down); err != nil {
			logger.Fatalf("roll back migrations: %v", err)
		}
		logger.Printf("rolled back %d migration(s)", *down)
	default:
		if err := mg.Up(); err != nil {
			logger.Fatalf("apply migrations: %v", err)
		}
		logger.Println("migrations applied")
	}
}
