package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"techstore/internal/config"
	"techstore/internal/db"
	"techstore/internal/images"
	"techstore/internal/importer"
	productrepo "techstore/internal/repository/product"
	productsvc "techstore/internal/service/product"
)

func main() {
	var (
		filePath string
		imageDir string
	)
	flag.StringVar(&filePath, "file", "", "Path to product CSV file")
	flag.StringVar(&imageDir, "images", "", "Directory holding files named in the image column")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, productsvc.New(productrepo.NewPostgres(pool, nil)))
	if imageDir != "" {
		imp.WithImages(images.NewStore(cfg.ImageDir, cfg.FileURLHost), imageDir)
	}

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed after %d products: %v", count, err)
	}

	fmt.Printf("Imported %d products in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
