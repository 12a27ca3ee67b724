package main

import (
	"context"
	"log"
	"os"

	"techstore/internal/config"
	"techstore/internal/db"
	customerrepo "techstore/internal/repository/customer"
	productrepo "techstore/internal/repository/product"
	tokenrepo "techstore/internal/repository/token"
	"techstore/internal/seed"
	customersvc "techstore/internal/service/customer"
	productsvc "techstore/internal/service/product"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	accounts := customersvc.New(customerrepo.NewPostgres(pool, logger), tokenrepo.NewPostgres(pool))
	products := productsvc.New(productrepo.NewPostgres(pool, logger))
	passwords := seed.Passwords{
		Customer: cfg.SeedCustomerPassword,
		Staff:    cfg.SeedStaffPassword,
		Admin:    cfg.SeedAdminPassword,
	}

	if err := seed.Apply(ctx, accounts, products, passwords, logger); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Println("seed applied")
}
