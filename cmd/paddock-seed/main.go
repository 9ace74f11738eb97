package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CaioWing/paddock/internal/config"
	"github.com/CaioWing/paddock/internal/repository/postgres"
	"github.com/CaioWing/paddock/internal/seed"
	"github.com/CaioWing/paddock/internal/service"
)

func main() {
	path := flag.String("file", "deploy/seed.yaml", "YAML fixture with users and listings")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(log, *path); err != nil {
		log.Error("seed failed", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, path string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fixture, err := seed.LoadFile(path)
	if err != nil {
		return err
	}

	if err := postgres.RunMigrations(cfg.DB.DSN()); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	identity := service.NewIdentityService(postgres.NewUserRepo(pool), nil, log)
	res, err := seed.Apply(ctx, fixture, identity, postgres.NewListingRepo(pool), log)
	if err != nil {
		return err
	}

	log.Info("seed complete",
		"file", path,
		"users_created", res.UsersCreated,
		"users_skipped", res.UsersSkipped,
		"listings_created", res.ListingsCreated,
	)
	return nil
}
