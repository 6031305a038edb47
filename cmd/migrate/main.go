package main

import (
	"errors"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/FabianHardy/stm-v2-sub000/internal/config"
	"github.com/FabianHardy/stm-v2-sub000/internal/logx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logx.New("migrate")
	defer func() { _ = log.Sync() }()

	// golang-migrate selects the pgx driver by DSN scheme
	dsn := strings.Replace(cfg.PostgresDSN, "postgres://", "pgx5://", 1)

	m, err := migrate.New(cfg.MigrationsURL, dsn)
	if err != nil {
		log.Fatal("migrate init", zap.Error(err))
	}
	defer m.Close()

	down := len(os.Args) > 1 && os.Args[1] == "down"
	if down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no change")
		return
	}
	if err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	log.Info("migrated", zap.Bool("down", down))
}
