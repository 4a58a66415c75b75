package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"expense-api/internal/config"
	"expense-api/internal/db"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const usage = "usage: migrate [up|down|version]"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadMigrateConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	m, err := db.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("init migrator", zap.Error(err))
	}
	defer m.Close()

	if err := run(m, command, logger); err != nil {
		logger.Fatal("migrate", zap.String("command", command), zap.Error(err))
	}
}

func run(m *migrate.Migrate, command string, logger *zap.Logger) error {
	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
	case "down":
		if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
	case "version":
	default:
		return errors.New(usage)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		logger.Info("no migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	logger.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
