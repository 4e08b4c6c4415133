package main

import (
	"fmt"

	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/database"
	"go-inventory-ledger/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime bundles what every subcommand needs.
type runtime struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func bootstrap(migrate bool) (*runtime, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	db, err := database.Connect(database.Options{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.DSN,
		LogLevel: cfg.Database.LogLevel,
	})
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	log.Info("database connected", zap.String("driver", cfg.Database.Driver))

	if migrate {
		if err := repository.AutoMigrate(db); err != nil {
			_ = database.Close(db)
			_ = log.Sync()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &runtime{cfg: cfg, log: log, db: db}, nil
}

func (r *runtime) close() {
	if err := database.Close(r.db); err != nil {
		r.log.Warn("closing database", zap.Error(err))
	}
	_ = r.log.Sync()
}
