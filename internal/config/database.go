package config

import (
	"fmt"

	"gamereview/pkg/kvstore"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenStore opens the key/value store selected by cfg.StorageDriver.
func OpenStore(cfg Config) (kvstore.Store, error) {
	var dialector gorm.Dialector
	switch cfg.StorageDriver {
	case "memory":
		return kvstore.NewMemoryStore(), nil
	case "sqlite":
		dialector = sqlite.Open(cfg.StorageDSN)
	case "postgres":
		dialector = postgres.Open(cfg.StorageDSN)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.StorageDriver, err)
	}
	return kvstore.NewGORMStore(db)
}
