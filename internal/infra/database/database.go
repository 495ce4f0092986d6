package database

import (
	"fmt"

	"factory-dispatch/internal/config"
	"factory-dispatch/internal/domain"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Open connects to the configured database and migrates the order tables.
func Open(cfg config.Server) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql", "":
		dialector = mysql.Open(cfg.MySQL.DSN())
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database: postgres requires database_url")
		}
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		path := cfg.DatabaseURL
		if path == "" {
			path = "orders.db"
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("database: unknown driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == "sqlite" {
		// one writer; keeps the confirm transaction from hitting SQLITE_BUSY
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Order{}, &domain.OrderItem{}, &domain.StatusHistory{})
}
