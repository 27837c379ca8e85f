package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "retail-sales-lab/internal/errors"
)

// Supported drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config captures where generated orders are stored when persistence is on.
type Config struct {
	Enabled   bool   `yaml:"enabled"`
	Driver    string `yaml:"driver" validate:"oneof=mysql sqlite"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	Database  string `yaml:"database"`
	Params    string `yaml:"params"`
	Path      string `yaml:"path"`
	BatchSize int    `yaml:"batch_size" split_words:"true" validate:"gte=1"`
}

// DefaultConfig points at a local SQLite file. The MySQL settings target a
// local server with a dedicated "sales" account.
func DefaultConfig() Config {
	return Config{
		Driver:    DriverSQLite,
		User:      "sales",
		Password:  "sales",
		Host:      "127.0.0.1",
		Port:      "3306",
		Database:  "retail_sales",
		Params:    "charset=utf8mb4&parseTime=True&loc=Local",
		Path:      "sales.db",
		BatchSize: 1000,
	}
}

// DSN renders the driver-specific connection string.
func (c Config) DSN() (string, error) {
	switch c.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s",
			c.User,
			c.Password,
			c.Host,
			c.Port,
			c.Database,
			c.Params,
		), nil
	case DriverSQLite:
		return c.Path, nil
	default:
		return "", fmt.Errorf("unsupported driver %q", c.Driver)
	}
}

// Open returns a gorm DB using the provided configuration.
func Open(cfg Config) (*gorm.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	if cfg.Driver == DriverMySQL {
		dialector = mysql.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	gdb, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, apperrors.NewStorageError("open database", err).WithContext("driver", cfg.Driver)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	if cfg.Driver == DriverSQLite {
		// one connection keeps ":memory:" databases alive and avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	return gdb, nil
}

// Close releases the underlying connection pool.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
