package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"magazine-catalog-api/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// OpenDB connects to the database selected by DB_DRIVER.
func OpenDB(s Settings) (*gorm.DB, error) {
	// In production, suppress SQL logs unless explicitly re-enabled via DEBUG_SQL=true.
	logLevel := logger.Info
	if s.IsProduction() && !s.DebugSQL {
		logLevel = logger.Warn
	}

	cfg := &gorm.Config{
		Logger: logger.New(
			log.New(LogWriter, "\r\n", log.LstdFlags),
			logger.Config{LogLevel: logLevel},
		),
	}

	switch s.DBDriver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(s.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("ensure data dir: %w", err)
		}
		return gorm.Open(sqlite.Open(s.DBPath+"?_foreign_keys=on"), cfg)
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			s.DBUsername,
			s.DBPassword,
			s.DBHost,
			s.DBPort,
			s.DBDatabase,
		)
		return gorm.Open(mysql.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", s.DBDriver)
	}
}

// Migrate creates or updates every table the catalog owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Magazine{},
		&models.Issue{},
		&models.Game{},
		&models.Tag{},
		&models.Article{},
		&models.ImportRun{},
		&models.OcrRecord{},
	)
}

// InitDB opens and migrates the database, storing it in DB.
func InitDB(s Settings) {
	var err error

	DB, err = OpenDB(s)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	Logger.WithField("driver", s.DBDriver).Info("Database connected successfully")
}
