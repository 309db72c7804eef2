package datasources

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"finid.backend/internal/config"
	pgconn "finid.backend/internal/infrastructure/datasources/postgres"
	"finid.backend/internal/infrastructure/models"
)

var newPostgresConn = pgconn.NewConnection

// Open connects to the configured database and returns a GORM handle.
// DB_DRIVER=sqlite opens a local file with foreign keys enforced.
func Open(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}
	if debug {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	if cfg.IsSQLite() {
		db, err := gorm.Open(sqlite.Open(sqliteDSN(cfg.SQLitePath)), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return db, nil
	}

	sqlDB, err := newPostgresConn(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}
	return db, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on"
	}
	return path + "?_foreign_keys=on"
}

// Migrate creates or updates the users, user_profiles and kyc_documents tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Profile{}, &models.KycDocument{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
