package query

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"taskboard/config"
	"taskboard/logutils"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB opens the configured database and stores the handle in DB.
func InitDB(dbConfig *config.DatabaseConfig) error {
	dialector, err := Dialector(dbConfig)
	if err != nil {
		return err
	}
	db, err := Open(dialector)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	if dbConfig.Driver == config.DriverSQLite {
		// sqlite serializes writers; a single connection avoids SQLITE_BUSY under load
		sqlDB.SetMaxOpenConns(1)
	}

	DB = db
	logutils.Log.Infof("%s init success!", dbConfig.Driver)
	return nil
}

// Open wraps gorm.Open with the options every connection in this service uses.
// TranslateError turns dialect-specific unique violations into gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", dialector.Name(), err)
	}
	return db, nil
}

// Dialector builds the gorm dialector for the configured driver.
func Dialector(dbConfig *config.DatabaseConfig) (gorm.Dialector, error) {
	switch dbConfig.Driver {
	case config.DriverPostgres:
		return postgres.Open(DSN(dbConfig)), nil
	case config.DriverMySQL:
		return mysql.Open(DSN(dbConfig)), nil
	case config.DriverSQLite:
		if dir := filepath.Dir(dbConfig.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("db: create %s: %w", dir, err)
			}
		}
		return sqlite.Open(DSN(dbConfig)), nil
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", dbConfig.Driver)
	}
}

// DSN renders the connection string for the configured driver.
func DSN(dbConfig *config.DatabaseConfig) string {
	switch dbConfig.Driver {
	case config.DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.DBName)
	case config.DriverSQLite:
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", dbConfig.Path)
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			dbConfig.Host, dbConfig.User, dbConfig.Password, dbConfig.DBName, dbConfig.Port,
			dbConfig.SSLMode, dbConfig.TimeZone)
	}
}
