package db

import (
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nexusaquarium/internal/config"
	"nexusaquarium/internal/model"
)

// Models lists every table owned by the service, parents first.
var Models = []interface{}{
	&model.User{},
	&model.UserDevice{},
	&model.UserPreferences{},
}

// Open returns a connected GORM DB instance for the given driver.
// Driver errors are translated so duplicate keys surface as gorm.ErrDuplicatedKey.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverMySQL:
		dialector = mysql.Open(dsn)
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newLogger(log.New("gorm")),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == config.DriverSQLite {
		// sqlite serialises writers; one connection avoids "database is locked".
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// newLogger reports slow queries and failures other than gorm.ErrRecordNotFound.
func newLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// mysqlEmailCollation makes the email unique index byte-exact on MySQL.
const mysqlEmailCollation = "ALTER TABLE users MODIFY email VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL"

// postMigrate returns the dialect specific statements run after AutoMigrate.
func postMigrate(dialect string) []string {
	if dialect == config.DriverMySQL {
		return []string{mysqlEmailCollation}
	}
	return nil
}

// Migrate creates or updates every table in Models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	for _, stmt := range postMigrate(db.Dialector.Name()) {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("post-migrate: %w", err)
		}
	}
	return nil
}

// Reset drops every table in Models, children first.
func Reset(db *gorm.DB) error {
	for i := len(Models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(Models[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
