package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flokiorg/appinion/db/migrations"
	"github.com/flokiorg/appinion/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func NewDB(uri string, logDBQueries bool) (*gorm.DB, error) {
	if !isMemoryURI(uri) {
		if err := os.MkdirAll(filepath.Dir(uri), os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: gormlogger.Discard,
	}
	if logDBQueries {
		gormConfig.Logger = gormlogger.New(
			&logger.Logger,
			gormlogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  gormlogger.Info,
				IgnoreRecordNotFoundError: true,
			},
		)
	}

	gormDB, err := gorm.Open(sqlite.Open(withPragmas(uri)), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve sql db: %w", err)
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	if err := migrations.Migrate(gormDB); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to migrate database")
		return nil, err
	}

	return gormDB, nil
}

func Stop(gormDB *gorm.DB) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to get database connection")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to close database connection")
		return
	}
	logger.Logger.Info().Msg("Database connection closed")
}

func isMemoryURI(uri string) bool {
	return uri == ":memory:" || strings.HasPrefix(uri, "file:")
}

func withPragmas(uri string) string {
	if isMemoryURI(uri) {
		return uri
	}
	return uri + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
}
