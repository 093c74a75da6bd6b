package datastore

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/conf"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStore implements Interface for SQLite databases.
type SQLiteStore struct {
	Settings *conf.Settings
	DataStore
}

// getDiskSpace returns available disk space for the given path.
func getDiskSpace(path string) (uint64, error) {
	availableSpace, err := getDiskFreeSpace(filepath.Dir(path))
	if err != nil {
		return 0, vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "get_disk_space").
			Context("path", filepath.Dir(path)).
			Build()
	}
	return availableSpace, nil
}

// checkWritePermission checks if we have write permission to the directory.
func checkWritePermission(path string) error {
	tempFile := filepath.Join(filepath.Dir(path), ".tmp_write_test")
	f, err := os.OpenFile(tempFile, os.O_CREATE|os.O_WRONLY, 0o666)
	if err != nil {
		return vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "check_write_permission").
			Context("directory", filepath.Dir(path)).
			Build()
	}
	if err := f.Close(); err != nil {
		log.Printf("Failed to close temp file: %v", err)
	}
	if err := os.Remove(tempFile); err != nil {
		log.Printf("Failed to remove temp file: %v", err)
	}
	return nil
}

// createBackup creates a timestamped backup of the SQLite database file.
func (s *SQLiteStore) createBackup(dbPath string) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil // nothing to back up yet
	}

	dbInfo, err := os.Stat(dbPath)
	if err != nil {
		return vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "get_database_file_info").
			Context("db_path", dbPath).
			Build()
	}

	availableSpace, err := getDiskSpace(dbPath)
	if err != nil {
		return err
	}

	requiredSpace := uint64(dbInfo.Size()) + 1024*1024
	if availableSpace < requiredSpace {
		return vsgerrors.Newf("insufficient disk space for backup").
			Kind(vsgerrors.IoError).
			Context("operation", "create_backup").
			Context("required_bytes", requiredSpace).
			Context("available_bytes", availableSpace).
			Build()
	}

	if err := checkWritePermission(dbPath); err != nil {
		return err
	}

	timestamp := time.Now().Format("20060102_150405")
	backupPath := fmt.Sprintf("%s.backup_%s", dbPath, timestamp)

	source, err := os.Open(dbPath)
	if err != nil {
		return vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "open_source_database").
			Context("db_path", dbPath).
			Build()
	}
	defer func() {
		if err := source.Close(); err != nil {
			log.Printf("Failed to close source database: %v", err)
		}
	}()

	destination, err := os.Create(backupPath)
	if err != nil {
		return vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "create_backup_file").
			Context("backup_path", backupPath).
			Build()
	}
	defer func() {
		if err := destination.Close(); err != nil {
			log.Printf("Failed to close backup file: %v", err)
		}
	}()

	if _, err := io.Copy(destination, source); err != nil {
		return vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "copy_database").
			Context("source", dbPath).
			Context("destination", backupPath).
			Build()
	}

	log.Printf("Created database backup: %s", backupPath)
	return nil
}

// Open initializes the SQLite database connection and runs migrations.
func (s *SQLiteStore) Open() error {
	dbPath := s.Settings.Store.Path

	getLogger().Info("Opening SQLite database", "path", dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "create_database_directory").
			Context("directory", filepath.Dir(dbPath)).
			Build()
	}

	var gormLogger logger.Interface
	if s.Settings.Debug {
		gormLogger = NewGormLogger(100*time.Millisecond, logger.Info, s.metrics)
		datastoreLevelVar.Set(slog.LevelDebug)
	} else {
		gormLogger = NewGormLogger(200*time.Millisecond, logger.Warn, s.metrics)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "open_sqlite_database").
			Context("db_path", dbPath).
			Build()
	}

	sqlDB, err := db.DB()
	if err != nil {
		return vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "get_underlying_sqldb").
			Build()
	}

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-4000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			log.Printf("Warning: Failed to set pragma %s: %v", pragma, err)
		}
	}

	s.DB = db

	getLogger().Info("SQLite database opened successfully",
		"path", dbPath, "journal_mode", "WAL", "synchronous", "NORMAL")

	if err := performAutoMigration(db, s.Settings.Debug, "sqlite", dbPath); err != nil {
		return err
	}

	return nil
}

// Backup writes a timestamped copy of the database file alongside the
// original, skipping the copy if no database file exists yet.
func (s *SQLiteStore) Backup() error {
	return s.createBackup(s.Settings.Store.Path)
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.DB == nil {
		return nil
	}

	getLogger().Info("Closing SQLite database", "path", s.Settings.Store.Path)

	sqlDB, err := s.DB.DB()
	if err != nil {
		return vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "get_underlying_sqldb").
			Build()
	}

	if err := sqlDB.Close(); err != nil {
		getLogger().Error("Failed to close SQLite database",
			"path", s.Settings.Store.Path, "error", err)
		return err
	}

	getLogger().Info("SQLite database closed successfully", "path", s.Settings.Store.Path)
	return nil
}

// Optimize runs ANALYZE and VACUUM to keep the job history database lean.
func (s *SQLiteStore) Optimize(ctx context.Context) error {
	if s.DB == nil {
		return vsgerrors.Newf("database connection is not initialized").
			Kind(vsgerrors.InvalidPlan).
			Context("operation", "optimize").
			Build()
	}

	optimizeStart := time.Now()
	optimizeLogger := getLogger().With("operation", "optimize", "db_type", "sqlite")
	optimizeLogger.Info("Starting database optimization")

	if ctx.Err() != nil {
		return vsgerrors.New(ctx.Err()).
			Kind(vsgerrors.Cancelled).
			Context("operation", "optimize").
			Build()
	}

	if err := s.DB.WithContext(ctx).Exec("ANALYZE").Error; err != nil {
		enhancedErr := vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "analyze").
			Build()
		optimizeLogger.Error("ANALYZE failed", "error", enhancedErr)
		return enhancedErr
	}

	if err := s.DB.WithContext(ctx).Exec("VACUUM").Error; err != nil {
		enhancedErr := vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "vacuum").
			Build()
		optimizeLogger.Error("VACUUM failed", "error", enhancedErr)
		return enhancedErr
	}

	optimizeLogger.Info("Database optimization completed", "total_duration", time.Since(optimizeStart))
	return nil
}
