// Package dbexport produces downloadable snapshots of the SQLite database.
package dbexport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	ErrNotConfigured   = errors.New("dbexport: database path not configured")
	ErrNotSQLite       = errors.New("dbexport: database is not an sqlite file")
	ErrDatabaseMissing = errors.New("dbexport: database file not found")
)

var sqliteSuffixes = map[string]bool{".sqlite3": true, ".sqlite": true}

type Exporter struct {
	path    string
	baseDir string
	logger  *zap.Logger
}

// New returns an exporter for the database at path. Relative paths are
// resolved against baseDir.
func New(path, baseDir string, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{path: path, baseDir: baseDir, logger: logger}
}

// Path resolves and checks the configured database file.
func (e *Exporter) Path() (string, error) {
	if e.path == "" {
		return "", ErrNotConfigured
	}
	p := e.path
	if !filepath.IsAbs(p) {
		p = filepath.Join(e.baseDir, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if !sqliteSuffixes[filepath.Ext(abs)] {
		return "", fmt.Errorf("%w: %s", ErrNotSQLite, abs)
	}
	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
		return "", ErrDatabaseMissing
	}
	if err != nil {
		return "", err
	}
	return abs, nil
}

// Snapshot is a consistent copy of the database in a temporary directory.
type Snapshot struct {
	// Name is the download file name, the base name of the live database.
	Name string
	File *os.File
	Size int64
	dir  string
}

// Close closes and removes the snapshot.
func (s *Snapshot) Close() error {
	err := s.File.Close()
	if rmErr := os.RemoveAll(s.dir); err == nil {
		err = rmErr
	}
	return err
}

// Snapshot copies the database with VACUUM INTO, which reads a single
// transaction and so never observes a half-written page.
func (e *Exporter) Snapshot(ctx context.Context) (*Snapshot, error) {
	src, err := e.Path()
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "db_copy_")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	dst := filepath.Join(dir, filepath.Base(src))

	if err := vacuumInto(ctx, src, dst); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	f, err := os.Open(dst)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}

	e.logger.Info("database snapshot ready",
		zap.String("source", src),
		zap.Int64("bytes", info.Size()),
	)
	return &Snapshot{Name: filepath.Base(src), File: f, Size: info.Size(), dir: dir}, nil
}

func vacuumInto(ctx context.Context, src, dst string) error {
	db, err := gorm.Open(sqlite.Open(src+"?_pragma=busy_timeout(5000)"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := db.WithContext(ctx).Exec("VACUUM INTO ?", dst).Error; err != nil {
		return fmt.Errorf("vacuum into snapshot: %w", err)
	}
	return nil
}
