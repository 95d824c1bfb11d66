package recordstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// storeEntry is one key of the medium.
type storeEntry struct {
	Name      string `gorm:"primaryKey;size:255"`
	Data      string `gorm:"type:text;not null"`
	Version   int64  `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (storeEntry) TableName() string {
	return "store_entries"
}

// GormMedium stores every key as a row of the store_entries table.
type GormMedium struct {
	db *gorm.DB
}

// NewGormMedium wraps an open gorm connection. Call Migrate before first use
// unless the table already exists.
func NewGormMedium(db *gorm.DB) *GormMedium {
	return &GormMedium{db: db}
}

// OpenSQLite opens (creating if needed) a sqlite database file. The path
// ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*GormMedium, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create store directory: %w", err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	// sqlite allows one writer; a single connection also keeps :memory: shared.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	m := NewGormMedium(db)
	if err := m.Migrate(context.Background()); err != nil {
		return nil, err
	}
	return m, nil
}

// OpenPostgres connects to postgres using a DSN or URL.
func OpenPostgres(dsn string) (*GormMedium, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	m := NewGormMedium(db)
	if err := m.Migrate(context.Background()); err != nil {
		return nil, err
	}
	return m, nil
}

// Migrate creates the store_entries table.
func (m *GormMedium) Migrate(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&storeEntry{}); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}
	return nil
}

func (m *GormMedium) Load(ctx context.Context, key string) (Entry, error) {
	var e storeEntry
	if err := m.db.WithContext(ctx).Where("name = ?", key).Take(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Entry{}, ErrKeyNotFound
		}
		return Entry{}, err
	}
	return Entry{Data: []byte(e.Data), Version: Version(e.Version)}, nil
}

func (m *GormMedium) Store(ctx context.Context, key string, data []byte, expected Version) (Version, error) {
	next := expected + 1
	now := time.Now()

	var res *gorm.DB
	if expected == 0 {
		res = m.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&storeEntry{Name: key, Data: string(data), Version: int64(next), UpdatedAt: now})
	} else {
		res = m.db.WithContext(ctx).
			Model(&storeEntry{}).
			Where("name = ? AND version = ?", key, int64(expected)).
			Updates(map[string]interface{}{
				"data":       string(data),
				"version":    int64(next),
				"updated_at": now,
			})
	}
	if res.Error != nil {
		return 0, mapSQLError(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrVersionConflict
	}
	return next, nil
}

func (m *GormMedium) Remove(ctx context.Context, key string) error {
	return m.db.WithContext(ctx).Where("name = ?", key).Delete(&storeEntry{}).Error
}

// Usage counts characters rather than bytes; stored values are JSON text.
func (m *GormMedium) Usage(ctx context.Context) (int64, error) {
	var total int64
	err := m.db.WithContext(ctx).
		Raw("SELECT COALESCE(SUM(LENGTH(name) + LENGTH(data)), 0) FROM store_entries").
		Scan(&total).Error
	return total, err
}

func (m *GormMedium) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// mapSQLError turns disk-full failures into ErrMediumFull.
func mapSQLError(err error) error {
	msg := strings.ToLower(err.Error())
	// sqlite: SQLITE_FULL; postgres: SQLSTATE 53100 disk_full
	if strings.Contains(msg, "database or disk is full") ||
		strings.Contains(msg, "53100") ||
		strings.Contains(msg, "could not extend file") {
		return fmt.Errorf("%w: %v", ErrMediumFull, err)
	}
	return err
}
