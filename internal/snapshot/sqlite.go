package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bradykim7/menza/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// statusRecord is one row of the snapshot table
type statusRecord struct {
	UserID    string `gorm:"primaryKey;size:128"`
	FoodID    string `gorm:"primaryKey;size:128"`
	Status    string `gorm:"size:32;not null"`
	UpdatedAt time.Time
}

func (statusRecord) TableName() string {
	return "food_status_snapshots"
}

// SQLiteStore is a Store backed by a SQLite file on the local device
type SQLiteStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// OpenSQLiteStore opens (creating if needed) the snapshot database at path
func OpenSQLiteStore(path string, log *zap.Logger) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	return NewSQLiteStore(db, log)
}

// NewSQLiteStore wraps an existing gorm connection and migrates the schema
func NewSQLiteStore(db *gorm.DB, log *zap.Logger) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&statusRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshot table: %w", err)
	}

	return &SQLiteStore{
		db:  db,
		log: log.Named("snapshot-store"),
	}, nil
}

// Get implements Store
func (s *SQLiteStore) Get(ctx context.Context, key Key) (models.FoodStatus, bool, error) {
	var record statusRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND food_id = ?", key.UserID, key.FoodID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	status, ok := decode(record.Status)
	if !ok {
		s.log.Warn("Ignoring unknown snapshot status",
			zap.String("user_id", key.UserID),
			zap.String("food_id", key.FoodID),
			zap.String("status", record.Status))
	}
	return status, ok, nil
}

// Set implements Store
func (s *SQLiteStore) Set(ctx context.Context, key Key, status models.FoodStatus) error {
	record := statusRecord{
		UserID:    key.UserID,
		FoodID:    key.FoodID,
		Status:    string(status),
		UpdatedAt: time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "food_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Prune implements Store
func (s *SQLiteStore) Prune(ctx context.Context, userID string, keep []string) (int, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(keep) > 0 {
		query = query.Where("food_id NOT IN ?", keep)
	}

	result := query.Delete(&statusRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
