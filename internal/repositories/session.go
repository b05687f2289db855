package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resume-analyzer/internal/models"
)

// SessionRepository stores session blobs in postgres. It satisfies
// fiber.Storage so the session middleware can use it directly.
type SessionRepository interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
	Reset() error
	Close() error
	DeleteExpired() (int64, error)
}

type sessionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db, now: time.Now}
}

// Get implements fiber.Storage. Missing and expired keys return nil, nil.
func (r *sessionRepository) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	var record models.SessionRecord
	if err := r.db.Where("key = ?", key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	if record.ExpiresAt != nil && !record.ExpiresAt.After(r.now()) {
		if err := r.Delete(key); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return record.Data, nil
}

// Set implements fiber.Storage. A zero exp keeps the session until deleted.
func (r *sessionRepository) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	now := r.now()
	record := models.SessionRecord{
		Key:       key,
		Data:      val,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if exp > 0 {
		expiresAt := now.Add(exp)
		record.ExpiresAt = &expiresAt
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Delete implements fiber.Storage.
func (r *sessionRepository) Delete(key string) error {
	if key == "" {
		return nil
	}

	if err := r.db.Where("key = ?", key).Delete(&models.SessionRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Reset implements fiber.Storage.
func (r *sessionRepository) Reset() error {
	if err := r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.SessionRecord{}).Error; err != nil {
		return fmt.Errorf("failed to reset sessions: %w", err)
	}
	return nil
}

// Close implements fiber.Storage.
func (r *sessionRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

// DeleteExpired removes sessions past their expiry and returns how many went.
func (r *sessionRepository) DeleteExpired() (int64, error) {
	result := r.db.Where("expires_at IS NOT NULL AND expires_at <= ?", r.now()).
		Delete(&models.SessionRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}
