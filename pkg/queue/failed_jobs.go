package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/cafe/pkg/logger"
)

// FailedJobRecord is a job that ran out of attempts.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobID    string    `gorm:"size:36;index"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"autoCreateTime"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

// failedDB is nil until UseDB; failures are then kept in memory only.
var failedDB *gorm.DB

func MigrateFailedJobs(db *gorm.DB) error {
	return db.AutoMigrate(&FailedJobRecord{})
}

func UseDB(db *gorm.DB) {
	failedDB = db
}

// StoredFailedJobs lists persisted failures, newest first.
func StoredFailedJobs(limit int) ([]FailedJobRecord, error) {
	if failedDB == nil {
		return nil, nil
	}
	var out []FailedJobRecord
	err := failedDB.Order("id desc").Limit(limit).Find(&out).Error
	return out, err
}

// Retry pushes a stored failure back onto the queue with a fresh attempt
// count and removes the record.
func Retry(ctx context.Context, id uint) error {
	if failedDB == nil {
		return fmt.Errorf("queue: retry %d: no failed job store", id)
	}
	var rec FailedJobRecord
	if err := failedDB.WithContext(ctx).First(&rec, id).Error; err != nil {
		return fmt.Errorf("queue: retry %d: %w", id, err)
	}
	raw, err := json.Marshal(envelope{ID: rec.JobID, Type: rec.JobType, Payload: json.RawMessage(rec.Payload)})
	if err != nil {
		return fmt.Errorf("queue: retry %d: %w", id, err)
	}
	if err := std.currentDriver().Push(ctx, raw); err != nil {
		return fmt.Errorf("queue: retry %d: %w", id, err)
	}
	return failedDB.WithContext(ctx).Delete(&FailedJobRecord{}, id).Error
}

func (m *Manager) fail(env envelope, cause error) {
	logger.Error("queue: job failed permanently", "type", env.Type, "id", env.ID, "attempts", env.Attempts, "error", cause)

	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{ID: env.ID, Type: env.Type, Err: cause, Attempts: env.Attempts, FailedAt: time.Now()})
	m.mu.Unlock()

	if failedDB == nil {
		return
	}
	rec := FailedJobRecord{
		JobID:    env.ID,
		JobType:  env.Type,
		Payload:  string(env.Payload),
		Error:    cause.Error(),
		Attempts: env.Attempts,
	}
	if err := failedDB.Create(&rec).Error; err != nil {
		logger.Error("queue: store failed job", "type", env.Type, "error", err)
	}
}
