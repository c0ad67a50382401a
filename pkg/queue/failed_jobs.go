package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/sofreh/pkg/logger"
)

// FailedJobRecord is the GORM model persisted to the history database so a
// vendor can see which alerts never went out.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"autoCreateTime"`
}

func (FailedJobRecord) TableName() string { return "sofreh_failed_jobs" }

// failedJobDB is the optional backend for persisting failures. Nil means
// in-memory only, which is the case until the dashboard opens its
// history database.
var failedJobDB *gorm.DB

// UseDB configures the queue to persist failed jobs. Call once at boot,
// after the database connects:
//
//	queue.UseDB(database.DB)
func UseDB(db *gorm.DB) {
	failedJobDB = db
	db.AutoMigrate(&FailedJobRecord{})
}

// recordFailure appends to the in-memory failure log and, when a
// database is configured, persists the record there too.
func (m *Manager) recordFailure(job Job, typeName string, lastErr error, attempts int) {
	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{
		Job: job, Err: lastErr, FailedAt: time.Now(), Attempts: attempts,
	})
	m.mu.Unlock()

	if failedJobDB == nil {
		return
	}

	payload, err := json.Marshal(job)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"error": "could not marshal: %v"}`, err))
	}

	record := FailedJobRecord{
		JobType:  typeName,
		Payload:  string(payload),
		Error:    lastErr.Error(),
		Attempts: attempts,
		FailedAt: time.Now(),
	}
	if err := failedJobDB.Create(&record).Error; err != nil {
		// The in-memory log still has the entry.
		logger.Warn("queue: persist failed job", "type", typeName, "error", err)
	}
}
