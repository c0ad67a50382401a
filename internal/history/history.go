// Package history records completed orders in the local database so
// `sofreh orders` works offline. The backing store is pkg/database: a
// sqlite file under the data directory unless DB_DRIVER says otherwise.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/sofreh/pkg/database"
	"github.com/shashiranjanraj/sofreh/pkg/logger"
	"github.com/shashiranjanraj/sofreh/pkg/migration"
	"github.com/shashiranjanraj/sofreh/pkg/orm"
	"github.com/shashiranjanraj/sofreh/pkg/storage"
)

// Order is one recorded order.
type Order struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	UUID           string    `gorm:"uniqueIndex;size:64" json:"uuid"`
	RestaurantID   int       `json:"restaurant_id"`
	RestaurantName string    `json:"restaurant_name"`
	Total          float64   `json:"total"`
	Status         string    `json:"status"` // created | paid | failed
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	CreatedAt      time.Time `json:"created_at"`
}

// Connect opens the database and runs pending migrations. The migration
// files live in database/migrations and register themselves on import.
// Safe to skip: callers that fail here keep working without history.
func Connect() error {
	if err := database.Connect(); err != nil {
		return err
	}
	if err := migration.New(database.DB).Run(); err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

// Ready reports whether the database was connected.
func Ready() bool { return database.DB != nil }

// Record upserts an order by its uuid. Re-recording after payment moves
// the status forward without duplicating the row.
func Record(o Order) error {
	if !Ready() {
		logger.Debug("history: not connected, order not recorded", "uuid", o.UUID)
		return nil
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uuid"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "total", "address", "phone"}),
	}).Create(&o).Error
	if err != nil {
		return fmt.Errorf("history: record %s: %w", o.UUID, err)
	}
	return nil
}

// List returns the most recent orders, newest first.
func List(limit int) ([]Order, error) {
	if !Ready() {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	var orders []Order
	err := orm.DB().Model(&Order{}).Order("created_at DESC").Limit(limit).Get(&orders)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	return orders, nil
}

// Export writes every recorded order as JSON to the named storage disk.
// With disk "s3" that puts the file in the configured bucket, which is
// how a vendor gets the history off the machine.
func Export(disk, path string) (int, error) {
	if !storage.Has(disk) {
		return 0, fmt.Errorf("history: storage disk %q is not configured", disk)
	}

	var orders []Order
	if err := orm.DB().Model(&Order{}).Order("created_at DESC").Get(&orders); err != nil {
		return 0, fmt.Errorf("history: export query: %w", err)
	}

	raw, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("history: export marshal: %w", err)
	}
	if err := storage.Disk(disk).Put(path, raw); err != nil {
		return 0, fmt.Errorf("history: export to %s:%s: %w", disk, path, err)
	}
	return len(orders), nil
}

// Prune drops orders older than the retention window. The dashboard runs
// it on a daily schedule.
func Prune(olderThan time.Duration) (int64, error) {
	if !Ready() {
		return 0, nil
	}

	cutoff := time.Now().Add(-olderThan)
	n, err := orm.DB().Where("created_at < ?", cutoff).Delete(&Order{})
	if err != nil {
		return 0, fmt.Errorf("history: prune: %w", err)
	}
	if n > 0 {
		logger.Info("history: pruned old orders", "removed", n, "cutoff", cutoff.Format(time.RFC3339))
	}
	return n, nil
}
