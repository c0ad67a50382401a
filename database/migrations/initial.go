package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/sofreh/internal/history"
	"github.com/shashiranjanraj/sofreh/pkg/migration"
)

func init() {
	migration.Register("20260801000000_create_orders_table", &CreateOrdersTable{})
}

// -------- 0001: orders --------

type CreateOrdersTable struct{}

func (m *CreateOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&history.Order{})
}

func (m *CreateOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("orders")
}
