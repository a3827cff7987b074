package migrations

import (
	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/pkg/migration"
	"github.com/shashiranjanraj/cafe/pkg/queue"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260104000000_create_orders_tables", &CreateOrdersTables{})
	migration.Register("20260104000001_create_failed_jobs_table", &CreateFailedJobsTable{})
}

// -------- orders + items --------

type CreateOrdersTables struct{}

func (m *CreateOrdersTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.OrderItemCustomization{})
}

func (m *CreateOrdersTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_item_customizations", "order_items", "orders")
}

// -------- failed_jobs --------

type CreateFailedJobsTable struct{}

func (m *CreateFailedJobsTable) Up(db *gorm.DB) error {
	return queue.MigrateFailedJobs(db)
}

func (m *CreateFailedJobsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("failed_jobs")
}
