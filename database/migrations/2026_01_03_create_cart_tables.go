package migrations

import (
	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260103000000_create_carts_tables", &CreateCartsTables{})
}

type CreateCartsTables struct{}

func (m *CreateCartsTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Cart{}, &models.CartItem{}, &models.CartItemCustomization{})
}

func (m *CreateCartsTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("cart_item_customizations", "cart_items", "carts")
}
