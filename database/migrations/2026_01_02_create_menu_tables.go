package migrations

import (
	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260102000000_create_categories_table", &CreateCategoriesTable{})
	migration.Register("20260102000001_create_customizations_tables", &CreateCustomizationsTables{})
	migration.Register("20260102000002_create_products_tables", &CreateProductsTables{})
}

// -------- categories --------

type CreateCategoriesTable struct{}

func (m *CreateCategoriesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Category{})
}

func (m *CreateCategoriesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("categories")
}

// -------- customizations + options --------

type CreateCustomizationsTables struct{}

func (m *CreateCustomizationsTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Customization{}, &models.CustomizationOption{})
}

func (m *CreateCustomizationsTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("customization_options", "customizations")
}

// -------- products + link tables --------

type CreateProductsTables struct{}

func (m *CreateProductsTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{}, &models.ProductCategory{}, &models.ProductCustomization{})
}

func (m *CreateProductsTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("product_customizations", "product_categories", "products")
}
