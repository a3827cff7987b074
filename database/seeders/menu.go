package seeders

import (
	"github.com/shashiranjanraj/cafe/app/models"
	"gorm.io/gorm"
)

func init() {
	Register("menu", SeedMenu)
}

type seedProduct struct {
	name           string
	description    string
	price          float64
	stock          int
	categories     []string
	customizations []string
}

var (
	seedCategories = []models.Category{
		{Name: "Hot Coffee", Description: "Espresso based drinks", DisplayOrder: 1, IsActive: true},
		{Name: "Cold Drinks", Description: "Iced coffee and tea", DisplayOrder: 2, IsActive: true},
		{Name: "Pastries", Description: "Baked fresh every morning", DisplayOrder: 3, IsActive: true},
	}

	two = 2

	seedCustomizations = []models.Customization{
		{Name: "Size", Type: models.CustomizationSingleSelect, Required: true, DisplayOrder: 1,
			Options: []models.CustomizationOption{
				{Name: "Small", PriceModifier: 0, IsDefault: true, DisplayOrder: 1},
				{Name: "Medium", PriceModifier: 20, DisplayOrder: 2},
				{Name: "Large", PriceModifier: 40, DisplayOrder: 3},
			}},
		{Name: "Milk", Type: models.CustomizationSingleSelect, DisplayOrder: 2,
			Options: []models.CustomizationOption{
				{Name: "Whole", IsDefault: true, DisplayOrder: 1},
				{Name: "Oat", PriceModifier: 25, DisplayOrder: 2},
				{Name: "Almond", PriceModifier: 25, DisplayOrder: 3},
			}},
		{Name: "Extra shots", Type: models.CustomizationQuantity, DisplayOrder: 3,
			MaxQuantity: &two, PricePerUnit: 30},
	}

	seedProducts = []seedProduct{
		{"Americano", "Espresso topped with hot water", 120, 100, []string{"Hot Coffee"}, []string{"Size", "Extra shots"}},
		{"Latte", "Espresso with steamed milk", 140, 100, []string{"Hot Coffee"}, []string{"Size", "Milk", "Extra shots"}},
		{"Iced Latte", "Espresso and milk over ice", 150, 80, []string{"Cold Drinks"}, []string{"Size", "Milk", "Extra shots"}},
		{"Croissant", "Butter croissant", 90, 30, []string{"Pastries"}, nil},
	}
)

// SeedMenu inserts a starter menu. Rows that already exist by name are left
// untouched.
func SeedMenu(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		categories := map[string]uint{}
		for _, c := range seedCategories {
			c := c
			if err := tx.Where(models.Category{Name: c.Name}).FirstOrCreate(&c).Error; err != nil {
				return err
			}
			categories[c.Name] = c.ID
		}

		customizations := map[string]uint{}
		for _, c := range seedCustomizations {
			c := c
			if err := tx.Where(models.Customization{Name: c.Name}).FirstOrCreate(&c).Error; err != nil {
				return err
			}
			customizations[c.Name] = c.ID
		}

		for i, sp := range seedProducts {
			p := models.Product{
				Name:         sp.name,
				Description:  sp.description,
				BasePrice:    sp.price,
				Status:       models.ProductAvailable,
				Stock:        sp.stock,
				DisplayOrder: i + 1,
				IsAvailable:  true,
			}
			res := tx.Where(models.Product{Name: sp.name}).FirstOrCreate(&p)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}

			for _, name := range sp.categories {
				link := models.ProductCategory{ProductID: p.ID, CategoryID: categories[name]}
				if err := tx.Omit("Category").Create(&link).Error; err != nil {
					return err
				}
				if err := tx.Model(&models.Category{}).Where("id = ?", link.CategoryID).
					UpdateColumn("items_count", gorm.Expr("items_count + 1")).Error; err != nil {
					return err
				}
			}
			for _, name := range sp.customizations {
				link := models.ProductCustomization{ProductID: p.ID, CustomizationID: customizations[name]}
				if err := tx.Omit("Customization").Create(&link).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
