package models

import (
	"time"

	"github.com/shashiranjanraj/cafe/pkg/collection"
)

type ProductStatus string

const (
	ProductAvailable   ProductStatus = "Available"
	ProductOutOfStock  ProductStatus = "OutOfStock"
	ProductUnavailable ProductStatus = "Unavailable"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductAvailable, ProductOutOfStock, ProductUnavailable:
		return true
	}
	return false
}

// Product is a menu item. Category and customization links live in explicit
// join tables so ProductService can diff them.
type Product struct {
	ID                    uint                   `gorm:"primaryKey" json:"id"`
	Name                  string                 `gorm:"size:150;not null;index" json:"name"`
	Description           string                 `gorm:"type:text" json:"description"`
	BasePrice             float64                `gorm:"not null;default:0" json:"price"`
	Status                ProductStatus          `gorm:"size:20;not null" json:"status"`
	Stock                 int                    `gorm:"not null;default:0" json:"stock"`
	DisplayOrder          int                    `gorm:"not null;default:0;index" json:"displayOrder"`
	IsAvailable           bool                   `gorm:"not null" json:"isAvailable"`
	ImageURL              string                 `gorm:"size:500" json:"imageUrl"`
	ImagePath             string                 `gorm:"size:500" json:"imagePath"`
	ProductCategories     []ProductCategory      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	ProductCustomizations []ProductCustomization `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt             time.Time              `json:"createdAt"`
	UpdatedAt             time.Time              `json:"updatedAt"`
}

type ProductCategory struct {
	ProductID  uint      `gorm:"primaryKey;autoIncrement:false"`
	CategoryID uint      `gorm:"primaryKey;autoIncrement:false;index"`
	Category   Category  `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
}

type ProductCustomization struct {
	ProductID       uint          `gorm:"primaryKey;autoIncrement:false"`
	CustomizationID uint          `gorm:"primaryKey;autoIncrement:false;index"`
	Customization   Customization `gorm:"foreignKey:CustomizationID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
}

// CategoryIDs returns the linked category ids in ascending order.
func (p Product) CategoryIDs() []uint {
	return collection.SortedKeys(p.ProductCategories, func(l ProductCategory) uint { return l.CategoryID })
}

// CustomizationIDs returns the linked customization ids in ascending order.
func (p Product) CustomizationIDs() []uint {
	return collection.SortedKeys(p.ProductCustomizations, func(l ProductCustomization) uint { return l.CustomizationID })
}
