package models

import "time"

// Category groups products on the menu. ItemsCount is a denormalized count of
// ProductCategory links maintained by ProductService; it never drops below 0.
type Category struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	ItemsCount   int       `gorm:"not null;default:0" json:"itemsCount"`
	DisplayOrder int       `gorm:"not null;default:0;index" json:"displayOrder"`
	IsActive     bool      `gorm:"not null" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
