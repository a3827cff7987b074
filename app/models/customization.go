package models

import "time"

type CustomizationType string

const (
	CustomizationSingleSelect CustomizationType = "single_select"
	CustomizationMultiSelect  CustomizationType = "multi_select"
	CustomizationQuantity     CustomizationType = "quantity"
)

// Valid reports whether t is one of the known customization types.
func (t CustomizationType) Valid() bool {
	switch t {
	case CustomizationSingleSelect, CustomizationMultiSelect, CustomizationQuantity:
		return true
	}
	return false
}

// Customization is a configurable product option group such as "Milk" or
// "Extra shots". MaxQuantity and PricePerUnit only apply to quantity types.
type Customization struct {
	ID           uint                  `gorm:"primaryKey" json:"id"`
	Name         string                `gorm:"size:100;not null" json:"name"`
	Type         CustomizationType     `gorm:"size:20;not null" json:"type"`
	Required     bool                  `gorm:"not null" json:"required"`
	DisplayOrder int                   `gorm:"not null;default:0;index" json:"displayOrder"`
	Description  string                `gorm:"type:text" json:"description"`
	MaxQuantity  *int                  `json:"maxQuantity"`
	PricePerUnit float64               `gorm:"not null;default:0" json:"pricePerUnit"`
	Options      []CustomizationOption `gorm:"foreignKey:CustomizationID;constraint:OnDelete:CASCADE" json:"options"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

type CustomizationOption struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	CustomizationID uint    `gorm:"not null;index" json:"customizationId"`
	Name            string  `gorm:"size:100;not null" json:"name"`
	PriceModifier   float64 `gorm:"not null;default:0" json:"priceModifier"`
	Description     string  `gorm:"size:255" json:"description"`
	IsDefault       bool    `gorm:"not null" json:"isDefault"`
	DisplayOrder    int     `gorm:"not null;default:0" json:"displayOrder"`
}
