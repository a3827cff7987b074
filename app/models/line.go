package models

import (
	"fmt"
	"sort"
	"strings"
)

// LineOptions are the flat customization columns kept on cart and order
// lines alongside the normalized customization rows.
type LineOptions struct {
	Size           string `gorm:"size:50" json:"size"`
	MilkType       string `gorm:"size:50" json:"milkType"`
	Temperature    string `gorm:"size:50" json:"temperature"`
	ExtraShots     int    `gorm:"not null;default:0" json:"extraShots"`
	SweetnessLevel string `gorm:"size:50" json:"sweetnessLevel"`
}

// SelectedCustomization is one chosen customization value on a line.
type SelectedCustomization struct {
	Name         string  `gorm:"size:100;not null" json:"name"`
	Value        string  `gorm:"size:255" json:"value"`
	Type         string  `gorm:"size:20" json:"type"`
	DisplayOrder int     `gorm:"not null;default:0" json:"displayOrder"`
	Price        float64 `gorm:"not null;default:0" json:"price"`
}

// LineSignature identifies a line for merging: two lines with the same
// product and the same signature are the same line. Customizations are
// compared order-independently.
func LineSignature(opts LineOptions, selected []SelectedCustomization) string {
	parts := make([]string, 0, len(selected))
	for _, c := range selected {
		parts = append(parts, fmt.Sprintf("%s=%s:%s:%.2f",
			strings.TrimSpace(c.Name), strings.TrimSpace(c.Value), c.Type, c.Price))
	}
	sort.Strings(parts)

	return fmt.Sprintf("size=%s|milk=%s|temp=%s|shots=%d|sweet=%s|%s",
		strings.TrimSpace(opts.Size),
		strings.TrimSpace(opts.MilkType),
		strings.TrimSpace(opts.Temperature),
		opts.ExtraShots,
		strings.TrimSpace(opts.SweetnessLevel),
		strings.Join(parts, ";"),
	)
}
