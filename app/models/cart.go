package models

import "time"

// Cart is keyed by its owner: a user has at most one cart.
type Cart struct {
	UserID    uint       `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	Items     []CartItem `gorm:"foreignKey:CartID;references:UserID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem snapshots the product at add time. TotalPrice = UnitPrice × Quantity.
type CartItem struct {
	ID             uint                    `gorm:"primaryKey" json:"id"`
	CartID         uint                    `gorm:"not null;index" json:"cartId"`
	ProductID      uint                    `gorm:"not null;index" json:"productId"`
	ProductName    string                  `gorm:"size:150;not null" json:"productName"`
	UnitPrice      float64                 `gorm:"not null" json:"unitPrice"`
	Description    string                  `gorm:"type:text" json:"description"`
	ImageURL       string                  `gorm:"size:500" json:"imageUrl"`
	Quantity       int                     `gorm:"not null" json:"quantity"`
	TotalPrice     float64                 `gorm:"not null" json:"totalPrice"`
	LineOptions    `gorm:"embedded"`
	Customizations []CartItemCustomization `gorm:"foreignKey:CartItemID;constraint:OnDelete:CASCADE" json:"customizations"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

type CartItemCustomization struct {
	ID                    uint `gorm:"primaryKey" json:"id"`
	CartItemID            uint `gorm:"not null;index" json:"cartItemId"`
	SelectedCustomization `gorm:"embedded"`
}

// Selected returns the customization values without row identity.
func (i CartItem) Selected() []SelectedCustomization {
	out := make([]SelectedCustomization, 0, len(i.Customizations))
	for _, c := range i.Customizations {
		out = append(out, c.SelectedCustomization)
	}
	return out
}

// Signature is the merge identity of the line, excluding the product id.
func (i CartItem) Signature() string {
	return LineSignature(i.LineOptions, i.Selected())
}

// Recalculate refreshes TotalPrice from UnitPrice and Quantity.
func (i *CartItem) Recalculate() {
	i.TotalPrice = RoundMoney(i.UnitPrice * float64(i.Quantity))
}
