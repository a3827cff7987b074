package models

import "time"

// Order is created once from a cart snapshot and afterwards only changes
// status. TotalPrice is fixed at creation.
type Order struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	UserID            uint        `gorm:"not null;index" json:"userId"`
	User              *User       `gorm:"foreignKey:UserID" json:"-"`
	InvoiceNumber     string      `gorm:"size:8;not null;index" json:"invoiceNumber"`
	OrderDate         time.Time   `gorm:"not null;index" json:"orderDate"`
	Nickname          string      `gorm:"size:100" json:"nickname"`
	AdditionalRequest string      `gorm:"type:text" json:"additionalRequest"`
	PaymentMethod     string      `gorm:"size:50" json:"paymentMethod"`
	TotalPrice        float64     `gorm:"not null" json:"totalPrice"`
	Status            OrderStatus `gorm:"size:20;not null;index" json:"status"`
	Items             []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// CustomerName resolves the display name: full name, then nickname, then
// "Guest". User must be preloaded for the first step.
func (o Order) CustomerName() string {
	if o.User != nil {
		if name := o.User.FullName(); name != "" {
			return name
		}
	}
	if o.Nickname != "" {
		return o.Nickname
	}
	return "Guest"
}

// OrderItem mirrors CartItem and is never re-synced with the product.
type OrderItem struct {
	ID             uint                     `gorm:"primaryKey" json:"id"`
	OrderID        uint                     `gorm:"not null;index" json:"orderId"`
	ProductID      uint                     `gorm:"not null;index" json:"productId"`
	ProductName    string                   `gorm:"size:150;not null" json:"productName"`
	UnitPrice      float64                  `gorm:"not null" json:"unitPrice"`
	Description    string                   `gorm:"type:text" json:"description"`
	ImageURL       string                   `gorm:"size:500" json:"imageUrl"`
	Quantity       int                      `gorm:"not null" json:"quantity"`
	TotalPrice     float64                  `gorm:"not null" json:"totalPrice"`
	LineOptions    `gorm:"embedded"`
	Customizations []OrderItemCustomization `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE" json:"customizations"`
}

type OrderItemCustomization struct {
	ID                    uint `gorm:"primaryKey" json:"id"`
	OrderItemID           uint `gorm:"not null;index" json:"orderItemId"`
	SelectedCustomization `gorm:"embedded"`
}
