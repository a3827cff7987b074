package models

import (
	"strings"
	"time"

	_ "github.com/shashiranjanraj/cafe/pkg/crypt" // registers the "encrypted" serializer
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is a customer or back-office account. Email lookups are exact-match.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Role        string     `gorm:"size:20;not null;default:customer" json:"role"`
	Nickname    string     `gorm:"size:100" json:"nickname"`
	FirstName   string     `gorm:"size:100" json:"firstName"`
	LastName    string     `gorm:"size:100" json:"lastName"`
	BirthDate   *time.Time `json:"birthDate"`
	PhoneNumber string     `gorm:"size:512;serializer:encrypted" json:"phoneNumber"`
	Email       string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password    string     `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialised
	Country     string     `gorm:"size:100" json:"country"`
	City        string     `gorm:"size:100" json:"city"`
	PostalCode  string     `gorm:"size:20" json:"postalCode"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FullName joins first and last name, or returns "" if both are empty.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAdmin reports back-office access.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Permissions checked by the admin routes.
const (
	PermManageMenu    = "menu.manage"
	PermManageOrders  = "orders.manage"
	PermViewDashboard = "dashboard.view"
)
