package models

import "gorm.io/gorm"

// Roles assignable at registration.
const (
	RoleAdmin   = "Admin"
	RoleCashier = "Cashier"
)

// User is a store owner, admin or cashier account.
type User struct {
	gorm.Model
	UserCode      string `gorm:"size:20;not null;uniqueIndex:idx_users_store_code" json:"user_code"`
	Username      string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash  string `gorm:"size:255;not null" json:"-"` // bcrypt, never serialised
	Role          string `gorm:"size:50;not null" json:"role"`
	FirstName     string `gorm:"size:100;not null" json:"first_name"`
	LastName      string `gorm:"size:100;not null" json:"last_name"`
	Email         string `gorm:"size:255;not null" json:"email"`
	ContactNumber string `gorm:"size:50" json:"contact_number"`
	ProfilePic    string `gorm:"size:255" json:"profile_pic"`
	StoreID       uint   `gorm:"index;uniqueIndex:idx_users_store_code" json:"store_id"`
}
