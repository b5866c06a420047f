// Package models defines the back-office domain entities and their
// persistence mapping for GORM.
package models

import (
	"time"
)

// Module names a permission-guarded section of the dashboard.
type Module string

const (
	ModuleOrders    Module = "orders"
	ModuleWarehouse Module = "warehouse"
	ModulePersonnel Module = "personnel"
	ModuleLogs      Module = "logs"
)

// Modules lists every permission-guarded module.
var Modules = []Module{ModuleOrders, ModuleWarehouse, ModulePersonnel, ModuleLogs}

// Valid reports whether m is a known module.
func (m Module) Valid() bool {
	for _, known := range Modules {
		if m == known {
			return true
		}
	}
	return false
}

// Role is a staff account role.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// User is a staff account able to log in to the dashboard.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:50;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         Role   `gorm:"size:20;not null"`
	IsActive     bool   `gorm:"not null"`
	CreatedAt    time.Time
	// Permissions lists the modules a staff user may open. Admins implicitly have all.
	Permissions []UserPermission `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string { return "users" }

// ModuleNames returns the modules granted through Permissions.
func (u *User) ModuleNames() []string {
	names := make([]string, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		names = append(names, string(p.Module))
	}
	return names
}

// UserPermission grants one module to one user.
type UserPermission struct {
	ID     uint   `gorm:"primaryKey"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_user_module"`
	Module Module `gorm:"size:30;not null;uniqueIndex:idx_user_module"`
}

func (UserPermission) TableName() string { return "user_permissions" }

// Actor identifies who performs an operation and from where.
// A nil UserID means the system itself.
type Actor struct {
	UserID *uint
	IP     string
}

// SystemActor is used by scheduled and command-line operations.
var SystemActor = Actor{}

// UserActor builds an Actor for a logged-in user.
func UserActor(userID uint, ip string) Actor {
	return Actor{UserID: &userID, IP: ip}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
