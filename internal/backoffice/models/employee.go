package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is a personnel record. IsActive is a soft-disable flag;
// deleting an employee removes the row.
type Employee struct {
	ID           uint             `gorm:"primaryKey"`
	EmployeeCode string           `gorm:"size:50;uniqueIndex;not null" form:"employee_code" validate:"required"`
	FirstName    string           `gorm:"size:100;not null" form:"first_name" validate:"required"`
	LastName     string           `gorm:"size:100;not null;index" form:"last_name" validate:"required"`
	Email        string           `gorm:"size:255;uniqueIndex;not null" form:"email" validate:"required,email"`
	Phone        string           `gorm:"size:50" form:"phone"`
	Position     string           `gorm:"size:100;index" form:"position"`
	Department   string           `gorm:"size:100;index" form:"department"`
	HireDate     *time.Time       `form:"hire_date"`
	Salary       *decimal.Decimal `gorm:"type:decimal(12,2)" form:"salary"`
	Notes        string           `gorm:"type:text" form:"notes"`
	IsActive     bool             `gorm:"not null" form:"is_active"`
	// UserID optionally links the employee to a staff account.
	UserID    *uint `gorm:"index" form:"user_id"`
	CreatedBy *uint
	CreatedAt time.Time
	UpdatedAt time.Time

	Account *User `gorm:"foreignKey:UserID"`
	Creator *User `gorm:"foreignKey:CreatedBy"`
}

func (Employee) TableName() string { return "personnel" }

// FullName joins first and last name.
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// EmployeeUpdate carries the editable fields of an employee.
// EmployeeCode is immutable once created.
type EmployeeUpdate struct {
	ID         uint
	FirstName  string           `form:"first_name" validate:"required"`
	LastName   string           `form:"last_name" validate:"required"`
	Email      string           `form:"email" validate:"required,email"`
	Phone      string           `form:"phone"`
	Position   string           `form:"position"`
	Department string           `form:"department"`
	Salary     *decimal.Decimal `form:"salary"`
	Notes      string           `form:"notes"`
	IsActive   bool             `form:"is_active"`
}

// Columns maps the update onto column names, zero values included.
func (u *EmployeeUpdate) Columns() map[string]interface{} {
	return map[string]interface{}{
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
		"phone":      u.Phone,
		"position":   u.Position,
		"department": u.Department,
		"salary":     u.Salary,
		"notes":      u.Notes,
		"is_active":  u.IsActive,
	}
}

// PersonnelStats aggregates the personnel table for the list page.
type PersonnelStats struct {
	Total     int64
	Active    int64
	Inactive  int64
	AvgSalary decimal.NullDecimal
}
