package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists the accepted statuses in display order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// Valid reports whether s is one of OrderStatuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Order is a customer order.
type Order struct {
	// ID is the storage-assigned identifier.
	ID uint `gorm:"primaryKey"`
	// OrderNumber is the natural key shown to customers.
	OrderNumber   string `gorm:"size:50;uniqueIndex;not null" form:"order_number" validate:"required"`
	CustomerName  string `gorm:"size:255;not null" form:"customer_name" validate:"required"`
	CustomerEmail string `gorm:"size:255" form:"customer_email" validate:"omitempty,email"`
	CustomerPhone string `gorm:"size:50" form:"customer_phone"`
	// OrderDate is stored as midnight UTC of the order day.
	OrderDate    time.Time       `gorm:"not null;index" form:"order_date" validate:"required"`
	DeliveryDate *time.Time      `form:"delivery_date"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" form:"total_amount"`
	Status       OrderStatus     `gorm:"size:20;not null;index" form:"status"`
	Notes        string          `gorm:"type:text" form:"notes"`
	// AssignedTo optionally references the user handling the order.
	AssignedTo *uint `gorm:"index" form:"assigned_to"`
	CreatedBy  *uint
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time

	Creator  *User `gorm:"foreignKey:CreatedBy"`
	Assignee *User `gorm:"foreignKey:AssignedTo"`
}

func (Order) TableName() string { return "orders" }

// OrderUpdate carries the editable fields of an order.
// Status and assignment change through UpdateStatus only.
type OrderUpdate struct {
	ID            uint
	CustomerName  string          `form:"customer_name" validate:"required"`
	CustomerEmail string          `form:"customer_email" validate:"omitempty,email"`
	CustomerPhone string          `form:"customer_phone"`
	OrderDate     time.Time       `form:"order_date" validate:"required"`
	DeliveryDate  *time.Time      `form:"delivery_date"`
	TotalAmount   decimal.Decimal `form:"total_amount"`
	Notes         string          `form:"notes"`
}

// Columns maps the update onto column names, zero values included.
func (u *OrderUpdate) Columns() map[string]interface{} {
	return map[string]interface{}{
		"customer_name":  u.CustomerName,
		"customer_email": u.CustomerEmail,
		"customer_phone": u.CustomerPhone,
		"order_date":     u.OrderDate,
		"delivery_date":  u.DeliveryDate,
		"total_amount":   u.TotalAmount,
		"notes":          u.Notes,
	}
}

// OrderStats aggregates the orders table for the list page.
type OrderStats struct {
	Total      int64
	Pending    int64
	Processing int64
	Shipped    int64
	Delivered  int64
	Cancelled  int64
	TotalValue decimal.Decimal
}
