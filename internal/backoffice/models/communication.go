package models

import (
	"time"
)

// CommunicationType drives how an announcement is highlighted.
type CommunicationType string

const (
	CommunicationUrgent  CommunicationType = "urgent"
	CommunicationWarning CommunicationType = "warning"
	CommunicationInfo    CommunicationType = "info"
	CommunicationDefault CommunicationType = "default"
)

// Communication is an announcement shown on the dashboard while active
// and not expired.
type Communication struct {
	ID        uint              `gorm:"primaryKey"`
	Title     string            `gorm:"size:255;not null"`
	Message   string            `gorm:"type:text;not null"`
	Type      CommunicationType `gorm:"size:20;not null"`
	IsActive  bool              `gorm:"not null;index"`
	ExpiresAt *time.Time
	CreatedBy *uint
	CreatedAt time.Time

	Creator *User `gorm:"foreignKey:CreatedBy"`
}

func (Communication) TableName() string { return "communications" }

// Overview is the landing-page summary.
type Overview struct {
	OrdersByStatus   map[OrderStatus]int64
	TotalProducts    int64
	TotalQuantity    int64
	ActivePersonnel  int64
	RecentOrders     []Order
	Communications   []Communication
	LowStockProducts []WarehouseItem
	RecentActivity   []LogEntry
}
