package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WarehouseItem is a stocked product.
// Quantity only changes through a recorded WarehouseMovement.
type WarehouseItem struct {
	ID          uint            `gorm:"primaryKey"`
	ProductCode string          `gorm:"size:50;uniqueIndex;not null" form:"product_code" validate:"required"`
	ProductName string          `gorm:"size:255;not null;index" form:"product_name" validate:"required"`
	Description string          `gorm:"type:text" form:"description"`
	Quantity    int             `gorm:"not null" form:"quantity" validate:"gte=0"`
	MinQuantity int             `gorm:"not null" form:"min_quantity" validate:"gte=0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" form:"unit_price"`
	Category    string          `gorm:"size:100;index" form:"category"`
	Location    string          `gorm:"size:100" form:"location"`
	Supplier    string          `gorm:"size:255" form:"supplier"`
	CreatedBy   *uint
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Creator *User `gorm:"foreignKey:CreatedBy"`
}

func (WarehouseItem) TableName() string { return "warehouse" }

// LowStock reports whether the item is at or under its reorder threshold.
func (i *WarehouseItem) LowStock() bool {
	return i.MinQuantity > 0 && i.Quantity <= i.MinQuantity
}

// WarehouseItemUpdate carries the editable descriptive fields of an item.
type WarehouseItemUpdate struct {
	ID          uint
	ProductName string          `form:"product_name" validate:"required"`
	Description string          `form:"description"`
	MinQuantity int             `form:"min_quantity" validate:"gte=0"`
	UnitPrice   decimal.Decimal `form:"unit_price"`
	Category    string          `form:"category"`
	Location    string          `form:"location"`
	Supplier    string          `form:"supplier"`
}

// Columns maps the update onto column names, zero values included.
func (u *WarehouseItemUpdate) Columns() map[string]interface{} {
	return map[string]interface{}{
		"product_name": u.ProductName,
		"description":  u.Description,
		"min_quantity": u.MinQuantity,
		"unit_price":   u.UnitPrice,
		"category":     u.Category,
		"location":     u.Location,
		"supplier":     u.Supplier,
	}
}

// MovementType classifies a stock change.
type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
)

// WarehouseMovement is an append-only ledger row for one quantity change.
type WarehouseMovement struct {
	ID           uint         `gorm:"primaryKey"`
	ProductID    uint         `gorm:"not null;index"`
	MovementType MovementType `gorm:"size:20;not null"`
	// Quantity is the absolute delta between PreviousQuantity and NewQuantity.
	Quantity         int    `gorm:"not null"`
	PreviousQuantity int    `gorm:"not null"`
	NewQuantity      int    `gorm:"not null"`
	Reason           string `gorm:"size:255"`
	CreatedBy        *uint
	CreatedAt        time.Time `gorm:"index"`
}

func (WarehouseMovement) TableName() string { return "warehouse_movements" }

// ClassifyMovement returns the movement type and absolute delta of a change
// from previous to next.
func ClassifyMovement(previous, next int) (MovementType, int) {
	switch {
	case next > previous:
		return MovementIn, next - previous
	case next < previous:
		return MovementOut, previous - next
	default:
		return MovementAdjustment, 0
	}
}

// NewMovement builds the ledger row for setting item's quantity to next.
func NewMovement(item *WarehouseItem, next int, reason string, createdBy *uint) *WarehouseMovement {
	movementType, delta := ClassifyMovement(item.Quantity, next)
	return &WarehouseMovement{
		ProductID:        item.ID,
		MovementType:     movementType,
		Quantity:         delta,
		PreviousQuantity: item.Quantity,
		NewQuantity:      next,
		Reason:           reason,
		CreatedBy:        createdBy,
	}
}

// WarehouseStats aggregates the warehouse table for the list page.
type WarehouseStats struct {
	Total         int64
	TotalQuantity int64
	TotalValue    decimal.Decimal
	LowStock      int64
}
