package db

import (
	"context"

	e "github.com/gartstein/backoffice/internal/backoffice/errors"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/gartstein/backoffice/internal/backoffice/query"
)

func (r *Repository) CreateItem(ctx context.Context, item *models.WarehouseItem) error {
	return translate(r.db.WithContext(ctx).Create(item).Error)
}

func (r *Repository) GetItem(ctx context.Context, id uint) (*models.WarehouseItem, error) {
	var item models.WarehouseItem
	if err := r.first(ctx, &item, id, "Creator"); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItemForUpdate loads the item and, inside a transaction, locks its row
// until commit.
func (r *Repository) GetItemForUpdate(ctx context.Context, id uint) (*models.WarehouseItem, error) {
	var item models.WarehouseItem
	err := r.forUpdate(r.db.WithContext(ctx)).First(&item, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *Repository) UpdateItem(ctx context.Context, update *models.WarehouseItemUpdate) error {
	return r.updateColumns(ctx, &models.WarehouseItem{}, update.ID, update.Columns())
}

func (r *Repository) SetItemQuantity(ctx context.Context, id uint, quantity int) error {
	result := r.db.WithContext(ctx).Model(&models.WarehouseItem{}).
		Where("id = ?", id).
		Update("quantity", quantity)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) CreateMovement(ctx context.Context, movement *models.WarehouseMovement) error {
	return translate(r.db.WithContext(ctx).Create(movement).Error)
}

// ListMovements returns the newest ledger rows of one item.
func (r *Repository) ListMovements(ctx context.Context, itemID uint, limit int) ([]models.WarehouseMovement, error) {
	var movements []models.WarehouseMovement
	err := r.db.WithContext(ctx).
		Where("product_id = ?", itemID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}

func (r *Repository) DeleteItem(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, &models.WarehouseItem{}, id)
}

func (r *Repository) ListItems(ctx context.Context, where query.Predicate, page query.Page) (query.Result[models.WarehouseItem], error) {
	return list[models.WarehouseItem](ctx, r.db, ListSpec{
		Where:    where,
		Page:     page,
		Order:    "product_name ASC, id ASC",
		Preloads: []string{"Creator"},
	})
}

func (r *Repository) ItemStats(ctx context.Context) (*models.WarehouseStats, error) {
	var stats models.WarehouseStats
	err := r.db.WithContext(ctx).Model(&models.WarehouseItem{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(quantity), 0) AS total_quantity,
			COALESCE(SUM(quantity * unit_price), 0) AS total_value,
			COALESCE(SUM(CASE WHEN min_quantity > 0 AND quantity <= min_quantity THEN 1 ELSE 0 END), 0) AS low_stock`).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, &models.WarehouseItem{}, "category")
}

// LowStockItems returns items at or under their threshold, the most
// depleted first.
func (r *Repository) LowStockItems(ctx context.Context, limit int) ([]models.WarehouseItem, error) {
	var items []models.WarehouseItem
	err := r.db.WithContext(ctx).
		Where("min_quantity > 0 AND quantity <= min_quantity").
		Order("quantity - min_quantity ASC, id ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}
