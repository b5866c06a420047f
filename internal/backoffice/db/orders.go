package db

import (
	"context"

	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/gartstein/backoffice/internal/backoffice/query"
)

func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return translate(r.db.WithContext(ctx).Create(order).Error)
}

func (r *Repository) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.first(ctx, &order, id, "Creator", "Assignee"); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) UpdateOrder(ctx context.Context, update *models.OrderUpdate) error {
	return r.updateColumns(ctx, &models.Order{}, update.ID, update.Columns())
}

// UpdateOrderStatus sets the status and the assignee. A nil assignee clears it.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus, assignedTo *uint) error {
	return r.updateColumns(ctx, &models.Order{}, id, map[string]interface{}{
		"status":      status,
		"assigned_to": assignedTo,
	})
}

func (r *Repository) DeleteOrder(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, &models.Order{}, id)
}

func (r *Repository) ListOrders(ctx context.Context, where query.Predicate, page query.Page) (query.Result[models.Order], error) {
	return list[models.Order](ctx, r.db, ListSpec{
		Where:    where,
		Page:     page,
		Order:    "created_at DESC, id DESC",
		Preloads: []string{"Creator", "Assignee"},
	})
}

func (r *Repository) OrderStats(ctx context.Context) (*models.OrderStats, error) {
	var stats models.OrderStats
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS processing,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS shipped,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS delivered,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS cancelled,
			COALESCE(SUM(total_amount), 0) AS total_value`,
			models.StatusPending, models.StatusProcessing, models.StatusShipped,
			models.StatusDelivered, models.StatusCancelled).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// OrderCountsByStatus returns the number of orders per status. Statuses
// without orders are absent.
func (r *Repository) OrderCountsByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *Repository) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
