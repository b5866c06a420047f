package controller

import (
	"context"
	"time"

	"github.com/gartstein/backoffice/internal/backoffice/models"
	"go.uber.org/zap"
)

const (
	recentOrders   = 10
	recentActivity = 10
	lowStockShown  = 5
	announcements  = 5
)

type DashboardRepository interface {
	OrderCountsByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
	ItemStats(ctx context.Context) (*models.WarehouseStats, error)
	CountActiveEmployees(ctx context.Context) (int64, error)
	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
	ActiveCommunications(ctx context.Context, now time.Time, limit int) ([]models.Communication, error)
	LowStockItems(ctx context.Context, limit int) ([]models.WarehouseItem, error)
	RecentLogs(ctx context.Context, limit int) ([]models.LogEntry, error)
}

// ModuleAccess reports which permission-guarded sections a viewer may see.
type ModuleAccess interface {
	HasModule(m models.Module) bool
}

type DashboardService struct {
	repo   DashboardRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewDashboardService(repo DashboardRepository, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		repo:   repo,
		logger: logger.Named("dashboard_service"),
		now:    time.Now,
	}
}

// Overview gathers the landing page panels. The low-stock and recent
// activity panels stay empty unless viewer holds the warehouse and logs
// modules.
func (s *DashboardService) Overview(ctx context.Context, viewer ModuleAccess) (*models.Overview, error) {
	var (
		o   models.Overview
		err error
	)
	if o.OrdersByStatus, err = s.repo.OrderCountsByStatus(ctx); err != nil {
		return nil, err
	}

	stock, err := s.repo.ItemStats(ctx)
	if err != nil {
		return nil, err
	}
	o.TotalProducts = stock.Total
	o.TotalQuantity = stock.TotalQuantity

	if o.ActivePersonnel, err = s.repo.CountActiveEmployees(ctx); err != nil {
		return nil, err
	}
	if o.RecentOrders, err = s.repo.RecentOrders(ctx, recentOrders); err != nil {
		return nil, err
	}
	if o.Communications, err = s.repo.ActiveCommunications(ctx, s.now().UTC(), announcements); err != nil {
		return nil, err
	}
	if viewer.HasModule(models.ModuleWarehouse) {
		if o.LowStockProducts, err = s.repo.LowStockItems(ctx, lowStockShown); err != nil {
			return nil, err
		}
	}
	if viewer.HasModule(models.ModuleLogs) {
		if o.RecentActivity, err = s.repo.RecentLogs(ctx, recentActivity); err != nil {
			return nil, err
		}
	}
	return &o, nil
}
