package controller

import (
	"context"
	"errors"
	"fmt"

	e "github.com/gartstein/backoffice/internal/backoffice/errors"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/gartstein/backoffice/internal/backoffice/query"
	"go.uber.org/zap"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	UpdateOrder(ctx context.Context, update *models.OrderUpdate) error
	UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus, assignedTo *uint) error
	DeleteOrder(ctx context.Context, id uint) error
	ListOrders(ctx context.Context, where query.Predicate, page query.Page) (query.Result[models.Order], error)
	OrderStats(ctx context.Context) (*models.OrderStats, error)
	ActiveUsers(ctx context.Context) ([]models.User, error)
}

// OrderFilter holds the optional criteria of the orders list.
type OrderFilter struct {
	Search   string
	Status   string
	DateFrom string
	DateTo   string
}

func (f OrderFilter) Predicate() query.Predicate {
	return query.Build(
		query.Search("search", f.Search, "order_number", "customer_name", "customer_email"),
		query.Eq("status", f.Status),
		query.From("date_from", "order_date", f.DateFrom),
		query.To("date_to", "order_date", f.DateTo),
	)
}

type OrderService struct {
	repo   OrderRepository
	audit  ActivityRecorder
	logger *zap.Logger
}

func NewOrderService(repo OrderRepository, audit ActivityRecorder, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:   repo,
		audit:  audit,
		logger: logger.Named("order_service"),
	}
}

// Create stores a new order. A taken order number yields ErrDuplicateKey.
func (s *OrderService) Create(ctx context.Context, actor models.Actor, order *models.Order) (*models.Order, error) {
	if err := validateInput(order); err != nil {
		return nil, err
	}
	if order.Status == "" {
		order.Status = models.StatusPending
	}
	if !order.Status.Valid() {
		return nil, e.Invalid("Invalid status.")
	}
	order.CreatedBy = actor.UserID

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.audit.Record(ctx, actor, "Order Created",
		fmt.Sprintf("Created order: %s for %s", order.OrderNumber, order.CustomerName))
	return order, nil
}

// Update rewrites the editable fields of an existing order.
func (s *OrderService) Update(ctx context.Context, actor models.Actor, update *models.OrderUpdate) error {
	if err := validateInput(update); err != nil {
		return err
	}
	order, err := s.repo.GetOrder(ctx, update.ID)
	if err != nil {
		return wrap("failed to get order", err)
	}
	if err := s.repo.UpdateOrder(ctx, update); err != nil {
		return wrap("failed to update order", err)
	}

	s.audit.Record(ctx, actor, "Order Updated",
		fmt.Sprintf("Updated order: %s", order.OrderNumber))
	return nil
}

// UpdateStatus moves an order to status and sets its assignee. The status
// is checked before storage is touched.
func (s *OrderService) UpdateStatus(ctx context.Context, actor models.Actor, id uint, status models.OrderStatus, assignedTo *uint) error {
	if !status.Valid() {
		return e.Invalid("Invalid status.")
	}
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return wrap("failed to get order", err)
	}
	if err := s.repo.UpdateOrderStatus(ctx, id, status, assignedTo); err != nil {
		return wrap("failed to update order status", err)
	}

	s.audit.Record(ctx, actor, "Order Status Updated",
		fmt.Sprintf("Order %s: %s → %s", order.OrderNumber, order.Status, status))
	return nil
}

// Delete removes an order. Deleting a missing order succeeds silently.
func (s *OrderService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get order for deletion: %w", err)
	}
	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.audit.Record(ctx, actor, "Order Deleted",
		fmt.Sprintf("Deleted order: %s of %s", order.OrderNumber, order.CustomerName))
	return nil
}

func (s *OrderService) List(ctx context.Context, filter OrderFilter, page query.Page) (query.Result[models.Order], error) {
	return s.repo.ListOrders(ctx, filter.Predicate(), page)
}

func (s *OrderService) Stats(ctx context.Context) (*models.OrderStats, error) {
	return s.repo.OrderStats(ctx)
}

// Assignees lists the users an order can be assigned to.
func (s *OrderService) Assignees(ctx context.Context) ([]models.User, error) {
	return s.repo.ActiveUsers(ctx)
}
