package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gartstein/backoffice/internal/backoffice/db"
	e "github.com/gartstein/backoffice/internal/backoffice/errors"
	"github.com/gartstein/backoffice/internal/backoffice/events"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/gartstein/backoffice/internal/backoffice/query"
	"go.uber.org/zap"
)

type WarehouseRepository interface {
	CreateItem(ctx context.Context, item *models.WarehouseItem) error
	GetItem(ctx context.Context, id uint) (*models.WarehouseItem, error)
	UpdateItem(ctx context.Context, update *models.WarehouseItemUpdate) error
	DeleteItem(ctx context.Context, id uint) error
	ListItems(ctx context.Context, where query.Predicate, page query.Page) (query.Result[models.WarehouseItem], error)
	ListMovements(ctx context.Context, itemID uint, limit int) ([]models.WarehouseMovement, error)
	ItemStats(ctx context.Context) (*models.WarehouseStats, error)
	Categories(ctx context.Context) ([]string, error)
	WithTransaction(ctx context.Context, fn func(repo *db.Repository) error) error
}

// WarehouseFilter holds the optional criteria of the warehouse list.
type WarehouseFilter struct {
	Search   string
	Category string
	// LowStock is any non-empty value when only items at or below their
	// threshold are wanted.
	LowStock string
}

func (f WarehouseFilter) Predicate() query.Predicate {
	return query.Build(
		query.Search("search", f.Search, "product_name", "product_code", "description"),
		query.Eq("category", f.Category),
		query.When("low_stock", f.LowStock, "quantity <= min_quantity AND min_quantity > 0"),
	)
}

type WarehouseService struct {
	repo     WarehouseRepository
	audit    ActivityRecorder
	producer EventProducer
	logger   *zap.Logger
}

func NewWarehouseService(repo WarehouseRepository, audit ActivityRecorder, producer EventProducer, logger *zap.Logger) *WarehouseService {
	return &WarehouseService{
		repo:     repo,
		audit:    audit,
		producer: producer,
		logger:   logger.Named("warehouse_service"),
	}
}

// Create stores a new item with its initial quantity. The initial quantity
// is not a movement.
func (s *WarehouseService) Create(ctx context.Context, actor models.Actor, item *models.WarehouseItem) (*models.WarehouseItem, error) {
	if err := validateInput(item); err != nil {
		return nil, err
	}
	item.CreatedBy = actor.UserID

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.audit.Record(ctx, actor, "Product Added",
		fmt.Sprintf("Added product: %s (%s)", item.ProductName, item.ProductCode))
	return item, nil
}

// Update rewrites the descriptive fields of an item. Quantity is untouched.
func (s *WarehouseService) Update(ctx context.Context, actor models.Actor, update *models.WarehouseItemUpdate) error {
	if err := validateInput(update); err != nil {
		return err
	}
	item, err := s.repo.GetItem(ctx, update.ID)
	if err != nil {
		return wrap("failed to get item", err)
	}
	if err := s.repo.UpdateItem(ctx, update); err != nil {
		return wrap("failed to update item", err)
	}

	s.audit.Record(ctx, actor, "Product Updated",
		fmt.Sprintf("Updated product: %s (%s)", update.ProductName, item.ProductCode))
	return nil
}

// UpdateQuantity sets the stock of an item and appends the matching ledger
// row in one transaction, with the item row locked for the duration.
//
// A missing item yields ErrNotFound. Any other failure yields ErrUpdateFailed
// and leaves both the item and the ledger unchanged. Setting the current
// quantity again still records an adjustment of zero.
func (s *WarehouseService) UpdateQuantity(ctx context.Context, actor models.Actor, id uint, quantity int, reason string) (*models.WarehouseMovement, error) {
	if quantity < 0 {
		return nil, e.Invalid("Quantity must not be negative.")
	}

	var (
		item     *models.WarehouseItem
		movement *models.WarehouseMovement
	)
	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		var err error
		item, err = tx.GetItemForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.SetItemQuantity(ctx, id, quantity); err != nil {
			return err
		}
		movement = models.NewMovement(item, quantity, reason, actor.UserID)
		return tx.CreateMovement(ctx, movement)
	})
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("Failed to update quantity",
			zap.Error(err),
			zap.Uint("item_id", id),
		)
		return nil, fmt.Errorf("%w: %v", e.ErrUpdateFailed, err)
	}

	s.audit.Record(ctx, actor, "Quantity Updated",
		fmt.Sprintf("Product: %s, From: %d To: %d", item.ProductName, movement.PreviousQuantity, movement.NewQuantity))
	s.producer.Produce(events.StockMoved, item.ID, events.StockMovement{
		ProductCode:      item.ProductCode,
		MovementType:     string(movement.MovementType),
		Quantity:         movement.Quantity,
		PreviousQuantity: movement.PreviousQuantity,
		NewQuantity:      movement.NewQuantity,
		Reason:           movement.Reason,
	})
	return movement, nil
}

// Delete removes an item. Deleting a missing item succeeds silently.
func (s *WarehouseService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get item for deletion: %w", err)
	}
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.audit.Record(ctx, actor, "Product Deleted",
		fmt.Sprintf("Deleted product: %s", item.ProductName))
	return nil
}

func (s *WarehouseService) List(ctx context.Context, filter WarehouseFilter, page query.Page) (query.Result[models.WarehouseItem], error) {
	return s.repo.ListItems(ctx, filter.Predicate(), page)
}

// Movements returns the latest ledger rows of an item, newest first.
func (s *WarehouseService) Movements(ctx context.Context, itemID uint, limit int) ([]models.WarehouseMovement, error) {
	return s.repo.ListMovements(ctx, itemID, limit)
}

func (s *WarehouseService) Stats(ctx context.Context) (*models.WarehouseStats, error) {
	return s.repo.ItemStats(ctx)
}

func (s *WarehouseService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}
