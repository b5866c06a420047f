package handlers

import (
	"context"
	"html/template"
	"io"
	"time"

	"github.com/gartstein/backoffice/internal/backoffice/auth"
	"github.com/gartstein/backoffice/internal/backoffice/controller"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/gartstein/backoffice/internal/backoffice/query"
	"go.uber.org/zap"
)

// OrderController is the order logic the pages invoke.
type OrderController interface {
	Create(ctx context.Context, actor models.Actor, order *models.Order) (*models.Order, error)
	Update(ctx context.Context, actor models.Actor, update *models.OrderUpdate) error
	UpdateStatus(ctx context.Context, actor models.Actor, id uint, status models.OrderStatus, assignedTo *uint) error
	Delete(ctx context.Context, actor models.Actor, id uint) error
	List(ctx context.Context, filter controller.OrderFilter, page query.Page) (query.Result[models.Order], error)
	Stats(ctx context.Context) (*models.OrderStats, error)
	Assignees(ctx context.Context) ([]models.User, error)
}

type WarehouseController interface {
	Create(ctx context.Context, actor models.Actor, item *models.WarehouseItem) (*models.WarehouseItem, error)
	Update(ctx context.Context, actor models.Actor, update *models.WarehouseItemUpdate) error
	UpdateQuantity(ctx context.Context, actor models.Actor, id uint, quantity int, reason string) (*models.WarehouseMovement, error)
	Delete(ctx context.Context, actor models.Actor, id uint) error
	List(ctx context.Context, filter controller.WarehouseFilter, page query.Page) (query.Result[models.WarehouseItem], error)
	Movements(ctx context.Context, itemID uint, limit int) ([]models.WarehouseMovement, error)
	Stats(ctx context.Context) (*models.WarehouseStats, error)
	Categories(ctx context.Context) ([]string, error)
}

type PersonnelController interface {
	Create(ctx context.Context, actor models.Actor, employee *models.Employee) (*models.Employee, error)
	Update(ctx context.Context, actor models.Actor, update *models.EmployeeUpdate) error
	Delete(ctx context.Context, actor models.Actor, id uint) error
	List(ctx context.Context, filter controller.PersonnelFilter, page query.Page) (query.Result[models.Employee], error)
	Stats(ctx context.Context) (*models.PersonnelStats, error)
	Options(ctx context.Context) (*controller.PersonnelOptions, error)
}

type LogController interface {
	Purge(ctx context.Context, actor models.Actor, days int) (int64, error)
	Export(ctx context.Context, req controller.ExportRequest, w io.Writer) error
	List(ctx context.Context, filter controller.LogFilter, page query.Page) (query.Result[models.LogEntry], error)
	Summary(ctx context.Context) (*controller.LogSummary, error)
}

type DashboardController interface {
	Overview(ctx context.Context, viewer controller.ModuleAccess) (*models.Overview, error)
}

type UserController interface {
	Authenticate(ctx context.Context, username, password, ip string) (*models.User, error)
	Logout(ctx context.Context, actor models.Actor)
}

// Pinger reports whether storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the business logic behind the pages.
type Services struct {
	Orders    OrderController
	Warehouse WarehouseController
	Personnel PersonnelController
	Logs      LogController
	Dashboard DashboardController
	Users     UserController
	Health    Pinger
}

type Options struct {
	PageSize         int
	LogPageSize      int
	LogRetentionDays int
	CookieSecure     bool
}

// Handler serves the dashboard pages.
type Handler struct {
	svc      Services
	sessions *auth.Manager
	pages    map[string]*template.Template
	opts     Options
	logger   *zap.Logger
}

func NewHandler(svc Services, sessions *auth.Manager, opts Options, logger *zap.Logger) (*Handler, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	if opts.LogRetentionDays < 1 {
		opts.LogRetentionDays = controller.DefaultRetentionDays
	}
	return &Handler{
		svc:      svc,
		sessions: sessions,
		pages:    pages,
		opts:     opts,
		logger:   logger.Named("http"),
	}, nil
}

const movementsShown = 5

const pingTimeout = 2 * time.Second
