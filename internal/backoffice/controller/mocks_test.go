package controller

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gartstein/backoffice/internal/backoffice/db"
	"github.com/gartstein/backoffice/internal/backoffice/events"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/gartstein/backoffice/internal/backoffice/query"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
)

// MockRepository implements the service repository interfaces for testing.
// Only the functions a test sets may be called.
type MockRepository struct {
	createOrder       func(context.Context, *models.Order) error
	getOrder          func(context.Context, uint) (*models.Order, error)
	updateOrder       func(context.Context, *models.OrderUpdate) error
	updateOrderStatus func(context.Context, uint, models.OrderStatus, *uint) error
	deleteOrder       func(context.Context, uint) error
	listOrders        func(context.Context, query.Predicate, query.Page) (query.Result[models.Order], error)

	createItem func(context.Context, *models.WarehouseItem) error
	getItem    func(context.Context, uint) (*models.WarehouseItem, error)
	updateItem func(context.Context, *models.WarehouseItemUpdate) error
	deleteItem func(context.Context, uint) error
	listItems  func(context.Context, query.Predicate, query.Page) (query.Result[models.WarehouseItem], error)
	withTx     func(context.Context, func(*db.Repository) error) error

	createEmployee func(context.Context, *models.Employee) error
	getEmployee    func(context.Context, uint) (*models.Employee, error)
	updateEmployee func(context.Context, *models.EmployeeUpdate) error
	deleteEmployee func(context.Context, uint) error
	listEmployees  func(context.Context, query.Predicate, query.Page) (query.Result[models.Employee], error)

	createLog       func(context.Context, *models.LogEntry) error
	purgeLogsBefore func(context.Context, time.Time) (int64, error)
	streamLogs      func(context.Context, time.Time, time.Time, func(*models.LogExportRow) error) error

	createUser        func(context.Context, *models.User) error
	getUserByUsername func(context.Context, string) (*models.User, error)
}

func (m *MockRepository) CreateOrder(ctx context.Context, o *models.Order) error {
	return m.createOrder(ctx, o)
}

func (m *MockRepository) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return m.getOrder(ctx, id)
}

func (m *MockRepository) UpdateOrder(ctx context.Context, u *models.OrderUpdate) error {
	return m.updateOrder(ctx, u)
}

func (m *MockRepository) UpdateOrderStatus(ctx context.Context, id uint, s models.OrderStatus, a *uint) error {
	return m.updateOrderStatus(ctx, id, s, a)
}

func (m *MockRepository) DeleteOrder(ctx context.Context, id uint) error {
	return m.deleteOrder(ctx, id)
}

func (m *MockRepository) ListOrders(ctx context.Context, p query.Predicate, page query.Page) (query.Result[models.Order], error) {
	return m.listOrders(ctx, p, page)
}

func (m *MockRepository) OrderStats(context.Context) (*models.OrderStats, error) {
	return &models.OrderStats{}, nil
}

func (m *MockRepository) ActiveUsers(context.Context) ([]models.User, error) {
	return nil, nil
}

func (m *MockRepository) CreateItem(ctx context.Context, i *models.WarehouseItem) error {
	return m.createItem(ctx, i)
}

func (m *MockRepository) GetItem(ctx context.Context, id uint) (*models.WarehouseItem, error) {
	return m.getItem(ctx, id)
}

func (m *MockRepository) UpdateItem(ctx context.Context, u *models.WarehouseItemUpdate) error {
	return m.updateItem(ctx, u)
}

func (m *MockRepository) DeleteItem(ctx context.Context, id uint) error {
	return m.deleteItem(ctx, id)
}

func (m *MockRepository) ListItems(ctx context.Context, p query.Predicate, page query.Page) (query.Result[models.WarehouseItem], error) {
	return m.listItems(ctx, p, page)
}

func (m *MockRepository) ListMovements(context.Context, uint, int) ([]models.WarehouseMovement, error) {
	return nil, nil
}

func (m *MockRepository) ItemStats(context.Context) (*models.WarehouseStats, error) {
	return &models.WarehouseStats{}, nil
}

func (m *MockRepository) Categories(context.Context) ([]string, error) {
	return nil, nil
}

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(*db.Repository) error) error {
	return m.withTx(ctx, fn)
}

func (m *MockRepository) CreateEmployee(ctx context.Context, e *models.Employee) error {
	return m.createEmployee(ctx, e)
}

func (m *MockRepository) GetEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	return m.getEmployee(ctx, id)
}

func (m *MockRepository) UpdateEmployee(ctx context.Context, u *models.EmployeeUpdate) error {
	return m.updateEmployee(ctx, u)
}

func (m *MockRepository) DeleteEmployee(ctx context.Context, id uint) error {
	return m.deleteEmployee(ctx, id)
}

func (m *MockRepository) ListEmployees(ctx context.Context, p query.Predicate, page query.Page) (query.Result[models.Employee], error) {
	return m.listEmployees(ctx, p, page)
}

func (m *MockRepository) PersonnelStats(context.Context) (*models.PersonnelStats, error) {
	return &models.PersonnelStats{}, nil
}

func (m *MockRepository) Departments(context.Context) ([]string, error) {
	return []string{"Ops"}, nil
}

func (m *MockRepository) Positions(context.Context) ([]string, error) {
	return []string{"Clerk"}, nil
}

func (m *MockRepository) UnlinkedUsers(context.Context) ([]models.User, error) {
	return nil, nil
}

func (m *MockRepository) CreateLog(ctx context.Context, entry *models.LogEntry) error {
	return m.createLog(ctx, entry)
}

func (m *MockRepository) ListLogs(context.Context, query.Predicate, query.Page) (query.Result[models.LogEntry], error) {
	return query.Result[models.LogEntry]{}, nil
}

func (m *MockRepository) PurgeLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.purgeLogsBefore(ctx, cutoff)
}

func (m *MockRepository) StreamLogs(ctx context.Context, from, to time.Time, fn func(*models.LogExportRow) error) error {
	return m.streamLogs(ctx, from, to, fn)
}

func (m *MockRepository) LogStats(context.Context) (*models.LogStats, error) {
	return &models.LogStats{}, nil
}

func (m *MockRepository) DailyActivity(context.Context, time.Time) ([]models.DailyActivity, error) {
	return nil, nil
}

func (m *MockRepository) LogActions(context.Context) ([]string, error) {
	return nil, nil
}

func (m *MockRepository) LogUsers(context.Context) ([]models.User, error) {
	return nil, nil
}

func (m *MockRepository) CreateUser(ctx context.Context, u *models.User) error {
	return m.createUser(ctx, u)
}

func (m *MockRepository) GetUserByUsername(ctx context.Context, name string) (*models.User, error) {
	return m.getUserByUsername(ctx, name)
}

type recordedEntry struct {
	Actor   models.Actor
	Action  string
	Details string
}

// MockRecorder collects activity entries in memory.
type MockRecorder struct {
	entries []recordedEntry
}

func (m *MockRecorder) Record(_ context.Context, actor models.Actor, action, details string) {
	m.entries = append(m.entries, recordedEntry{Actor: actor, Action: action, Details: details})
}

type producedEvent struct {
	Type     events.EventType
	EntityID uint
	Payload  interface{}
}

// MockProducer is a test double for the Kafka producer.
type MockProducer struct {
	mu       sync.Mutex
	produced []producedEvent
}

func (m *MockProducer) Produce(eventType events.EventType, entityID uint, payload interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.produced = append(m.produced, producedEvent{Type: eventType, EntityID: entityID, Payload: payload})
}

func (m *MockProducer) snapshot() []producedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]producedEvent(nil), m.produced...)
}

// setupDB opens a migrated SQLite repository in a temporary file.
func setupDB(t *testing.T) *db.Repository {
	repo, err := db.Open(sqlite.Open(filepath.Join(t.TempDir(), "backoffice.db")), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(context.Background()))
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

var staff = models.UserActor(7, "10.0.0.7")

var pageOne = query.PageOf(1, 25)
