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

type PersonnelRepository interface {
	CreateEmployee(ctx context.Context, employee *models.Employee) error
	GetEmployee(ctx context.Context, id uint) (*models.Employee, error)
	UpdateEmployee(ctx context.Context, update *models.EmployeeUpdate) error
	DeleteEmployee(ctx context.Context, id uint) error
	ListEmployees(ctx context.Context, where query.Predicate, page query.Page) (query.Result[models.Employee], error)
	PersonnelStats(ctx context.Context) (*models.PersonnelStats, error)
	Departments(ctx context.Context) ([]string, error)
	Positions(ctx context.Context) ([]string, error)
	UnlinkedUsers(ctx context.Context) ([]models.User, error)
}

// PersonnelFilter holds the optional criteria of the personnel list.
type PersonnelFilter struct {
	Search     string
	Department string
	Position   string
	// ActiveOnly is any non-empty value to hide disabled employees.
	ActiveOnly string
}

func (f PersonnelFilter) Predicate() query.Predicate {
	return query.Build(
		query.Search("search", f.Search, "first_name", "last_name", "email", "employee_code"),
		query.Eq("department", f.Department),
		query.Eq("position", f.Position),
		query.When("active_only", f.ActiveOnly, "is_active = ?", true),
	)
}

type PersonnelService struct {
	repo   PersonnelRepository
	audit  ActivityRecorder
	logger *zap.Logger
}

func NewPersonnelService(repo PersonnelRepository, audit ActivityRecorder, logger *zap.Logger) *PersonnelService {
	return &PersonnelService{
		repo:   repo,
		audit:  audit,
		logger: logger.Named("personnel_service"),
	}
}

// Create stores a new, active employee. A taken employee code or email
// yields ErrDuplicateKey.
func (s *PersonnelService) Create(ctx context.Context, actor models.Actor, employee *models.Employee) (*models.Employee, error) {
	if err := validateInput(employee); err != nil {
		return nil, err
	}
	employee.IsActive = true
	employee.CreatedBy = actor.UserID

	if err := s.repo.CreateEmployee(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	s.audit.Record(ctx, actor, "Employee Added",
		fmt.Sprintf("Added employee: %s (%s)", employee.FullName(), employee.EmployeeCode))
	return employee, nil
}

// Update rewrites the editable fields, including the active flag.
func (s *PersonnelService) Update(ctx context.Context, actor models.Actor, update *models.EmployeeUpdate) error {
	if err := validateInput(update); err != nil {
		return err
	}
	if _, err := s.repo.GetEmployee(ctx, update.ID); err != nil {
		return wrap("failed to get employee", err)
	}
	if err := s.repo.UpdateEmployee(ctx, update); err != nil {
		return wrap("failed to update employee", err)
	}

	s.audit.Record(ctx, actor, "Employee Updated",
		fmt.Sprintf("Updated employee: %s %s", update.FirstName, update.LastName))
	return nil
}

// Delete removes an employee row. Deleting a missing employee succeeds
// silently.
func (s *PersonnelService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	employee, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get employee for deletion: %w", err)
	}
	if err := s.repo.DeleteEmployee(ctx, id); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	s.audit.Record(ctx, actor, "Employee Deleted",
		fmt.Sprintf("Deleted employee: %s (%s)", employee.FullName(), employee.EmployeeCode))
	return nil
}

func (s *PersonnelService) List(ctx context.Context, filter PersonnelFilter, page query.Page) (query.Result[models.Employee], error) {
	return s.repo.ListEmployees(ctx, filter.Predicate(), page)
}

func (s *PersonnelService) Stats(ctx context.Context) (*models.PersonnelStats, error) {
	return s.repo.PersonnelStats(ctx)
}

// PersonnelOptions are the choices offered by the personnel filter and
// edit forms.
type PersonnelOptions struct {
	Departments   []string
	Positions     []string
	UnlinkedUsers []models.User
}

func (s *PersonnelService) Options(ctx context.Context) (*PersonnelOptions, error) {
	var (
		opts PersonnelOptions
		err  error
	)
	if opts.Departments, err = s.repo.Departments(ctx); err != nil {
		return nil, err
	}
	if opts.Positions, err = s.repo.Positions(ctx); err != nil {
		return nil, err
	}
	if opts.UnlinkedUsers, err = s.repo.UnlinkedUsers(ctx); err != nil {
		return nil, err
	}
	return &opts, nil
}
