package db

import (
	"context"

	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/gartstein/backoffice/internal/backoffice/query"
)

func (r *Repository) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	return translate(r.db.WithContext(ctx).Create(employee).Error)
}

func (r *Repository) GetEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	var employee models.Employee
	if err := r.first(ctx, &employee, id, "Account", "Creator"); err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *Repository) UpdateEmployee(ctx context.Context, update *models.EmployeeUpdate) error {
	return r.updateColumns(ctx, &models.Employee{}, update.ID, update.Columns())
}

func (r *Repository) DeleteEmployee(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, &models.Employee{}, id)
}

func (r *Repository) ListEmployees(ctx context.Context, where query.Predicate, page query.Page) (query.Result[models.Employee], error) {
	return list[models.Employee](ctx, r.db, ListSpec{
		Where:    where,
		Page:     page,
		Order:    "last_name ASC, first_name ASC, id ASC",
		Preloads: []string{"Account"},
	})
}

func (r *Repository) PersonnelStats(ctx context.Context) (*models.PersonnelStats, error) {
	var stats models.PersonnelStats
	err := r.db.WithContext(ctx).Model(&models.Employee{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN is_active = ? THEN 1 ELSE 0 END), 0) AS active,
			COALESCE(SUM(CASE WHEN is_active = ? THEN 0 ELSE 1 END), 0) AS inactive,
			AVG(salary) AS avg_salary`, true, true).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *Repository) CountActiveEmployees(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Employee{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

func (r *Repository) Departments(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, &models.Employee{}, "department")
}

func (r *Repository) Positions(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, &models.Employee{}, "position")
}
