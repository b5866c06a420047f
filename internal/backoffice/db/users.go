package db

import (
	"context"
	"time"

	"github.com/gartstein/backoffice/internal/backoffice/models"
)

// CreateUser inserts the user together with its module permissions.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// GetUser loads a user with its module permissions.
func (r *Repository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.first(ctx, &user, id, "Permissions"); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Permissions").
		First(&user, "username = ?", username).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// ActiveUsers lists the accounts orders can be assigned to.
func (r *Repository) ActiveUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("username").
		Find(&users).Error
	return users, err
}

// UnlinkedUsers lists active accounts not yet linked to an employee.
func (r *Repository) UnlinkedUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("id NOT IN (?)", r.db.Model(&models.Employee{}).Select("user_id").Where("user_id IS NOT NULL")).
		Order("username").
		Find(&users).Error
	return users, err
}

// ActiveCommunications returns announcements that are switched on and not
// expired at now, newest first.
func (r *Repository) ActiveCommunications(ctx context.Context, now time.Time, limit int) ([]models.Communication, error) {
	var items []models.Communication
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *Repository) CreateCommunication(ctx context.Context, c *models.Communication) error {
	return r.db.WithContext(ctx).Create(c).Error
}
