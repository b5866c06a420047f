package db

import (
	"context"
	"time"

	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/gartstein/backoffice/internal/backoffice/query"
)

func (r *Repository) CreateLog(ctx context.Context, entry *models.LogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *Repository) ListLogs(ctx context.Context, where query.Predicate, page query.Page) (query.Result[models.LogEntry], error) {
	return list[models.LogEntry](ctx, r.db, ListSpec{
		Where:    where,
		Page:     page,
		Order:    "created_at DESC, id DESC",
		Preloads: []string{"User"},
	})
}

func (r *Repository) RecentLogs(ctx context.Context, limit int) ([]models.LogEntry, error) {
	var entries []models.LogEntry
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// PurgeLogsBefore deletes entries created strictly before cutoff and
// returns how many were removed.
func (r *Repository) PurgeLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.LogEntry{})
	return result.RowsAffected, result.Error
}

// StreamLogs calls fn for each entry created within [from, to], newest
// first, without loading the whole range into memory.
func (r *Repository) StreamLogs(ctx context.Context, from, to time.Time, fn func(row *models.LogExportRow) error) error {
	rows, err := r.db.WithContext(ctx).
		Table("logs").
		Select("logs.created_at, users.username, logs.action, logs.details, logs.ip_address").
		Joins("LEFT JOIN users ON users.id = logs.user_id").
		Where("logs.created_at >= ? AND logs.created_at <= ?", from, to).
		Order("logs.created_at DESC, logs.id DESC").
		Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row models.LogExportRow
		if err := r.db.ScanRows(rows, &row); err != nil {
			return err
		}
		if err := fn(&row); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *Repository) LogStats(ctx context.Context) (*models.LogStats, error) {
	var stats models.LogStats
	err := r.db.WithContext(ctx).Model(&models.LogEntry{}).
		Select(`COUNT(*) AS total_logs,
			COUNT(DISTINCT user_id) AS unique_users,
			COUNT(DISTINCT DATE(created_at)) AS active_days`).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	var last models.LogEntry
	result := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&last)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		stats.LastActivity = &last.CreatedAt
	}
	return &stats, nil
}

// DailyActivity counts entries per calendar day since the given time,
// most recent day first.
func (r *Repository) DailyActivity(ctx context.Context, since time.Time) ([]models.DailyActivity, error) {
	var days []models.DailyActivity
	err := r.db.WithContext(ctx).Model(&models.LogEntry{}).
		Select("DATE(created_at) AS date, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("date DESC").
		Scan(&days).Error
	if err != nil {
		return nil, err
	}
	for i := range days {
		days[i].Date = dayLabel(days[i].Date)
	}
	return days, nil
}

// dayLabel reduces a DATE() value to YYYY-MM-DD. SQLite returns the bare
// date while Postgres comes back as a timestamp rendered in RFC 3339.
func dayLabel(raw string) string {
	if len(raw) > len(query.DateLayout) {
		return raw[:len(query.DateLayout)]
	}
	return raw
}

func (r *Repository) LogActions(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, &models.LogEntry{}, "action")
}

// LogUsers returns the users that authored at least one entry.
func (r *Repository) LogUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&models.LogEntry{}).Distinct("user_id").Where("user_id IS NOT NULL")).
		Order("username").
		Find(&users).Error
	return users, err
}
