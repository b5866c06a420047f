package controller

import (
	"context"
	"fmt"
	"io"
	"time"

	e "github.com/gartstein/backoffice/internal/backoffice/errors"
	"github.com/gartstein/backoffice/internal/backoffice/export"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/gartstein/backoffice/internal/backoffice/query"
	"go.uber.org/zap"
)

// DefaultRetentionDays applies when a purge asks for a non-positive age.
const DefaultRetentionDays = 30

const activityWindowDays = 7

type LogRepository interface {
	ListLogs(ctx context.Context, where query.Predicate, page query.Page) (query.Result[models.LogEntry], error)
	PurgeLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	StreamLogs(ctx context.Context, from, to time.Time, fn func(row *models.LogExportRow) error) error
	LogStats(ctx context.Context) (*models.LogStats, error)
	DailyActivity(ctx context.Context, since time.Time) ([]models.DailyActivity, error)
	LogActions(ctx context.Context) ([]string, error)
	LogUsers(ctx context.Context) ([]models.User, error)
}

// LogFilter holds the optional criteria of the activity log list.
type LogFilter struct {
	Search   string
	UserID   string
	Action   string
	DateFrom string
	DateTo   string
}

func (f LogFilter) Predicate() query.Predicate {
	return query.Build(
		query.Search("search", f.Search, "action", "details"),
		query.EqUint("user_id", f.UserID),
		query.Search("action", f.Action, "action"),
		query.From("date_from", "created_at", f.DateFrom),
		query.To("date_to", "created_at", f.DateTo),
	)
}

// ExportRequest selects the inclusive day range and file format of an export.
type ExportRequest struct {
	DateFrom string
	DateTo   string
	Format   export.Format
}

func (r ExportRequest) Filename() string {
	return export.Filename(r.DateFrom, r.DateTo, r.Format)
}

// bounds returns the full-day range covered by the request.
func (r ExportRequest) bounds() (time.Time, time.Time, error) {
	if r.DateFrom == "" || r.DateTo == "" {
		return time.Time{}, time.Time{}, e.Invalid("Start and end dates are required.")
	}
	from, err := query.DayStart(r.DateFrom)
	if err != nil {
		return time.Time{}, time.Time{}, e.Invalid("Invalid start date.")
	}
	to, err := query.DayEnd(r.DateTo)
	if err != nil {
		return time.Time{}, time.Time{}, e.Invalid("Invalid end date.")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, e.Invalid("Start date must not be after end date.")
	}
	return from, to, nil
}

type LogService struct {
	repo   LogRepository
	audit  ActivityRecorder
	logger *zap.Logger
	now    func() time.Time
}

func NewLogService(repo LogRepository, audit ActivityRecorder, logger *zap.Logger) *LogService {
	return &LogService{
		repo:   repo,
		audit:  audit,
		logger: logger.Named("log_service"),
		now:    time.Now,
	}
}

// Purge deletes entries older than days (DefaultRetentionDays when days is
// not positive) and returns how many were removed. The purge is recorded
// afterwards, so its own entry is never part of the count.
func (s *LogService) Purge(ctx context.Context, actor models.Actor, days int) (int64, error) {
	if days <= 0 {
		days = DefaultRetentionDays
	}
	cutoff := s.now().UTC().AddDate(0, 0, -days)

	removed, err := s.repo.PurgeLogsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge logs: %w", err)
	}

	s.logger.Info("Purged activity log",
		zap.Int64("removed", removed),
		zap.Int("days", days),
	)
	s.audit.Record(ctx, actor, "Logs Purged",
		fmt.Sprintf("Deleted %d logs older than %d days", removed, days))
	return removed, nil
}

// Export validates req and streams the matching entries to w, newest first.
// Nothing is written to w when validation fails.
func (s *LogService) Export(ctx context.Context, req ExportRequest, w io.Writer) error {
	from, to, err := req.bounds()
	if err != nil {
		return err
	}

	out, err := export.NewWriter(req.Format, w)
	if err != nil {
		return fmt.Errorf("failed to start export: %w", err)
	}
	err = s.repo.StreamLogs(ctx, from, to, out.Write)
	if err != nil {
		return fmt.Errorf("failed to export logs: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finish export: %w", err)
	}
	return nil
}

func (s *LogService) List(ctx context.Context, filter LogFilter, page query.Page) (query.Result[models.LogEntry], error) {
	return s.repo.ListLogs(ctx, filter.Predicate(), page)
}

// LogSummary is the aggregate panel of the activity log page.
type LogSummary struct {
	Stats   *models.LogStats
	Daily   []models.DailyActivity
	Users   []models.User
	Actions []string
}

func (s *LogService) Summary(ctx context.Context) (*LogSummary, error) {
	var (
		summary LogSummary
		err     error
	)
	if summary.Stats, err = s.repo.LogStats(ctx); err != nil {
		return nil, err
	}
	since := s.now().UTC().AddDate(0, 0, -activityWindowDays)
	if summary.Daily, err = s.repo.DailyActivity(ctx, since); err != nil {
		return nil, err
	}
	if summary.Users, err = s.repo.LogUsers(ctx); err != nil {
		return nil, err
	}
	if summary.Actions, err = s.repo.LogActions(ctx); err != nil {
		return nil, err
	}
	return &summary, nil
}
