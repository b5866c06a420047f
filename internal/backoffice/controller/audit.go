package controller

import (
	"context"

	"github.com/gartstein/backoffice/internal/backoffice/events"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"go.uber.org/zap"
)

type LogWriter interface {
	CreateLog(ctx context.Context, entry *models.LogEntry) error
}

// Auditor persists activity log entries and announces them on the event bus.
type Auditor struct {
	repo     LogWriter
	producer EventProducer
	logger   *zap.Logger
}

func NewAuditor(repo LogWriter, producer EventProducer, logger *zap.Logger) *Auditor {
	return &Auditor{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("auditor"),
	}
}

// Record is best-effort: a failed write is logged and swallowed so it can
// never undo the operation being audited.
func (a *Auditor) Record(ctx context.Context, actor models.Actor, action, details string) {
	entry := &models.LogEntry{
		UserID:    actor.UserID,
		Action:    action,
		Details:   details,
		IPAddress: actor.IP,
	}
	if err := a.repo.CreateLog(ctx, entry); err != nil {
		a.logger.Error("Failed to record activity",
			zap.Error(err),
			zap.String("action", action),
		)
		return
	}

	a.producer.Produce(events.ActivityRecorded, entry.ID, events.Activity{
		UserID:  actor.UserID,
		Action:  action,
		Details: details,
		IP:      actor.IP,
	})
}
