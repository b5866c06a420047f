package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/gartstein/backoffice/internal/backoffice/events"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuditor_Record(t *testing.T) {
	var stored *models.LogEntry
	repo := &MockRepository{
		createLog: func(_ context.Context, entry *models.LogEntry) error {
			entry.ID = 42
			stored = entry
			return nil
		},
	}
	producer := &MockProducer{}
	auditor := NewAuditor(repo, producer, zap.NewNop())

	auditor.Record(context.Background(), staff, "Order Created", "Created order: A-1 for Acme")

	require.NotNil(t, stored)
	assert.Equal(t, uint(7), *stored.UserID)
	assert.Equal(t, "10.0.0.7", stored.IPAddress)
	assert.Equal(t, "Order Created", stored.Action)

	produced := producer.snapshot()
	require.Len(t, produced, 1)
	assert.Equal(t, events.ActivityRecorded, produced[0].Type)
	assert.Equal(t, uint(42), produced[0].EntityID)
	activity, ok := produced[0].Payload.(events.Activity)
	require.True(t, ok)
	assert.Equal(t, "Created order: A-1 for Acme", activity.Details)
}

func TestAuditor_RecordFailureIsSwallowed(t *testing.T) {
	repo := &MockRepository{
		createLog: func(context.Context, *models.LogEntry) error { return errors.New("database is locked") },
	}
	producer := &MockProducer{}
	core, recorded := observer.New(zap.ErrorLevel)
	auditor := NewAuditor(repo, producer, zap.New(core))

	auditor.Record(context.Background(), models.SystemActor, "Logs Purged", "Deleted 0 logs older than 30 days")

	assert.Empty(t, producer.snapshot())
	logs := recorded.FilterMessage("Failed to record activity").All()
	require.Len(t, logs, 1)
	assert.Equal(t, "Logs Purged", logs[0].ContextMap()["action"])
}

func TestAuditor_SystemEntriesHaveNoAuthor(t *testing.T) {
	repo := setupDB(t)
	auditor := NewAuditor(repo, &MockProducer{}, zap.NewNop())
	ctx := context.Background()

	auditor.Record(ctx, models.SystemActor, "Logs Purged", "Deleted 0 logs older than 30 days")

	entries, err := repo.RecentLogs(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].UserID)
	assert.Equal(t, models.SystemActorName, entries[0].ActorName())
}
