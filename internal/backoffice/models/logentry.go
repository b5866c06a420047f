package models

import (
	"time"
)

// SystemActorName is shown in place of a username for system log entries.
const SystemActorName = "System"

// LogEntry is an append-only activity record.
type LogEntry struct {
	ID uint `gorm:"primaryKey"`
	// UserID is nil for entries written by the system.
	UserID    *uint     `gorm:"index"`
	Action    string    `gorm:"size:100;not null;index"`
	Details   string    `gorm:"type:text"`
	IPAddress string    `gorm:"size:45"`
	CreatedAt time.Time `gorm:"index"`

	User *User `gorm:"foreignKey:UserID"`
}

func (LogEntry) TableName() string { return "logs" }

// ActorName returns the username of the author or SystemActorName.
func (l *LogEntry) ActorName() string {
	if l.User != nil && l.User.Username != "" {
		return l.User.Username
	}
	return SystemActorName
}

// LogExportRow is one line of a log export.
type LogExportRow struct {
	CreatedAt time.Time
	Username  *string
	Action    string
	Details   string
	IPAddress string
}

// ActorName returns the username or SystemActorName.
func (r *LogExportRow) ActorName() string {
	if r.Username != nil && *r.Username != "" {
		return *r.Username
	}
	return SystemActorName
}

// LogStats aggregates the logs table for the list page.
type LogStats struct {
	TotalLogs    int64
	UniqueUsers  int64
	ActiveDays   int64
	LastActivity *time.Time
}

// DailyActivity is the number of log entries written on one day (Date is
// YYYY-MM-DD).
type DailyActivity struct {
	Date  string
	Count int64
}
