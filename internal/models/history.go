package models

import "time"

type BackupType string

const (
	BackupTypeManual    BackupType = "manual"
	BackupTypeAutomatic BackupType = "automatic"
	BackupTypeScheduled BackupType = "scheduled"
)

type BackupStatus string

const (
	BackupStatusPending    BackupStatus = "pending"
	BackupStatusInProgress BackupStatus = "in_progress"
	BackupStatusCompleted  BackupStatus = "completed"
	BackupStatusFailed     BackupStatus = "failed"
)

// BackupHistory tracks one backup attempt from pending to completed or failed.
type BackupHistory struct {
	ID             string
	UserID         string
	BackupType     BackupType
	BackupStatus   BackupStatus
	BackupSizeMB   *float64
	BackupLocation *BackupLocation
	FilePath       *string
	ErrorMessage   *string
	StartedAt      time.Time
	CompletedAt    *time.Time
}
