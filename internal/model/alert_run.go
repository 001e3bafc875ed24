package model

import (
	"time"

	"gorm.io/datatypes"
)

type AlertRunStatus string

const (
	AlertRunStatusRunning   AlertRunStatus = "running"
	AlertRunStatusCompleted AlertRunStatus = "completed"
	AlertRunStatusFailed    AlertRunStatus = "failed"
)

const (
	AlertRunTriggerHTTP      = "http"
	AlertRunTriggerScheduler = "scheduler"
	AlertRunTriggerCLI       = "cli"
)

// AlertRun records one alerting pass.
type AlertRun struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Trigger        string         `gorm:"not null" json:"trigger"`
	Status         AlertRunStatus `gorm:"not null" json:"status"`
	UsersProcessed int            `gorm:"not null;default:0" json:"users_processed"`
	AlertsSent     int            `gorm:"not null;default:0" json:"alerts_sent"`
	Result         datatypes.JSON `gorm:"type:jsonb" json:"result"`
	ErrorMessage   string         `json:"error_message"`
	StartedAt      time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt    *time.Time     `json:"completed_at"`
}

func (AlertRun) TableName() string {
	return "alert_runs"
}
