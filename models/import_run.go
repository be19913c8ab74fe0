package models

import "time"

const (
	ImportRunStatusRunning = "running"
	ImportRunStatusSuccess = "success"
	ImportRunStatusFailed  = "failed"
)

// ImportRun records one call of the magazine import, successful or not.
type ImportRun struct {
	ID               uint       `json:"run_id"                  gorm:"primaryKey;autoIncrement"`
	TriggerSource    string     `json:"trigger_source"          gorm:"type:varchar(64);not null"`
	Actor            *string    `json:"actor,omitempty"         gorm:"type:varchar(255)"`
	Status           string     `json:"status"                  gorm:"type:varchar(16);not null;default:'running'"`
	MagazineCount    int        `json:"magazine_count"          gorm:"not null;default:0"`
	IssueCount       int        `json:"issue_count"             gorm:"not null;default:0"`
	CreatedMagazines int        `json:"created_magazines"       gorm:"not null;default:0"`
	SkippedMagazines int        `json:"skipped_magazines"       gorm:"not null;default:0"`
	CreatedIssues    int        `json:"created_issues"          gorm:"not null;default:0"`
	SkippedIssues    int        `json:"skipped_issues"          gorm:"not null;default:0"`
	ErrorMessage     *string    `json:"error_message,omitempty" gorm:"type:text"`
	StartedAt        time.Time  `json:"started_at"              gorm:"column:started_at;autoCreateTime"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"   gorm:"column:finished_at"`
	Duration         *float64   `json:"duration_seconds,omitempty" gorm:"column:duration_seconds"`
}

func (ImportRun) TableName() string { return "import_runs" }
