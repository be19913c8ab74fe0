package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"magazine-catalog-api/config"
	"magazine-catalog-api/models"

	"gorm.io/gorm"
)

var ErrImportRunNotFound = errors.New("import run not found")

type ImportRunService struct {
	db *gorm.DB
}

func NewImportRunService(db *gorm.DB) *ImportRunService {
	if db == nil {
		db = config.DB
	}
	return &ImportRunService{db: db}
}

func (s *ImportRunService) Start(ctx context.Context, trigger, actor string, magazines []models.ParsedMagazine) (*models.ImportRun, error) {
	if trigger == "" {
		trigger = "unknown"
	}
	issues := 0
	for _, m := range magazines {
		issues += len(m.Issues)
	}
	run := &models.ImportRun{
		TriggerSource: trigger,
		Status:        models.ImportRunStatusRunning,
		MagazineCount: len(magazines),
		IssueCount:    issues,
	}
	if actor != "" {
		run.Actor = &actor
	}
	if err := s.auditDB(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (s *ImportRunService) MarkSuccess(ctx context.Context, runID uint, result *models.ImportResult, duration float64) error {
	updates := map[string]interface{}{
		"status":           models.ImportRunStatusSuccess,
		"finished_at":      time.Now(),
		"duration_seconds": duration,
	}
	if result != nil {
		updates["created_magazines"] = result.CreatedMagazines
		updates["skipped_magazines"] = result.SkippedMagazines
		updates["created_issues"] = result.CreatedIssues
		updates["skipped_issues"] = result.SkippedIssues
	}
	return s.update(ctx, runID, updates)
}

func (s *ImportRunService) MarkFailure(ctx context.Context, runID uint, err error, duration float64) error {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if len(msg) > 2000 {
		msg = fmt.Sprintf("%s...", msg[:1997])
	}
	return s.update(ctx, runID, map[string]interface{}{
		"status":           models.ImportRunStatusFailed,
		"finished_at":      time.Now(),
		"duration_seconds": duration,
		"error_message":    msg,
	})
}

// auditDB keeps ctx values but not its deadline or cancellation: a run row must be written
// even when the request that triggered the import has gone away.
func (s *ImportRunService) auditDB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.db.WithContext(context.WithoutCancel(ctx))
}

func (s *ImportRunService) update(ctx context.Context, runID uint, updates map[string]interface{}) error {
	res := s.auditDB(ctx).Model(&models.ImportRun{}).Where("id = ?", runID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrImportRunNotFound
	}
	return nil
}

// List returns the most recent runs first.
func (s *ImportRunService) List(limit int) ([]models.ImportRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var runs []models.ImportRun
	if err := s.db.Order("started_at DESC, id DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
