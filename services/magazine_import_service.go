package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"magazine-catalog-api/config"
	"magazine-catalog-api/models"
	"magazine-catalog-api/monitor"
	"magazine-catalog-api/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MagazineImportService writes grouped import data. Existing magazines and issues are
// never modified; they are only reported as existed/skipped.
type MagazineImportService struct {
	db   *gorm.DB
	runs *ImportRunService
}

func NewMagazineImportService(db *gorm.DB) *MagazineImportService {
	if db == nil {
		db = config.DB
	}
	return &MagazineImportService{db: db, runs: NewImportRunService(db)}
}

// Import creates whatever magazines and issues are missing, all in one transaction.
// On any failure nothing is written and no result is returned.
func (s *MagazineImportService) Import(ctx context.Context, magazines []models.ParsedMagazine) (*models.ImportResult, error) {
	var result *models.ImportResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := &models.ImportResult{Details: make([]models.MagazineImportDetail, 0, len(magazines))}
		for _, pm := range magazines {
			detail, err := importMagazine(tx, pm, res)
			if err != nil {
				return err
			}
			res.Details = append(res.Details, detail)
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ImportWithAudit runs Import and records the outcome as an import run.
func (s *MagazineImportService) ImportWithAudit(ctx context.Context, magazines []models.ParsedMagazine, trigger, actor string) (*models.ImportResult, error) {
	log := config.Logger.WithFields(logrus.Fields{"trigger": trigger, "actor": actor, "magazines": len(magazines)})

	started := time.Now()
	run, err := s.runs.Start(ctx, trigger, actor, magazines)
	if err != nil {
		log.WithError(err).Warn("could not record import run")
	}

	result, err := s.Import(ctx, magazines)
	elapsed := time.Since(started).Seconds()
	if err != nil {
		monitor.IncImportFailure()
		log.WithError(err).Error("magazine import rolled back")
		if run != nil {
			if markErr := s.runs.MarkFailure(ctx, run.ID, err, elapsed); markErr != nil {
				log.WithError(markErr).Warn("could not mark import run failed")
			}
		}
		return nil, err
	}

	monitor.ObserveImport(result.CreatedMagazines, result.SkippedMagazines, result.CreatedIssues, result.SkippedIssues)
	log.WithFields(logrus.Fields{
		"created_magazines": result.CreatedMagazines,
		"skipped_magazines": result.SkippedMagazines,
		"created_issues":    result.CreatedIssues,
		"skipped_issues":    result.SkippedIssues,
	}).Info("magazine import committed")
	if run != nil {
		if markErr := s.runs.MarkSuccess(ctx, run.ID, result, elapsed); markErr != nil {
			log.WithError(markErr).Warn("could not mark import run successful")
		}
	}
	return result, nil
}

func importMagazine(tx *gorm.DB, pm models.ParsedMagazine, res *models.ImportResult) (models.MagazineImportDetail, error) {
	name := strings.TrimSpace(pm.Name)
	detail := models.MagazineImportDetail{MagazineName: name, Issues: make([]models.IssueImportDetail, 0, len(pm.Issues))}

	existing, err := findMagazine(tx, utils.StringValue(pm.ISSN), name)
	if err != nil {
		return detail, fmt.Errorf("look up magazine %q: %w", name, err)
	}

	var magazineID uint
	if existing != nil {
		magazineID = existing.ID
		detail.Status = models.MagazineImportExisted
		res.SkippedMagazines++
	} else {
		m, err := newMagazineRecord(pm)
		if err != nil {
			return detail, err
		}
		if err := tx.Create(&m).Error; err != nil {
			return detail, fmt.Errorf("create magazine %q: %w", name, err)
		}
		magazineID = m.ID
		detail.Status = models.MagazineImportCreated
		res.CreatedMagazines++
	}

	for _, pi := range pm.Issues {
		number := strings.TrimSpace(pi.IssueNumber)

		var issue models.Issue
		err := tx.Where("magazine_id = ? AND issue_number = ?", magazineID, number).First(&issue).Error
		switch {
		case err == nil:
			detail.Issues = append(detail.Issues, models.IssueImportDetail{IssueNumber: number, Status: models.IssueImportSkipped})
			res.SkippedIssues++
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return detail, fmt.Errorf("look up issue %s of %q: %w", number, name, err)
		}

		record, err := newIssueRecord(magazineID, pi)
		if err != nil {
			return detail, fmt.Errorf("magazine %q: %w", name, err)
		}
		if err := tx.Create(&record).Error; err != nil {
			return detail, fmt.Errorf("create issue %s of %q: %w", number, name, err)
		}
		detail.Issues = append(detail.Issues, models.IssueImportDetail{IssueNumber: number, Status: models.IssueImportCreated})
		res.CreatedIssues++
	}

	return detail, nil
}

// findMagazine resolves a magazine by ISSN first, then by exact name. Nil means not found.
// The ISSN lookup includes soft-deleted rows, since the unique index still covers them; such
// a row is restored and reused.
func findMagazine(tx *gorm.DB, issn, name string) (*models.Magazine, error) {
	if issn = strings.TrimSpace(issn); issn != "" {
		var byISSN models.Magazine
		err := tx.Unscoped().Where("issn = ?", issn).First(&byISSN).Error
		if err == nil {
			if byISSN.DeletedAt.Valid {
				if err := tx.Unscoped().Model(&byISSN).Update("deleted_at", nil).Error; err != nil {
					return nil, fmt.Errorf("restore magazine %d: %w", byISSN.ID, err)
				}
				byISSN.DeletedAt = gorm.DeletedAt{}
			}
			return &byISSN, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var byName models.Magazine
	err := tx.Where("name = ?", name).First(&byName).Error
	if err == nil {
		return &byName, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func newMagazineRecord(pm models.ParsedMagazine) (models.Magazine, error) {
	m := models.Magazine{
		Name:        strings.TrimSpace(pm.Name),
		NameEn:      trimmedOrNil(pm.NameEn),
		Publisher:   trimmedOrNil(pm.Publisher),
		ISSN:        trimmedOrNil(pm.ISSN),
		Description: trimmedOrNil(pm.Description),
		IsActive:    true,
	}
	if pm.IsActive != nil {
		m.IsActive = *pm.IsActive
	}
	if founded := trimmedOrNil(pm.FoundedDate); founded != nil {
		t, err := utils.ParseDate(*founded)
		if err != nil {
			return m, fmt.Errorf("magazine %q founded date: %w", m.Name, err)
		}
		m.FoundedDate = &t
	}
	return m, nil
}

func newIssueRecord(magazineID uint, pi models.ParsedIssue) (models.Issue, error) {
	number := strings.TrimSpace(pi.IssueNumber)
	published, err := utils.ParseDate(pi.PublishDate)
	if err != nil {
		return models.Issue{}, fmt.Errorf("issue %s publish date: %w", number, err)
	}

	issue := models.Issue{
		MagazineID:   magazineID,
		IssueNumber:  number,
		VolumeNumber: trimmedOrNil(pi.VolumeNumber),
		Title:        trimmedOrNil(pi.Title),
		PublishDate:  published,
		Notes:        trimmedOrNil(pi.Notes),
	}
	if pi.PageCount != nil && *pi.PageCount > 0 {
		pc := *pi.PageCount
		issue.PageCount = &pc
	}
	if pi.Price != nil && *pi.Price > 0 {
		issue.Price = decimal.NewNullDecimal(decimal.NewFromFloat(*pi.Price))
	}
	return issue, nil
}

func trimmedOrNil(p *string) *string {
	if p == nil {
		return nil
	}
	return utils.OptionalString(*p)
}
