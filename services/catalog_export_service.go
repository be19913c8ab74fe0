package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"magazine-catalog-api/config"
	"magazine-catalog-api/models"
	"magazine-catalog-api/utils"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gorm.io/gorm"
)

var ErrMagazineNotFound = errors.New("magazine not found")

type CatalogExportService struct {
	db *gorm.DB
}

func NewCatalogExportService(db *gorm.DB) *CatalogExportService {
	if db == nil {
		db = config.DB
	}
	return &CatalogExportService{db: db}
}

// Rows flattens the catalog (or one magazine) into one row per magazine/issue/article.
func (s *CatalogExportService) Rows(ctx context.Context, magazineID *uint) ([]models.ExportRow, error) {
	q := s.db.WithContext(ctx).
		Preload("Issues", func(db *gorm.DB) *gorm.DB {
			return db.Order("publish_date ASC, issue_number ASC")
		}).
		Preload("Issues.Articles", func(db *gorm.DB) *gorm.DB {
			return db.Order("page_start ASC, id ASC")
		}).
		Preload("Issues.Articles.Games").
		Preload("Issues.Articles.Tags").
		Order("name ASC, id ASC")
	if magazineID != nil {
		q = q.Where("id = ?", *magazineID)
	}

	var magazines []models.Magazine
	if err := q.Find(&magazines).Error; err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if magazineID != nil && len(magazines) == 0 {
		return nil, ErrMagazineNotFound
	}
	return FlattenCatalog(magazines), nil
}

// FlattenCatalog never drops a magazine or issue: missing children leave trailing columns blank.
func FlattenCatalog(magazines []models.Magazine) []models.ExportRow {
	var rows []models.ExportRow
	for _, m := range magazines {
		base := models.ExportRow{
			MagazineName:   m.Name,
			MagazineNameEn: utils.StringValue(m.NameEn),
			Publisher:      utils.StringValue(m.Publisher),
			ISSN:           utils.StringValue(m.ISSN),
			IsActive:       strconv.FormatBool(m.IsActive),
		}
		if len(m.Issues) == 0 {
			rows = append(rows, base)
			continue
		}

		for _, issue := range m.Issues {
			withIssue := base
			withIssue.IssueNumber = issue.IssueNumber
			withIssue.VolumeNumber = utils.StringValue(issue.VolumeNumber)
			withIssue.IssueTitle = utils.StringValue(issue.Title)
			withIssue.PublishDate = utils.FormatDate(issue.PublishDate)
			withIssue.PageCount = formatOptionalInt(issue.PageCount)
			if issue.Price.Valid {
				withIssue.Price = issue.Price.Decimal.String()
			}
			if len(issue.Articles) == 0 {
				rows = append(rows, withIssue)
				continue
			}

			for _, a := range issue.Articles {
				row := withIssue
				row.ArticleTitle = a.Title
				row.ArticleSubtitle = utils.StringValue(a.Subtitle)
				row.Authors = strings.Join(a.Authors, ";")
				row.Category = utils.StringValue(a.Category)
				row.PageStart = formatOptionalInt(a.PageStart)
				row.PageEnd = formatOptionalInt(a.PageEnd)
				row.Summary = utils.StringValue(a.Summary)
				row.Tags = joinTags(a.Tags)
				row.Games = joinGames(a.Games)
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// WriteCSV writes UTF-8 with a BOM and CRLF line endings so spreadsheet tools open it as Unicode.
func WriteCSV(w io.Writer, rows []models.ExportRow) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(bw)
	cw.UseCRLF = true

	if err := cw.Write(models.CatalogExportColumns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Values()); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Close()
}

func WriteXLSX(w io.Writer, rows []models.ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Catalog"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(models.CatalogExportColumns))
	for i, col := range models.CatalogExportColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := r.Values()
		line := make([]interface{}, len(values))
		for j, v := range values {
			line[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &line); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func joinTags(tags []models.Tag) string {
	sorted := append([]models.Tag(nil), tags...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	parts := make([]string, 0, len(sorted))
	for _, t := range sorted {
		parts = append(parts, fmt.Sprintf("%s[%s]", t.Name, t.Type))
	}
	return strings.Join(parts, ";")
}

func joinGames(games []models.Game) string {
	sorted := append([]models.Game(nil), games...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	parts := make([]string, 0, len(sorted))
	for _, g := range sorted {
		parts = append(parts, g.Name)
	}
	return strings.Join(parts, ";")
}
