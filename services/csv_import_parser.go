package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"magazine-catalog-api/models"
	"magazine-catalog-api/utils"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ParseMagazineCSV reads a magazine import CSV and groups its rows by magazine.
// Only a structurally broken file is fatal; row problems are reported per row.
func ParseMagazineCSV(r io.Reader) models.ParseResult {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return fatalParseResult(err)
	}
	return ParseMagazineRecords(records)
}

// ParseMagazineRecords groups already-split records; records[0] is the header.
func ParseMagazineRecords(records [][]string) models.ParseResult {
	result := models.ParseResult{
		Magazines: []models.ParsedMagazine{},
		Errors:    []models.RowError{},
		Warnings:  []models.RowWarning{},
	}
	if len(records) == 0 {
		return result
	}

	headers := normalizeHeaders(records[0])
	grouped := newMagazineGroups()
	seenIssues := make(map[string]struct{})

	index := 0
	for _, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		rowNum := index + 2
		index++
		result.TotalRows++

		row, fieldErrs := ValidateRow(readRow(headers, record))
		if len(fieldErrs) > 0 {
			for _, fe := range fieldErrs {
				result.Errors = append(result.Errors, models.RowError{Row: rowNum, Field: fe.Field, Message: fe.Message})
			}
			continue
		}

		key := magazineKey(row)
		magazine := grouped.get(key)
		if magazine == nil {
			magazine = grouped.add(key, newParsedMagazine(row))
		}

		dedupKey := key + "::" + row.IssueNumber
		if _, dup := seenIssues[dedupKey]; dup {
			result.Warnings = append(result.Warnings, models.RowWarning{
				Row:     rowNum,
				Message: fmt.Sprintf("Duplicate issue number %s for magazine %s, row skipped", row.IssueNumber, magazine.Name),
			})
			continue
		}
		seenIssues[dedupKey] = struct{}{}

		magazine.Issues = append(magazine.Issues, models.ParsedIssue{
			IssueNumber:  row.IssueNumber,
			VolumeNumber: utils.OptionalString(row.VolumeNumber),
			Title:        utils.OptionalString(row.IssueTitle),
			PublishDate:  row.PublishDate,
			PageCount:    utils.ParsePositiveInt(row.PageCount),
			Price:        utils.ParsePositiveFloat(row.Price),
			Notes:        utils.OptionalString(row.Notes),
		})
	}

	result.Magazines = grouped.values()
	return result
}

func fatalParseResult(err error) models.ParseResult {
	msg := err.Error()
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		msg = fmt.Sprintf("CSV parse error: %v", perr)
	}
	return models.ParseResult{
		Magazines: []models.ParsedMagazine{},
		Errors:    []models.RowError{{Row: 0, Field: "file", Message: msg}},
		Warnings:  []models.RowWarning{},
	}
}

// magazineKey is the soft identity of a row's magazine: ISSN when present, else the name.
func magazineKey(row models.CsvRow) string {
	if row.ISSN != "" {
		return row.ISSN
	}
	return row.MagazineName
}

func newParsedMagazine(row models.CsvRow) models.ParsedMagazine {
	return models.ParsedMagazine{
		Name:        row.MagazineName,
		NameEn:      utils.OptionalString(row.MagazineNameEn),
		Publisher:   utils.OptionalString(row.Publisher),
		ISSN:        utils.OptionalString(row.ISSN),
		Description: utils.OptionalString(row.Description),
		FoundedDate: utils.OptionalString(row.FoundedDate),
		IsActive:    parseIsActive(row.IsActive),
		Issues:      []models.ParsedIssue{},
	}
}

// parseIsActive returns nil for an empty cell so the stored default is left alone.
func parseIsActive(raw string) *bool {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	active := strings.EqualFold(v, "true") || v == "1" || v == "是"
	return &active
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func normalizeHeaders(row []string) map[string]int {
	headers := make(map[string]int)
	for idx, h := range row {
		key := strings.TrimSpace(strings.ToLower(h))
		if key == "" {
			continue
		}
		if _, dup := headers[key]; !dup {
			headers[key] = idx
		}
	}
	return headers
}

func readRow(headers map[string]int, row []string) map[string]string {
	values := make(map[string]string, len(headers))
	for key, idx := range headers {
		if idx < len(row) {
			values[key] = row[idx]
		}
	}
	return values
}

// magazineGroups is an insertion-ordered map of magazines keyed by soft identity.
type magazineGroups struct {
	order []string
	byKey map[string]*models.ParsedMagazine
}

func newMagazineGroups() *magazineGroups {
	return &magazineGroups{byKey: make(map[string]*models.ParsedMagazine)}
}

func (g *magazineGroups) get(key string) *models.ParsedMagazine {
	return g.byKey[key]
}

func (g *magazineGroups) add(key string, m models.ParsedMagazine) *models.ParsedMagazine {
	ptr := &m
	g.order = append(g.order, key)
	g.byKey[key] = ptr
	return ptr
}

func (g *magazineGroups) values() []models.ParsedMagazine {
	out := make([]models.ParsedMagazine, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, *g.byKey[key])
	}
	return out
}
