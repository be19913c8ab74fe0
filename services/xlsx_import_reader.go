package services

import (
	"fmt"
	"io"

	"magazine-catalog-api/models"

	"github.com/xuri/excelize/v2"
)

// ParseMagazineXLSX reads the first worksheet of an XLSX workbook and groups it like a CSV.
func ParseMagazineXLSX(r io.Reader) models.ParseResult {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return fatalParseResult(fmt.Errorf("read workbook: %w", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fatalParseResult(fmt.Errorf("workbook has no worksheets"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return fatalParseResult(fmt.Errorf("read worksheet %s: %w", sheets[0], err))
	}
	return ParseMagazineRecords(rows)
}
