// Package importer parses bulk source imports from Excel spreadsheets.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/content-discovery/internal/models"
)

// Column indices for the import spreadsheet (0-based).
const (
	colName        = 0 // Column A
	colURL         = 1 // Column B
	colDescription = 2 // Column C
	colActive      = 3 // Column D
	colFrequency   = 4 // Column E

	minRequiredColumns = 2 // name and url are mandatory
	headerRowIndex     = 1 // Excel rows are 1-based, header is row 1
)

// RowError reports a validation problem for a specific spreadsheet row.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ParseResult holds the outcome of parsing an import spreadsheet.
type ParseResult struct {
	Sources []*models.Source `json:"-"`
	Errors  []RowError       `json:"errors,omitempty"`
}

// Parse reads the first sheet of an xlsx file and converts each data row into
// a source. Rows that fail validation are reported in Errors and skipped;
// parsing only fails outright when the file itself is unreadable.
func Parse(r io.Reader) (*ParseResult, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	result := &ParseResult{}
	for i, cells := range rows {
		rowNum := i + 1
		if rowNum == headerRowIndex {
			continue
		}
		if isEmptyRow(cells) {
			continue
		}

		source, rowErr := parseRow(cells)
		if rowErr != "" {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Error: rowErr})
			continue
		}
		result.Sources = append(result.Sources, source)
	}

	return result, nil
}

func parseRow(cells []string) (*models.Source, string) {
	if len(cells) < minRequiredColumns {
		return nil, "name and url are required"
	}

	source := &models.Source{
		Name:   strings.TrimSpace(cell(cells, colName)),
		URL:    strings.TrimSpace(cell(cells, colURL)),
		Active: true,
		// Unspecified frequency defaults to the slowest tier.
		CheckFrequency: models.FrequencyMonthly,
	}
	source.Description = strings.TrimSpace(cell(cells, colDescription))

	if raw := strings.TrimSpace(cell(cells, colActive)); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Sprintf("invalid active value %q", raw)
		}
		source.Active = active
	}

	if raw := strings.TrimSpace(cell(cells, colFrequency)); raw != "" {
		freq, err := models.ParseCheckFrequency(strings.ToLower(raw))
		if err != nil {
			return nil, fmt.Sprintf("invalid check frequency %q", raw)
		}
		source.CheckFrequency = freq
	}

	if err := source.Validate(); err != nil {
		return nil, err.Error()
	}

	return source, ""
}

func cell(cells []string, idx int) string {
	if idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
