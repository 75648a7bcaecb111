package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ExtractEmailColumn reads an invitee CSV and returns the values of the first
// column whose header contains "email" (case-insensitive). The header row is
// the first row with any non-empty cell, so files with leading blank lines
// still parse.
func ExtractEmailColumn(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	headerIdx := -1
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				headerIdx = i
				break
			}
		}
		if headerIdx != -1 {
			break
		}
	}

	if headerIdx == -1 {
		return nil, fmt.Errorf("no data found in CSV file")
	}

	emailCol := -1
	for i, cell := range rows[headerIdx] {
		if strings.Contains(strings.ToLower(strings.TrimSpace(cell)), "email") {
			emailCol = i
			break
		}
	}

	if emailCol == -1 {
		return nil, fmt.Errorf("CSV file must contain an email column")
	}

	var emails []string
	for _, row := range rows[headerIdx+1:] {
		if emailCol < len(row) && strings.TrimSpace(row[emailCol]) != "" {
			emails = append(emails, row[emailCol])
		}
	}

	return emails, nil
}
