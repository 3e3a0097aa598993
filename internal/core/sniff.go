package core

import (
	"mime"
	"strings"
)

// Declared content types accepted for each format.
var (
	SpreadsheetTypes = []string{
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
	DelimitedTextTypes = []string{
		"text/csv",
		"application/csv",
		"text/plain",
	}
)

// SniffFormat selects a parser from the declared content type.
// Parameters such as charset are ignored.
func SniffFormat(contentType string) (Format, error) {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	for _, t := range SpreadsheetTypes {
		if mediaType == t {
			return FormatSpreadsheet, nil
		}
	}
	for _, t := range DelimitedTextTypes {
		if mediaType == t {
			return FormatCSV, nil
		}
	}
	return "", unsupportedMediaType(contentType)
}

// ParseTable classifies data by its declared content type and parses it.
// Unknown types fail before any byte is read.
func ParseTable(data []byte, contentType string) (*Table, error) {
	format, err := SniffFormat(contentType)
	if err != nil {
		return nil, err
	}

	var table *Table
	switch format {
	case FormatSpreadsheet:
		table, err = parseSpreadsheet(data)
	default:
		table, err = parseCSV(data)
	}
	if err != nil {
		return nil, malformedInput(format, err)
	}
	return table, nil
}
