package core

// parse.go turns raw upload bytes into a Table.
//
// Both parsers produce a grid of strings which buildTable then reduces to a
// header row and data rows:
//  1. Rows whose cells are all blank are dropped
//  2. The header is the first of the leading MaxHeaderSearchRows rows that
//     names every required column, or the first row if none does
//  3. Everything below the header is data

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// MaxHeaderSearchRows is the maximum number of rows to scan for the header.
var MaxHeaderSearchRows = 20

// parseCSV reads comma-separated text. Rows may have differing field counts.
func parseCSV(data []byte) (*Table, error) {
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}

	text, err := prepareText(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	var lines []int
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := r.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}

	return buildTable(FormatCSV, records, lines)
}

// oleSignature opens every compound document, which is how BIFF (.xls)
// workbooks are stored.
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// parseSpreadsheet reads the first worksheet of an xlsx or legacy xls
// workbook. Anything that is not a compound document goes to the xlsx reader.
func parseSpreadsheet(data []byte) (*Table, error) {
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}
	if bytes.HasPrefix(data, oleSignature) {
		return parseLegacyWorkbook(data)
	}
	return parseWorkbook(data)
}

// parseWorkbook reads an xlsx workbook. Cells are read raw so date cells
// arrive as Excel serial numbers rather than in the workbook's display format.
func parseWorkbook(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("no sheets found in workbook")
	}

	grid, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	lines := make([]int, len(grid))
	for i := range grid {
		lines[i] = i + 1
	}

	table, err := buildTable(FormatSpreadsheet, grid, lines)
	if err != nil {
		return nil, err
	}

	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		table.Date1904 = *props.Date1904
	}
	return table, nil
}

// parseLegacyWorkbook reads the first worksheet of a BIFF workbook. Date cells
// arrive already formatted, as RFC 3339 for the built-in date formats.
func parseLegacyWorkbook(data []byte) (table *Table, err error) {
	// The BIFF reader panics on some truncated records.
	defer func() {
		if r := recover(); r != nil {
			table, err = nil, fmt.Errorf("corrupt xls workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls workbook: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, errors.New("no sheets found in workbook")
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("no sheets found in workbook")
	}

	var grid [][]string
	var lines []int
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		// Rows built from cells alone report no last column.
		width := row.LastCol()
		if width < len(CustomerFields) {
			width = len(CustomerFields)
		}
		record := make([]string, width)
		for c := range record {
			record[c] = row.Col(c)
		}
		grid = append(grid, trimTrailingBlanks(record))
		lines = append(lines, i+1)
	}

	return buildTable(FormatSpreadsheet, grid, lines)
}

// trimTrailingBlanks drops empty cells after the last non-empty one.
func trimTrailingBlanks(record []string) []string {
	n := len(record)
	for n > 0 && strings.TrimSpace(record[n-1]) == "" {
		n--
	}
	return record[:n]
}

// buildTable locates the header and splits off the data rows.
func buildTable(format Format, records [][]string, lines []int) (*Table, error) {
	var rows [][]string
	var rowLines []int
	for i, record := range records {
		if isBlankRow(record) {
			continue
		}
		rows = append(rows, record)
		rowLines = append(rowLines, lines[i])
	}

	if len(rows) == 0 {
		return nil, errors.New("empty file: no header row found")
	}

	at := findHeaderRow(rows, RequiredFields())
	return &Table{
		Format: format,
		Header: rows[at],
		Rows:   rows[at+1:],
		Lines:  rowLines[at+1:],
		index:  MakeHeaderIndex(rows[at]),
	}, nil
}

// findHeaderRow returns the index of the first leading row that names every
// required column, or 0 so schema validation can report what is missing.
func findHeaderRow(rows [][]string, required []string) int {
	limit := MaxHeaderSearchRows
	if len(rows) < limit {
		limit = len(rows)
	}

	for i := 0; i < limit; i++ {
		if len(missingColumns(MakeHeaderIndex(rows[i]), required)) == 0 {
			return i
		}
	}
	return 0
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
