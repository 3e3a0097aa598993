// Package samples writes customer files in the layouts accepted by /upload.
//
// The same writers back the sample generator and the /template endpoint;
// a template is simply a file with no customers.
package samples

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/CustomerUpload/internal/core"
)

// TimestampLayout is how timestamps are written to CSV files.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// File names produced by the sample generator.
const (
	SpreadsheetName = "clientes_sample.xlsx"
	CSVName         = "clientes_sample.csv"
)

const sheetName = "Sheet1"

// Customers returns the two demonstration customers stamped with now.
func Customers(now time.Time) []core.Customer {
	ts := pgtype.Timestamptz{Time: now, Valid: true}
	return []core.Customer{
		{
			CustomerType:   "Personal",
			Name:           "Juan Perez",
			IdentityNumber: "123456789",
			Email:          "juan@example.com",
			Phone:          "555-1234",
			Address:        "Calle Falsa 123",
			CreatedAt:      ts,
			UpdatedAt:      ts,
		},
		{
			CustomerType:   "Empresa",
			Name:           "ACME Corp",
			CompanyName:    "ACME Corporation",
			IdentityNumber: "987654321",
			Email:          "contacto@acme.com",
			TaxID:          "A1B2C3",
			Phone:          "555-5678",
			Address:        "Avenida Siempre Viva 742",
			CreatedAt:      ts,
			UpdatedAt:      ts,
		},
	}
}

// WriteCSV writes a header row followed by one row per customer.
// Unset timestamps are written as empty cells.
func WriteCSV(w io.Writer, customers []core.Customer) error {
	cw := csv.NewWriter(w)
	cols := core.ColumnNames()

	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(cols))
	for i := range customers {
		for j, col := range cols {
			record[j] = formatCell(customers[i].Value(col))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case pgtype.Timestamptz:
		if !v.Valid {
			return ""
		}
		return v.Time.UTC().Format(TimestampLayout)
	default:
		return fmt.Sprint(v)
	}
}

// WriteXLSX writes a single-sheet workbook with a bold header row. Timestamps
// are stored as Excel dates holding the UTC wall clock.
func WriteXLSX(w io.Writer, customers []core.Customer) error {
	f := excelize.NewFile()
	defer f.Close()

	cols := core.ColumnNames()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	dateFormat := "yyyy-mm-dd hh:mm:ss"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFormat})
	if err != nil {
		return fmt.Errorf("create date style: %w", err)
	}

	for j, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(j+1, 1)
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return err
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(cols))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "A", lastCol, 20); err != nil {
		return err
	}

	for i := range customers {
		row := i + 2
		for j, col := range cols {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			switch v := customers[i].Value(col).(type) {
			case pgtype.Timestamptz:
				if !v.Valid {
					continue
				}
				if err := f.SetCellValue(sheetName, cell, v.Time.UTC()); err != nil {
					return err
				}
				if err := f.SetCellStyle(sheetName, cell, cell, dateStyle); err != nil {
					return err
				}
			default:
				if err := f.SetCellValue(sheetName, cell, v); err != nil {
					return err
				}
			}
		}
	}

	return f.Write(w)
}
