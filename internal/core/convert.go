package core

// convert.go coerces timestamp cells into pgtype.Timestamptz.
//
// User files carry timestamps in many shapes: ISO-8601 with or without an
// offset, the "YYYY-MM-DD HH:MM:SS.ffffff" form pandas writes, US dates, and
// for spreadsheets, Excel serial day numbers. Values without an offset are
// interpreted in the caller's location. Anything unrecognised yields an
// invalid Timestamptz, which the store turns into the column default.

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/xuri/excelize/v2"
)

// MaxExcelSerial is the serial number of 9999-12-31, the last date Excel
// can represent.
const MaxExcelSerial = 2958465

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

var (
	// Layouts carrying an explicit offset. Fractional seconds are accepted
	// after the seconds field even though the layouts omit them.
	zonedLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05Z07",
		"2006-01-02 15:04:05 -0700",
		time.RFC1123Z,
	}
	// Layouts without an offset, parsed in the caller's location.
	naiveLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"2006/01/02 15:04:05",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
)

// ToPgTimestamptz parses s as a timestamp. Zone-less values are read in loc.
// Returns invalid for empty or unrecognised input.
func ToPgTimestamptz(s string, loc *time.Location) pgtype.Timestamptz {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Timestamptz{}
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Timestamptz{Time: t, Valid: true}
		}
	}

	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return pgtype.Timestamptz{Time: t, Valid: true}
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return pgtype.Timestamptz{Time: t, Valid: true}
		}
	}

	return pgtype.Timestamptz{}
}

// ExcelSerialToPgTimestamptz converts an Excel serial date (days since the
// workbook epoch, fraction = time of day) read in loc. NaN, infinities and
// serials outside 1..MaxExcelSerial are invalid.
func ExcelSerialToPgTimestamptz(s string, date1904 bool, loc *time.Location) pgtype.Timestamptz {
	serial, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(serial) || math.IsInf(serial, 0) || serial <= 0 || serial >= MaxExcelSerial+1 {
		return pgtype.Timestamptz{}
	}
	if loc == nil {
		loc = time.UTC
	}

	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return pgtype.Timestamptz{}
	}

	// Excel stores wall-clock time with no zone.
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	return pgtype.Timestamptz{Time: wall, Valid: true}
}

// coerceTimestamp parses a timestamp cell from t. Spreadsheet cells that are
// not a recognised text layout are tried as serial dates.
func (t *Table) coerceTimestamp(s string, loc *time.Location) pgtype.Timestamptz {
	ts := ToPgTimestamptz(s, loc)
	if !ts.Valid && t.Format == FormatSpreadsheet {
		ts = ExcelSerialToPgTimestamptz(s, t.Date1904, loc)
	}
	return ts
}
