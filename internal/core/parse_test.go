package core

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffFormat(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        Format
		wantErr     bool
	}{
		{"xlsx", xlsxType, FormatSpreadsheet, false},
		{"legacy excel", xlsType, FormatSpreadsheet, false},
		{"csv", "text/csv", FormatCSV, false},
		{"csv with charset", "text/csv; charset=utf-8", FormatCSV, false},
		{"application csv", "application/csv", FormatCSV, false},
		{"plain text", "text/plain", FormatCSV, false},
		{"upper case", "TEXT/CSV", FormatCSV, false},
		{"json", "application/json", "", true},
		{"pdf", "application/pdf", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SniffFormat(tt.contentType)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsupportedMediaType))
				assert.Contains(t, err.Error(), "only Excel or CSV files are allowed")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTable_UnsupportedTypeSkipsParsing(t *testing.T) {
	// Garbage bytes would be MalformedInput if they reached a parser.
	_, err := ParseTable([]byte{0xff, 0xfe, 0x00}, "application/json")
	require.Error(t, err)
	assert.Equal(t, KindUnsupportedMediaType, KindOf(err))
}

func TestParseTable_CSV(t *testing.T) {
	data := csvFile(
		customerHeader,
		"Personal,Juan Perez,,123456789,juan@example.com,,555-1234,Calle Falsa 123,,",
		"Empresa,ACME Corp,ACME Corporation,987654321,contacto@acme.com,A1B2C3,555-5678,\"Avenida Siempre Viva 742\",,",
	)

	table, err := ParseTable(data, csvType)
	require.NoError(t, err)

	assert.Equal(t, FormatCSV, table.Format)
	assert.Len(t, table.Header, 10)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []int{2, 3}, table.Lines)
	assert.Equal(t, "ACME Corporation", table.Cell(table.Rows[1], ColCompanyName))
	assert.Equal(t, "", table.Cell(table.Rows[0], ColCompanyName))
}

func TestParseTable_CSVStripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, csvFile(customerHeader, "Personal,A,,1,a@x.com,,1,addr,,")...)

	table, err := ParseTable(data, csvType)
	require.NoError(t, err)

	pos, ok := table.Column(ColCustomerType)
	require.True(t, ok)
	assert.Equal(t, 0, pos)
}

func TestParseTable_CSVInvalidUTF8(t *testing.T) {
	data := csvFile(customerHeader, "Personal,Jos\xe9,,1,a@x.com,,1,addr,,")

	_, err := ParseTable(data, csvType)
	require.Error(t, err)
	assert.Equal(t, KindMalformedInput, KindOf(err))
	assert.Contains(t, err.Error(), "error reading CSV file")
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseTable_Empty(t *testing.T) {
	for _, ct := range []string{csvType, xlsxType} {
		t.Run(ct, func(t *testing.T) {
			_, err := ParseTable(nil, ct)
			require.Error(t, err)
			assert.Equal(t, KindMalformedInput, KindOf(err))
			assert.Contains(t, err.Error(), "empty file")
		})
	}
}

func TestParseTable_CSVOnlyBlankLines(t *testing.T) {
	_, err := ParseTable([]byte("\n,,,\n  ,\n"), csvType)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row found")
}

func TestParseTable_CSVSkipsBlankRows(t *testing.T) {
	data := csvFile(
		customerHeader,
		",,,,,,,,,",
		"Personal,A,,1,a@x.com,,1,addr,,",
		"",
		"Empresa,B,B Inc,2,b@x.com,T1,2,addr,,",
	)

	table, err := ParseTable(data, csvType)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []int{3, 5}, table.Lines)
}

func TestParseTable_CSVHeaderAfterPreamble(t *testing.T) {
	data := csvFile(
		"Customer export",
		"generated,2024-03-05",
		customerHeader,
		"Personal,A,,1,a@x.com,,1,addr,,",
	)

	table, err := ParseTable(data, csvType)
	require.NoError(t, err)
	assert.Equal(t, "customer_type", table.Header[0])
	require.Len(t, table.Rows, 1)
	assert.Equal(t, 4, table.Lines[0])
}

func TestParseTable_Spreadsheet(t *testing.T) {
	data := xlsxFile(t,
		headerRow(),
		[]any{"Personal", "Juan Perez", "", "123456789", "juan@example.com", "", "555-1234", "Calle Falsa 123"},
		[]any{"Empresa", "ACME Corp", "ACME Corporation", "987654321", "contacto@acme.com", "A1B2C3", "555-5678", "Avenida Siempre Viva 742"},
	)

	table, err := ParseTable(data, xlsxType)
	require.NoError(t, err)

	assert.Equal(t, FormatSpreadsheet, table.Format)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []int{2, 3}, table.Lines)
	assert.Equal(t, "Juan Perez", table.Cell(table.Rows[0], ColName))
	assert.Equal(t, "", table.Cell(table.Rows[0], ColTaxID))
	assert.Equal(t, "A1B2C3", table.Cell(table.Rows[1], ColTaxID))
	// Short rows read as empty for trailing columns.
	assert.Equal(t, "", table.Cell(table.Rows[1], ColUpdatedAt))
	assert.False(t, table.Date1904)
}

func TestParseTable_NotAWorkbook(t *testing.T) {
	_, err := ParseTable([]byte("this is not a zip archive"), "application/vnd.ms-excel")
	require.Error(t, err)
	assert.Equal(t, KindMalformedInput, KindOf(err))
	assert.Contains(t, err.Error(), "error reading Excel file")
}

func TestParseTable_LegacyWorkbook(t *testing.T) {
	data, err := os.ReadFile("testdata/customers.xls")
	require.NoError(t, err)

	table, err := ParseTable(data, xlsType)
	require.NoError(t, err)

	assert.Equal(t, FormatSpreadsheet, table.Format)
	assert.Len(t, table.Header, 10)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []int{2, 3}, table.Lines)
	assert.Equal(t, "Juan Perez", table.Cell(table.Rows[0], ColName))
	assert.Equal(t, "2024-03-05 10:30:00", table.Cell(table.Rows[0], ColCreatedAt))
	assert.Equal(t, "", table.Cell(table.Rows[0], ColCompanyName))
	assert.Equal(t, "ACME Corporation", table.Cell(table.Rows[1], ColCompanyName))
	assert.Equal(t, "Avenida Siempre Viva 742", table.Cell(table.Rows[1], ColAddress))
}

func TestParseTable_CorruptLegacyWorkbook(t *testing.T) {
	data := append(append([]byte{}, oleSignature...), make([]byte, 64)...)

	_, err := ParseTable(data, xlsType)
	require.Error(t, err)
	assert.Equal(t, KindMalformedInput, KindOf(err))
	assert.Contains(t, err.Error(), "error reading Excel file")
}

func TestParseTable_XLSXDeclaredAsLegacy(t *testing.T) {
	data := xlsxFile(t,
		headerRow(),
		[]any{"Personal", "Juan Perez", "", "123456789", "juan@example.com", "", "555-1234", "Calle Falsa 123"},
	)

	table, err := ParseTable(data, xlsType)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Juan Perez", table.Cell(table.Rows[0], ColName))
}

func TestFindHeaderRow(t *testing.T) {
	required := []string{"a", "b"}

	tests := []struct {
		name string
		rows [][]string
		want int
	}{
		{"first row", [][]string{{"a", "b"}, {"1", "2"}}, 0},
		{"after title", [][]string{{"Report"}, {"a", "b"}, {"1", "2"}}, 1},
		{"no match falls back to first", [][]string{{"x"}, {"y"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findHeaderRow(tt.rows, required))
		})
	}
}

func TestFindHeaderRow_SearchLimit(t *testing.T) {
	var rows [][]string
	for i := 0; i < MaxHeaderSearchRows; i++ {
		rows = append(rows, []string{"filler"})
	}
	rows = append(rows, []string{"a", "b"})

	assert.Equal(t, 0, findHeaderRow(rows, []string{"a", "b"}))
}
