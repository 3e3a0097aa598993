package core

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xlsType  = "application/vnd.ms-excel"
	csvType  = "text/csv"

	customerHeader = "customer_type,name,company_name,identity_number,email,tax_id,phone,address,created_at,updated_at"
)

// csvFile joins lines into a newline-terminated CSV payload.
func csvFile(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

// xlsxFile builds a single-sheet workbook whose rows start at A1.
func xlsxFile(t *testing.T, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func headerRow() []any {
	cols := strings.Split(customerHeader, ",")
	row := make([]any, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return row
}

type fakeStore struct {
	mu    sync.Mutex
	calls int
	rows  []Customer
	err   error
}

func (f *fakeStore) InsertCustomers(_ context.Context, customers []Customer) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	f.rows = append(f.rows, customers...)
	return int64(len(customers)), nil
}
