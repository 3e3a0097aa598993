package core

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// FieldType represents the expected data type for a customer column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldTimestamp
)

// FieldSpec describes one column of the customer layout.
type FieldSpec struct {
	Name     string    // Canonical column name, shared by the file header and the database
	Type     FieldType // Expected data type
	Required bool      // Column must exist in the uploaded file
}

// Customer column names.
const (
	ColCustomerType   = "customer_type"
	ColName           = "name"
	ColCompanyName    = "company_name"
	ColIdentityNumber = "identity_number"
	ColEmail          = "email"
	ColTaxID          = "tax_id"
	ColPhone          = "phone"
	ColAddress        = "address"
	ColCreatedAt      = "created_at"
	ColUpdatedAt      = "updated_at"
)

// CustomerFields is the fixed storage layout of the customer table, in
// insertion order. Required text columns may hold empty strings.
var CustomerFields = []FieldSpec{
	{Name: ColCustomerType, Type: FieldText, Required: true},
	{Name: ColName, Type: FieldText, Required: true},
	{Name: ColCompanyName, Type: FieldText, Required: true},
	{Name: ColIdentityNumber, Type: FieldText, Required: true},
	{Name: ColEmail, Type: FieldText, Required: true},
	{Name: ColTaxID, Type: FieldText, Required: true},
	{Name: ColPhone, Type: FieldText, Required: true},
	{Name: ColAddress, Type: FieldText, Required: true},
	{Name: ColCreatedAt, Type: FieldTimestamp},
	{Name: ColUpdatedAt, Type: FieldTimestamp},
}

// RequiredFields returns the names of the columns every upload must carry.
func RequiredFields() []string {
	var names []string
	for _, f := range CustomerFields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// ColumnNames returns every customer column name in storage order.
func ColumnNames() []string {
	names := make([]string, len(CustomerFields))
	for i, f := range CustomerFields {
		names[i] = f.Name
	}
	return names
}

// Customer is one row of the customer table, minus the generated id.
// A timestamp with Valid=false is left to the column default.
type Customer struct {
	CustomerType   string
	Name           string
	CompanyName    string
	IdentityNumber string
	Email          string
	TaxID          string
	Phone          string
	Address        string
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

// Value returns the value bound to the named column.
// Unknown columns return nil.
func (c *Customer) Value(column string) any {
	switch column {
	case ColCustomerType:
		return c.CustomerType
	case ColName:
		return c.Name
	case ColCompanyName:
		return c.CompanyName
	case ColIdentityNumber:
		return c.IdentityNumber
	case ColEmail:
		return c.Email
	case ColTaxID:
		return c.TaxID
	case ColPhone:
		return c.Phone
	case ColAddress:
		return c.Address
	case ColCreatedAt:
		return c.CreatedAt
	case ColUpdatedAt:
		return c.UpdatedAt
	}
	return nil
}

// setText assigns a text column by name. Non-text columns are ignored.
func (c *Customer) setText(column, value string) {
	switch column {
	case ColCustomerType:
		c.CustomerType = value
	case ColName:
		c.Name = value
	case ColCompanyName:
		c.CompanyName = value
	case ColIdentityNumber:
		c.IdentityNumber = value
	case ColEmail:
		c.Email = value
	case ColTaxID:
		c.TaxID = value
	case ColPhone:
		c.Phone = value
	case ColAddress:
		c.Address = value
	}
}

// setTimestamp assigns a timestamp column by name.
func (c *Customer) setTimestamp(column string, ts pgtype.Timestamptz) {
	switch column {
	case ColCreatedAt:
		c.CreatedAt = ts
	case ColUpdatedAt:
		c.UpdatedAt = ts
	}
}

// Format identifies the tabular encoding of an upload.
type Format string

const (
	FormatCSV         Format = "csv"
	FormatSpreadsheet Format = "spreadsheet"
)

// HeaderIndex maps normalized column names to their position in a row.
type HeaderIndex map[string]int

// Table is the parsed form of an upload: a header and the data rows below it.
type Table struct {
	Format   Format
	Header   []string   // Header cells as they appear in the file
	Rows     [][]string // Non-blank data rows
	Lines    []int      // 1-based source line (CSV) or row (spreadsheet) of each entry in Rows
	Date1904 bool       // Spreadsheet serial dates use the 1904 epoch

	index HeaderIndex
}

// Column reports the position of the named column.
func (t *Table) Column(name string) (int, bool) {
	if t.index == nil {
		t.index = MakeHeaderIndex(t.Header)
	}
	pos, ok := t.index[normalizeHeader(name)]
	return pos, ok
}

// Cell returns the trimmed value of the named column in row, or "" when the
// column is absent or the row is short.
func (t *Table) Cell(row []string, name string) string {
	pos, ok := t.Column(name)
	if !ok || pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}

// Upload is a single file submitted for ingestion.
type Upload struct {
	ID          string // Assigned by Ingest when empty
	FileName    string
	ContentType string
	Data        []byte
}

// IngestResult describes a completed ingestion.
type IngestResult struct {
	UploadID string
	FileName string
	Format   Format
	Inserted int64
	Duration time.Duration
}

// Store persists customers. Implementations must insert all rows or none.
type Store interface {
	InsertCustomers(ctx context.Context, customers []Customer) (int64, error)
}
