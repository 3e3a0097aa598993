package core

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(store Store, opts ServiceOptions) *Service {
	return NewService(store, NewUploadLimiter(2, time.Second), opts)
}

func TestService_IngestCSV(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, ServiceOptions{})

	data := csvFile(
		customerHeader,
		"Personal,Juan Perez,,123456789,juan@example.com,,555-1234,Calle Falsa 123,2024-03-05 10:30:00.123456,2024-03-05 10:30:00",
		"Empresa,ACME Corp,ACME Corporation,987654321,contacto@acme.com,A1B2C3,555-5678,Avenida Siempre Viva 742,,",
	)

	res, err := svc.Ingest(context.Background(), Upload{FileName: "clientes.csv", ContentType: csvType, Data: data})
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.Inserted)
	assert.Equal(t, FormatCSV, res.Format)
	assert.Equal(t, "clientes.csv", res.FileName)
	assert.NotEmpty(t, res.UploadID)

	require.Len(t, store.rows, 2)
	juan := store.rows[0]
	assert.Equal(t, "Personal", juan.CustomerType)
	assert.Equal(t, "Juan Perez", juan.Name)
	assert.Equal(t, "", juan.CompanyName)
	assert.Equal(t, "Calle Falsa 123", juan.Address)
	require.True(t, juan.CreatedAt.Valid)
	assert.True(t, juan.CreatedAt.Time.Equal(time.Date(2024, 3, 5, 10, 30, 0, 123456000, time.UTC)))

	acme := store.rows[1]
	assert.Equal(t, "A1B2C3", acme.TaxID)
	assert.False(t, acme.CreatedAt.Valid, "empty timestamp should fall back to column default")
	assert.False(t, acme.UpdatedAt.Valid)
}

func TestService_IngestBindsByColumnName(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, ServiceOptions{})

	// Columns shuffled, camelCase, with an extra column.
	data := csvFile(
		"email,notes,address,phone,taxId,identityNumber,companyName,name,customerType",
		"a@x.com,ignored,Main St,555,T1,42,Widgets,Ann,Empresa",
	)

	_, err := svc.Ingest(context.Background(), Upload{ContentType: csvType, Data: data})
	require.NoError(t, err)

	require.Len(t, store.rows, 1)
	assert.Equal(t, Customer{
		CustomerType:   "Empresa",
		Name:           "Ann",
		CompanyName:    "Widgets",
		IdentityNumber: "42",
		Email:          "a@x.com",
		TaxID:          "T1",
		Phone:          "555",
		Address:        "Main St",
	}, store.rows[0])
}

func TestService_IngestSpreadsheet(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, ServiceOptions{})

	created := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	data := xlsxFile(t,
		headerRow(),
		[]any{"Personal", "Juan Perez", "", "123456789", "juan@example.com", "", "555-1234", "Calle Falsa 123", created, created},
	)

	res, err := svc.Ingest(context.Background(), Upload{FileName: "clientes_sample.xlsx", ContentType: xlsxType, Data: data})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Inserted)

	require.Len(t, store.rows, 1)
	got := store.rows[0]
	assert.Equal(t, "Juan Perez", got.Name)
	assert.Equal(t, "", got.CompanyName)
	require.True(t, got.CreatedAt.Valid)
	assert.WithinDuration(t, created, got.CreatedAt.Time, time.Second)
	assert.WithinDuration(t, created, got.UpdatedAt.Time, time.Second)
}

func TestService_IngestLegacySpreadsheet(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, ServiceOptions{})

	data, err := os.ReadFile("testdata/customers.xls")
	require.NoError(t, err)

	res, err := svc.Ingest(context.Background(), Upload{FileName: "clientes.xls", ContentType: xlsType, Data: data})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Inserted)
	assert.Equal(t, FormatSpreadsheet, res.Format)

	require.Len(t, store.rows, 2)
	assert.Equal(t, "Personal", store.rows[0].CustomerType)
	require.True(t, store.rows[0].CreatedAt.Valid)
	assert.True(t, store.rows[0].CreatedAt.Time.Equal(time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)))
	assert.False(t, store.rows[0].UpdatedAt.Valid)
	assert.Equal(t, "A1B2C3", store.rows[1].TaxID)
}

func TestService_IngestSchemaViolationPersistsNothing(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, ServiceOptions{})

	data := csvFile(
		"customer_type,name,company_name,identity_number,tax_id,phone,address",
		"Personal,A,,1,,1,addr",
	)

	_, err := svc.Ingest(context.Background(), Upload{ContentType: csvType, Data: data})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaViolation))
	assert.Contains(t, err.Error(), "email")
	assert.Zero(t, store.calls)
}

func TestService_IngestUnsupportedType(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, ServiceOptions{})

	_, err := svc.Ingest(context.Background(), Upload{ContentType: "application/pdf", Data: []byte("%PDF-1.7")})
	require.Error(t, err)
	assert.Equal(t, KindUnsupportedMediaType, KindOf(err))
	assert.Zero(t, store.calls)
}

func TestService_IngestHeaderOnly(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, ServiceOptions{})

	res, err := svc.Ingest(context.Background(), Upload{ContentType: csvType, Data: csvFile(customerHeader)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Inserted)
	assert.Zero(t, store.calls, "no statement should be issued for zero rows")
}

func TestService_IngestStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("connection reset by peer")}
	svc := newTestService(store, ServiceOptions{})

	_, err := svc.Ingest(context.Background(), Upload{
		ContentType: csvType,
		Data:        csvFile(customerHeader, "Personal,A,,1,a@x.com,,1,addr,,"),
	})
	require.Error(t, err)
	assert.Equal(t, KindStoreWrite, KindOf(err))
	assert.Contains(t, err.Error(), "error inserting records into the database")
	assert.Contains(t, err.Error(), "connection reset by peer")
}

func TestService_IngestTimestampLocation(t *testing.T) {
	store := &fakeStore{}
	loc := time.FixedZone("COT", -5*3600)
	svc := newTestService(store, ServiceOptions{Location: loc})

	_, err := svc.Ingest(context.Background(), Upload{
		ContentType: csvType,
		Data:        csvFile(customerHeader, "Personal,A,,1,a@x.com,,1,addr,2024-03-05 10:30:00,2024-03-05T10:30:00Z"),
	})
	require.NoError(t, err)

	require.Len(t, store.rows, 1)
	assert.True(t, store.rows[0].CreatedAt.Time.Equal(time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)))
	assert.True(t, store.rows[0].UpdatedAt.Time.Equal(time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)))
}

func TestService_IngestUnparsableTimestamp(t *testing.T) {
	data := csvFile(
		customerHeader,
		"Personal,A,,1,a@x.com,,1,addr,2024-03-05,",
		"Personal,B,,2,b@x.com,,2,addr,last tuesday,",
	)

	t.Run("lenient", func(t *testing.T) {
		store := &fakeStore{}
		svc := newTestService(store, ServiceOptions{})

		res, err := svc.Ingest(context.Background(), Upload{ContentType: csvType, Data: data})
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Inserted)
		assert.False(t, store.rows[1].CreatedAt.Valid)
	})

	t.Run("strict", func(t *testing.T) {
		store := &fakeStore{}
		svc := newTestService(store, ServiceOptions{StrictTimestamps: true})

		_, err := svc.Ingest(context.Background(), Upload{ContentType: csvType, Data: data})
		require.Error(t, err)
		assert.Equal(t, KindMalformedInput, KindOf(err))
		assert.Contains(t, err.Error(), "line 3")
		assert.Contains(t, err.Error(), "created_at")
		assert.Zero(t, store.calls)
	})
}

func TestService_IngestLimiterSaturated(t *testing.T) {
	store := &fakeStore{}
	limiter := NewUploadLimiter(1, 20*time.Millisecond)
	svc := NewService(store, limiter, ServiceOptions{})

	release, err := limiter.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	_, err = svc.Ingest(context.Background(), Upload{ContentType: csvType, Data: csvFile(customerHeader)})
	assert.ErrorIs(t, err, ErrTooManyUploads)
}

func TestService_IngestKeepsUploadID(t *testing.T) {
	svc := newTestService(&fakeStore{}, ServiceOptions{})

	res, err := svc.Ingest(context.Background(), Upload{ID: "upload-1", ContentType: csvType, Data: csvFile(customerHeader)})
	require.NoError(t, err)
	assert.Equal(t, "upload-1", res.UploadID)
}
