package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/CustomerUpload/internal/config"
	"github.com/JonMunkholm/CustomerUpload/internal/core"
)

var _ core.Store = (*CustomerRepo)(nil)

// CustomerRepo inserts customers in a single transaction.
type CustomerRepo struct {
	db        TxBeginner
	batchSize int
}

// NewCustomerRepository builds a repository issuing at most batchSize rows
// per INSERT. Out-of-range sizes are clamped to [1, config.MaxBatchSize].
func NewCustomerRepository(db TxBeginner, batchSize int) *CustomerRepo {
	if batchSize <= 0 || batchSize > config.MaxBatchSize {
		batchSize = config.MaxBatchSize
	}
	return &CustomerRepo{db: db, batchSize: batchSize}
}

// InsertCustomers writes every customer or none. Rows are sent as multi-row
// INSERT statements of up to batchSize rows inside one transaction.
func (r *CustomerRepo) InsertCustomers(ctx context.Context, customers []core.Customer) (int64, error) {
	if len(customers) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var inserted int64
	for start := 0; start < len(customers); start += r.batchSize {
		end := min(start+r.batchSize, len(customers))

		sql, args := buildInsert(customers[start:end])
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return 0, fmt.Errorf("insert rows %d-%d: %w", start+1, end, describe(err))
		}
		inserted += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return inserted, nil
}

// buildInsert renders one multi-row INSERT naming every customer column.
// Unset timestamps are sent as DEFAULT so the column default applies.
func buildInsert(customers []core.Customer) (string, []any) {
	cols := core.ColumnNames()

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(CustomerTable)
	b.WriteString(" (")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(customers)*len(cols))
	for i := range customers {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j, col := range cols {
			if j > 0 {
				b.WriteString(", ")
			}
			v := customers[i].Value(col)
			if ts, ok := v.(pgtype.Timestamptz); ok && !ts.Valid {
				b.WriteString("DEFAULT")
				continue
			}
			args = append(args, v)
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(len(args)))
		}
		b.WriteByte(')')
	}
	return b.String(), args
}

// describe adds the constraint or column to PostgreSQL errors that name one.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.ConstraintName != "":
		return fmt.Errorf("%w (constraint %s)", err, pgErr.ConstraintName)
	case pgErr.ColumnName != "":
		return fmt.Errorf("%w (column %s)", err, pgErr.ColumnName)
	}
	return err
}
