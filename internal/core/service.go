package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/CustomerUpload/internal/logging"
)

// DefaultUploadTimeout bounds a single ingestion when no timeout is configured.
var DefaultUploadTimeout = 5 * time.Minute

// ServiceOptions tune how uploads are interpreted.
type ServiceOptions struct {
	Location         *time.Location // Zone for timestamps without an offset; UTC when nil
	StrictTimestamps bool           // Reject the upload on an unparsable non-empty timestamp
	Timeout          time.Duration  // Per-upload deadline; DefaultUploadTimeout when zero
}

// Service turns uploaded files into stored customers.
type Service struct {
	store   Store
	limiter *UploadLimiter
	opts    ServiceOptions
}

// NewService creates a Service. A nil limiter disables concurrency limiting.
func NewService(store Store, limiter *UploadLimiter, opts ServiceOptions) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultUploadTimeout
	}
	return &Service{store: store, limiter: limiter, opts: opts}
}

// NewUploadID returns a fresh identifier for an upload.
func NewUploadID() string {
	return uuid.New().String()
}

// Ingest sniffs, parses, validates and loads one upload. Either every data
// row is inserted or none is. A file with a valid header and no data rows
// succeeds with zero inserted and never reaches the store.
func (s *Service) Ingest(ctx context.Context, up Upload) (*IngestResult, error) {
	if up.ID == "" {
		up.ID = NewUploadID()
	}
	start := time.Now()

	log := logging.WithFields(ctx,
		"upload_id", up.ID,
		"file", up.FileName,
		"content_type", up.ContentType,
		"size", len(up.Data),
	)
	if ip := IPAddressFromContext(ctx); ip != "" {
		log = log.With("client_ip", ip)
	}
	if ua := UserAgentFromContext(ctx); ua != "" {
		log = log.With("user_agent", ua)
	}

	if s.limiter != nil {
		release, err := s.limiter.Acquire(ctx)
		if err != nil {
			log.Warn("upload rejected", "error", err)
			return nil, err
		}
		defer release()
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	table, err := ParseTable(up.Data, up.ContentType)
	if err != nil {
		log.Warn("upload parse failed", "error", err)
		return nil, err
	}

	if err := ValidateHeaders(table); err != nil {
		log.Warn("upload schema invalid", "error", err)
		return nil, err
	}

	customers, err := s.customers(table)
	if err != nil {
		log.Warn("upload rows invalid", "error", err)
		return nil, err
	}

	result := &IngestResult{
		UploadID: up.ID,
		FileName: up.FileName,
		Format:   table.Format,
	}

	if len(customers) > 0 {
		inserted, err := s.store.InsertCustomers(ctx, customers)
		if err != nil {
			log.Error("upload insert failed", "rows", len(customers), "error", err)
			return nil, storeWrite(err)
		}
		result.Inserted = inserted
	}

	result.Duration = time.Since(start)
	log.Info("upload ingested",
		"format", table.Format,
		"inserted", result.Inserted,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// customers binds every data row of t to a Customer by column name.
func (s *Service) customers(t *Table) ([]Customer, error) {
	out := make([]Customer, 0, len(t.Rows))
	for i, row := range t.Rows {
		var c Customer
		for _, f := range CustomerFields {
			value := t.Cell(row, f.Name)
			switch f.Type {
			case FieldTimestamp:
				ts := t.coerceTimestamp(value, s.opts.Location)
				if !ts.Valid && value != "" && s.opts.StrictTimestamps {
					return nil, malformedInput(t.Format,
						fmt.Errorf("line %d: column %s: invalid timestamp %q", t.Lines[i], f.Name, value))
				}
				c.setTimestamp(f.Name, ts)
			default:
				c.setText(f.Name, value)
			}
		}
		out = append(out, c)
	}
	return out, nil
}
