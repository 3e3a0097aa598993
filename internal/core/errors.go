package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies why an upload was rejected.
type ErrorKind int

const (
	KindUnsupportedMediaType ErrorKind = iota + 1
	KindMalformedInput
	KindSchemaViolation
	KindStoreWrite
)

// Sentinels for errors.Is. Every *IngestError matches the sentinel of its kind.
var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMalformedInput       = errors.New("malformed input")
	ErrSchemaViolation      = errors.New("schema violation")
	ErrStoreWrite           = errors.New("store write error")
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnsupportedMediaType:
		return "UnsupportedMediaType"
	case KindMalformedInput:
		return "MalformedInput"
	case KindSchemaViolation:
		return "SchemaViolation"
	case KindStoreWrite:
		return "StoreWriteError"
	default:
		return "Unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnsupportedMediaType:
		return ErrUnsupportedMediaType
	case KindMalformedInput:
		return ErrMalformedInput
	case KindSchemaViolation:
		return ErrSchemaViolation
	case KindStoreWrite:
		return ErrStoreWrite
	default:
		return nil
	}
}

// IngestError is returned by every ingestion step.
type IngestError struct {
	Kind    ErrorKind
	Message string   // Human-readable, safe to return to the caller
	Missing []string // SchemaViolation: every absent required column
	Err     error    // Underlying parser or store error
}

func (e *IngestError) Error() string {
	return e.Message
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *IngestError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func unsupportedMediaType(contentType string) *IngestError {
	return &IngestError{
		Kind:    KindUnsupportedMediaType,
		Message: fmt.Sprintf("invalid file type %q: only Excel or CSV files are allowed", contentType),
	}
}

func malformedInput(format Format, err error) *IngestError {
	label := "CSV"
	if format == FormatSpreadsheet {
		label = "Excel"
	}
	return &IngestError{
		Kind:    KindMalformedInput,
		Message: fmt.Sprintf("error reading %s file: %v", label, err),
		Err:     err,
	}
}

func schemaViolation(missing []string) *IngestError {
	return &IngestError{
		Kind:    KindSchemaViolation,
		Message: "missing required columns: " + strings.Join(missing, ", "),
		Missing: missing,
	}
}

func storeWrite(err error) *IngestError {
	return &IngestError{
		Kind:    KindStoreWrite,
		Message: fmt.Sprintf("error inserting records into the database: %v", err),
		Err:     err,
	}
}

// KindOf returns the kind of an ingestion error, or 0 if err is not one.
func KindOf(err error) ErrorKind {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return 0
}
