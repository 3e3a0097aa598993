package core

// error_messages.go maps errors to support codes and suggested actions.
//
// The client always receives the error's own message; the code and action are
// written to the server log next to the technical cause so support staff can
// triage a report from its request id.
//
// Codes:
//
//	MED001 - Unsupported media type: the upload is neither a spreadsheet nor CSV
//	FILE001 - File too large: the request body exceeded UPLOAD_MAX_FILE_SIZE
//	FILE002 - Unreadable file: the parser rejected the bytes
//	FILE003 - Encoding error: the CSV is not valid UTF-8
//	FILE004 - No file: the multipart body had no file part
//	FILE005 - Empty file: no header row was found
//	VAL004 - Missing column: a required column is absent
//	VAL007 - Invalid timestamp: strict timestamp coercion rejected a cell
//	DB001 - Unique constraint violated
//	DB002 - Not-null / check constraint violated
//	DB004 - Database unreachable
//	DB006 - Database timeout
//	DB000 - Other store failure
//	UPL002 - Too many concurrent uploads
//	UPL004 - Request cancelled
//	UPL005 - Request timeout
//	ERR000 - Unknown error

import (
	"context"
	"errors"
	"strings"
)

// UserMessage is the support-facing description of an error.
type UserMessage struct {
	Message string // What happened
	Action  string // What the uploader should do about it
	Code    string // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// storePatterns refine StoreWriteError by the underlying driver message.
// First match wins; matching is case-insensitive.
var storePatterns = []errorPattern{
	{"duplicate key", UserMessage{"A record violates a unique constraint", "Remove duplicate rows and upload again", "DB001"}},
	{"violates unique", UserMessage{"A record violates a unique constraint", "Remove duplicate rows and upload again", "DB001"}},
	{"violates not-null", UserMessage{"A record is missing a required value", "Check the file for empty required cells", "DB002"}},
	{"violates check", UserMessage{"A record failed a database check", "Check the file for invalid values", "DB002"}},
	{"connection refused", UserMessage{"Unable to connect to the database", "Please try again in a few moments", "DB004"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB004"}},
	{"timeout", UserMessage{"Database operation timed out", "Try a smaller file or try again later", "DB006"}},
}

// parsePatterns refine MalformedInput.
var parsePatterns = []errorPattern{
	{"utf-8", UserMessage{"File contains invalid characters", "Save the file as UTF-8", "FILE003"}},
	{"empty file", UserMessage{"The uploaded file is empty", "Upload a file with a header row", "FILE005"}},
	{"invalid timestamp", UserMessage{"A timestamp could not be parsed", "Use YYYY-MM-DD HH:MM:SS or leave the cell empty", "VAL007"}},
}

// genericPatterns apply to errors that are not ingestion errors.
var genericPatterns = []errorPattern{
	{"file too large", UserMessage{"File exceeds the maximum size", "Split the file into smaller chunks", "FILE001"}},
	{"no file provided", UserMessage{"No file was uploaded", "Attach a CSV or Excel file in the 'file' field", "FILE004"}},
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

var unknownError = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err into a support message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	switch {
	case errors.Is(err, ErrTooManyUploads):
		return UserMessage{"Too many uploads in progress", "Please wait a moment and try again", "UPL002"}
	case errors.Is(err, context.DeadlineExceeded):
		return UserMessage{"Request timed out", "Try uploading a smaller file", "UPL005"}
	case errors.Is(err, context.Canceled):
		return UserMessage{"Request was cancelled", "Please try again", "UPL004"}
	}

	var ie *IngestError
	if errors.As(err, &ie) {
		switch ie.Kind {
		case KindUnsupportedMediaType:
			return UserMessage{ie.Message, "Upload an .xlsx or .csv file", "MED001"}
		case KindSchemaViolation:
			return UserMessage{ie.Message, "Add the missing columns to the header row", "VAL004"}
		case KindMalformedInput:
			if m, ok := matchPattern(err, parsePatterns); ok {
				return m
			}
			return UserMessage{ie.Message, "Check the file opens correctly and re-export it", "FILE002"}
		case KindStoreWrite:
			if m, ok := matchPattern(err, storePatterns); ok {
				return m
			}
			return UserMessage{ie.Message, "Please try again or contact support", "DB000"}
		}
	}

	if m, ok := matchPattern(err, genericPatterns); ok {
		return m
	}
	return unknownError
}

func matchPattern(err error, patterns []errorPattern) (UserMessage, bool) {
	lower := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(lower, p.pattern) {
			return p.msg, true
		}
	}
	return UserMessage{}, false
}
