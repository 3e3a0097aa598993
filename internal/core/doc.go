// Package core provides the business logic for customer file ingestion.
//
// The package is independent of any transport or storage layer. Web handlers
// and tests drive it through a [Service] backed by a [Store].
//
// # Pipeline
//
// Every upload flows through the same steps:
//
//  1. [SniffFormat] picks a parser from the declared content type. Unknown
//     types fail with UnsupportedMediaType before any byte is read.
//  2. [ParseTable] reads CSV text or the first worksheet of an xlsx workbook
//     into a [Table]. Unreadable payloads fail with MalformedInput.
//  3. [ValidateHeaders] checks every column in [RequiredFields] is present
//     and reports all missing ones at once as a SchemaViolation.
//  4. Rows are bound to [Customer] values by column name. Timestamp cells are
//     parsed leniently by [ToPgTimestamptz]; unparsable values fall back to
//     the database default.
//  5. The [Store] inserts all rows in one transaction. Failures surface as
//     StoreWriteError and nothing is persisted.
//
// # Errors
//
// Each failing step returns an [*IngestError] whose Kind identifies the step.
// Use [KindOf] or errors.Is with [ErrUnsupportedMediaType], [ErrMalformedInput],
// [ErrSchemaViolation] and [ErrStoreWrite] to classify them. [MapError] turns
// any error into a [UserMessage] with a support code for logs.
//
// # Concurrency
//
// [UploadLimiter] caps the number of uploads processed in parallel. A Service
// is safe for concurrent use.
package core
