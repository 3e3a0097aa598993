package web

// errors.go turns handler errors into {"detail": ...} responses.
//
// Every failed request is logged once with its technical cause, the support
// code from core.MapError and the request ID. Ingestion errors are returned
// verbatim since their messages are written for the uploader; anything else
// is replaced by the mapped user message so internals never leak.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/CustomerUpload/internal/core"
)

// statusFor chooses the HTTP status for an ingestion failure.
func statusFor(err error) int {
	switch core.KindOf(err) {
	case core.KindUnsupportedMediaType, core.KindMalformedInput, core.KindSchemaViolation:
		return http.StatusBadRequest
	case core.KindStoreWrite:
		return http.StatusInternalServerError
	}

	switch {
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes it to the client with statusCode.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"action", userMsg.Action,
		"request_id", middleware.GetReqID(r.Context()),
		"upload_id", w.Header().Get(uploadIDHeader),
	)

	detail := userMsg.Message
	if core.KindOf(err) != 0 {
		detail = err.Error()
	}
	if statusCode == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	writeDetail(w, statusCode, detail)
}

// badRequest is a client error whose message is safe to return as is.
type badRequest struct {
	msg string
	err error
}

func (e *badRequest) Error() string { return e.msg }
func (e *badRequest) Unwrap() error { return e.err }

// respondBadRequest reports a malformed request that never reached ingestion.
func (s *Server) respondBadRequest(w http.ResponseWriter, r *http.Request, err *badRequest) {
	slog.Warn("bad request",
		"path", r.URL.Path,
		"method", r.Method,
		"error", err.Error(),
		"code", core.MapError(err).Code,
		"request_id", middleware.GetReqID(r.Context()),
	)
	writeDetail(w, http.StatusBadRequest, err.msg)
}
