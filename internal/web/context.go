package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/CustomerUpload/internal/core"
)

// WithRequestMetadata adds client IP and User-Agent to ctx for ingest logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, r.RemoteAddr) // already resolved by TrustedRealIP
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
