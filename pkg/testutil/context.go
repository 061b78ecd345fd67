package testutil

import (
	"context"
	"time"

	"clinic/pkg/platform/middleware/metadata"
	"clinic/pkg/requestcontext"
)

// RequestContext returns ctx carrying the values the request middleware
// would set, for tests that call services directly.
func RequestContext(ctx context.Context, requestID string, now time.Time) context.Context {
	ctx = requestcontext.WithRequestID(ctx, requestID)
	ctx = requestcontext.WithTime(ctx, now)
	return metadata.WithClientMetadata(ctx, "192.0.2.10", "testutil")
}
