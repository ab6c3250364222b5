package async

import (
	"context"
	"time"
)

// Service is a background worker. Start blocks, running the worker every
// interval until ctx is cancelled.
type Service interface {
	Start(ctx context.Context, interval time.Duration) error
}
