package health

import "context"

// Pinger is anything that can answer a liveness probe: the results database or the page cache.
type Pinger interface {
	Ping(ctx context.Context) error
}
