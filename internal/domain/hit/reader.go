package hit

import "context"

// Reader answers ranking queries within one read session.
// Every page it returns is ordered by the ranking model.
type Reader interface {
	// Lookup returns the ranking key of a hit. found is false when the job has no such hit.
	Lookup(ctx context.Context, jobID string, structureID int64) (key Key, found bool, err error)
	// FirstPage returns the top limit hits of a job.
	FirstPage(ctx context.Context, jobID string, limit int) ([]Hit, error)
	// PageAfter returns up to limit hits whose keys follow cursor.
	PageAfter(ctx context.Context, jobID string, cursor Key, limit int) ([]Hit, error)
	// Count returns the number of hits in a job.
	Count(ctx context.Context, jobID string) (int, error)
	// Close ends the session. Safe to call more than once.
	Close()
}
