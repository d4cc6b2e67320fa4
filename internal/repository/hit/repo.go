package hit

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/kailas-cloud/phyrestorm/internal/db"
	"github.com/kailas-cloud/phyrestorm/internal/domain"
	domhit "github.com/kailas-cloud/phyrestorm/internal/domain/hit"
)

// store is the consumer interface for hits (ISP).
type store interface {
	Acquire(ctx context.Context) (db.Session, error)
}

// Repo implements usecase/results.Repository.
type Repo struct {
	store store
}

// New creates a hit repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Begin opens a read session. The returned reader must be closed.
func (r *Repo) Begin(ctx context.Context) (domhit.Reader, error) {
	sess, err := r.store.Acquire(ctx)
	if err != nil {
		return nil, classify(ctx, "acquire session", err)
	}
	return &reader{sess: sess}, nil
}

type reader struct {
	sess db.Session
}

func (r *reader) Lookup(ctx context.Context, jobID string, structureID int64) (domhit.Key, bool, error) {
	score, err := r.sess.Score(ctx, jobID, structureID)
	if errors.Is(err, db.ErrNoRows) {
		return domhit.Key{}, false, nil
	}
	if err != nil {
		return domhit.Key{}, false, classify(ctx, "lookup cursor", err)
	}
	return domhit.Key{Score: score, StructureID: structureID}, true, nil
}

func (r *reader) FirstPage(ctx context.Context, jobID string, limit int) ([]domhit.Hit, error) {
	rows, err := r.sess.FirstPage(ctx, jobID, limit)
	if err != nil {
		return nil, classify(ctx, "first page", err)
	}
	return rowsToHits(rows), nil
}

func (r *reader) PageAfter(ctx context.Context, jobID string, cursor domhit.Key, limit int) ([]domhit.Hit, error) {
	rows, err := r.sess.PageAfter(ctx, jobID, cursor.Score, cursor.StructureID, limit)
	if err != nil {
		return nil, classify(ctx, "page after", err)
	}
	return rowsToHits(rows), nil
}

func (r *reader) Count(ctx context.Context, jobID string) (int, error) {
	n, err := r.sess.Count(ctx, jobID)
	if err != nil {
		return 0, classify(ctx, "count", err)
	}
	return n, nil
}

func (r *reader) Close() {
	r.sess.Release()
}

// classify maps a store failure onto the domain taxonomy.
// The driver error is kept as a secondary error for logs.
func classify(ctx context.Context, op string, err error) error {
	cause := err
	if ctxErr := ctx.Err(); ctxErr != nil {
		// Drivers report interrupted statements in their own words.
		cause = ctxErr
	}

	var sentinel error
	switch {
	case errors.Is(cause, context.DeadlineExceeded):
		sentinel = domain.ErrTimeout
	case errors.Is(cause, context.Canceled):
		sentinel = domain.ErrCanceled
	default:
		sentinel = domain.ErrStorageUnavailable
	}
	return errors.WithSecondaryError(errors.Wrap(sentinel, op), err)
}
