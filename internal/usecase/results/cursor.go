package results

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/phyrestorm/internal/domain"
	"github.com/kailas-cloud/phyrestorm/internal/domain/hit"
)

// resolveCursor turns a structure ID into the exclusive lower bound of the next page.
// A cursor that names no hit of the job is an error, never a restart from the top.
func resolveCursor(ctx context.Context, r hit.Reader, jobID string, structureID int64) (hit.Key, error) {
	key, found, err := r.Lookup(ctx, jobID, structureID)
	if err != nil {
		return hit.Key{}, fmt.Errorf("resolve cursor: %w", err)
	}
	if !found {
		return hit.Key{}, domain.NewCursorNotFound(jobID, structureID)
	}
	return key, nil
}
