package hit

import (
	"github.com/kailas-cloud/phyrestorm/internal/db"
	domhit "github.com/kailas-cloud/phyrestorm/internal/domain/hit"
)

func rowToHit(r db.HitRow) domhit.Hit {
	return domhit.New(
		r.JobID, r.StructureID, r.Name,
		r.PrimaryScore, r.SecondaryScore,
		r.AuxPath, r.ClusterIndex, r.ChildIndex,
	)
}

func rowsToHits(rows []db.HitRow) []domhit.Hit {
	hits := make([]domhit.Hit, len(rows))
	for i, r := range rows {
		hits[i] = rowToHit(r)
	}
	return hits
}
