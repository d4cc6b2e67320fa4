package pagecache

import (
	"github.com/kailas-cloud/phyrestorm/internal/domain/hit"
	"github.com/kailas-cloud/phyrestorm/internal/domain/page"
)

type pageDTO struct {
	Hits       []hitDTO `json:"hits"`
	TotalCount int      `json:"total_count"`
}

type hitDTO struct {
	StructureID    int64   `json:"structure_id"`
	Name           string  `json:"name"`
	PrimaryScore   float64 `json:"tm1"`
	SecondaryScore float64 `json:"tm2"`
	AuxPath        *string `json:"aln_img,omitempty"`
	ClusterIndex   int     `json:"cluster_index"`
	ChildIndex     int     `json:"child_index"`
}

func toDTO(res page.Result) pageDTO {
	dto := pageDTO{Hits: make([]hitDTO, len(res.Hits)), TotalCount: res.TotalCount}
	for i, h := range res.Hits {
		d := hitDTO{
			StructureID:    h.StructureID(),
			Name:           h.Name(),
			PrimaryScore:   h.PrimaryScore(),
			SecondaryScore: h.SecondaryScore(),
			ClusterIndex:   h.ClusterIndex(),
			ChildIndex:     h.ChildIndex(),
		}
		if p, ok := h.AuxPath(); ok {
			d.AuxPath = &p
		}
		dto.Hits[i] = d
	}
	return dto
}

func fromDTO(jobID string, dto pageDTO) page.Result {
	hits := make([]hit.Hit, len(dto.Hits))
	for i, d := range dto.Hits {
		hits[i] = hit.New(
			jobID, d.StructureID, d.Name,
			d.PrimaryScore, d.SecondaryScore,
			d.AuxPath, d.ClusterIndex, d.ChildIndex,
		)
	}
	return page.Result{Hits: hits, TotalCount: dto.TotalCount}
}
