package hit

// Hit is a single ranked alignment result (immutable value object).
type Hit struct {
	jobID          string
	structureID    int64
	name           string
	primaryScore   float64
	secondaryScore float64
	auxPath        *string
	clusterIndex   int
	childIndex     int
}

// New hydrates a hit from one stored row. auxPath may be nil.
func New(
	jobID string, structureID int64, name string,
	primaryScore, secondaryScore float64,
	auxPath *string, clusterIndex, childIndex int,
) Hit {
	return Hit{
		jobID:          jobID,
		structureID:    structureID,
		name:           name,
		primaryScore:   primaryScore,
		secondaryScore: secondaryScore,
		auxPath:        cloneString(auxPath),
		clusterIndex:   clusterIndex,
		childIndex:     childIndex,
	}
}

// JobID returns the job the hit belongs to.
func (h Hit) JobID() string { return h.jobID }

// StructureID returns the structure identifier, unique within a job.
func (h Hit) StructureID() int64 { return h.structureID }

// Name returns the structure name.
func (h Hit) Name() string { return h.name }

// PrimaryScore returns tm1, the ranking score.
func (h Hit) PrimaryScore() float64 { return h.primaryScore }

// SecondaryScore returns tm2. It never takes part in ordering.
func (h Hit) SecondaryScore() float64 { return h.secondaryScore }

// AuxPath returns the alignment image path and whether it is set.
func (h Hit) AuxPath() (string, bool) {
	if h.auxPath == nil {
		return "", false
	}
	return *h.auxPath, true
}

// ClusterIndex returns the cluster the structure belongs to.
func (h Hit) ClusterIndex() int { return h.clusterIndex }

// ChildIndex returns the position of the structure inside its cluster.
func (h Hit) ChildIndex() int { return h.childIndex }

// Key returns the ranking key of the hit.
func (h Hit) Key() Key {
	return Key{Score: h.primaryScore, StructureID: h.structureID}
}

// WithAuxPath returns a copy of the hit with a replaced aux path.
func (h Hit) WithAuxPath(p string) Hit {
	h.auxPath = &p
	return h
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
