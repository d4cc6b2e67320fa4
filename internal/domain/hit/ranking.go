package hit

import "slices"

// Order is the outcome of comparing two hits in ranking order.
type Order int

const (
	// Before means the left operand ranks ahead of the right one.
	Before Order = -1
	// Tie means both operands share the same ranking key.
	Tie Order = 0
	// After means the left operand ranks behind the right one.
	After Order = 1
)

// String implements fmt.Stringer.
func (o Order) String() string {
	switch o {
	case Before:
		return "before"
	case Tie:
		return "tie"
	case After:
		return "after"
	default:
		return "unknown"
	}
}

// Key is the ranking key: primary score descending, then structure ID ascending.
// Within a job structure IDs are unique, so the order over hits is total.
type Key struct {
	Score       float64
	StructureID int64
}

// CompareKeys orders two ranking keys.
func CompareKeys(a, b Key) Order {
	switch {
	case a.Score > b.Score:
		return Before
	case a.Score < b.Score:
		return After
	case a.StructureID < b.StructureID:
		return Before
	case a.StructureID > b.StructureID:
		return After
	default:
		return Tie
	}
}

// Compare orders two hits using only their ranking keys.
func Compare(a, b Hit) Order {
	return CompareKeys(a.Key(), b.Key())
}

// Follows reports whether k lies strictly after cursor in ranking order:
// a lower score, or the same score with a larger structure ID.
func (k Key) Follows(cursor Key) bool {
	return k.Score < cursor.Score ||
		(k.Score == cursor.Score && k.StructureID > cursor.StructureID)
}

// Sort orders hits in place by ranking order.
func Sort(hits []Hit) {
	slices.SortFunc(hits, func(a, b Hit) int { return int(Compare(a, b)) })
}
