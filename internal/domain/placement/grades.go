package placement

// ══════════════════════════════════════════════════════════════════════════════
// GRADE LIST
// ══════════════════════════════════════════════════════════════════════════════

// GradeList is the ordered list of competing GPAs for one agreement, highest
// admission priority first. It is split into two segments: a clean head of
// applicants without a failure flag and a penalized tail of applicants with one.
//
// A list built from a source that had no distinguished failure block is
// unsegmented: every grade sits in the head and FailureBoundary reports -1.
type GradeList struct {
	clean     []float64
	penalized []float64
	segmented bool
}

// NewGradeList splits a flat grade list at failureBoundaryIndex, the index of
// the first penalized grade. -1 means the list has no failure block.
func NewGradeList(grades []float64, failureBoundaryIndex int) (GradeList, error) {
	if failureBoundaryIndex < -1 || failureBoundaryIndex > len(grades) {
		return GradeList{}, violation("NewGradeList", ErrFailureBoundary,
			"failure boundary %d outside [-1, %d]", failureBoundaryIndex, len(grades))
	}
	if failureBoundaryIndex == -1 {
		return UnsegmentedGradeList(grades), nil
	}
	return SegmentedGradeList(grades[:failureBoundaryIndex], grades[failureBoundaryIndex:]), nil
}

// SegmentedGradeList builds a list from explicit clean and penalized segments.
func SegmentedGradeList(clean, penalized []float64) GradeList {
	return GradeList{
		clean:     clone(clean),
		penalized: clone(penalized),
		segmented: true,
	}
}

// UnsegmentedGradeList builds a list without a failure block.
func UnsegmentedGradeList(grades []float64) GradeList {
	return GradeList{clean: clone(grades)}
}

// Len returns the total number of competing grades.
func (g GradeList) Len() int {
	return len(g.clean) + len(g.penalized)
}

// At returns the i-th grade of the flattened list.
func (g GradeList) At(i int) float64 {
	if i < len(g.clean) {
		return g.clean[i]
	}
	return g.penalized[i-len(g.clean)]
}

// IsSegmented reports whether the list carries a failure block.
func (g GradeList) IsSegmented() bool {
	return g.segmented
}

// FailureBoundary returns the index of the first penalized grade, or -1 when
// the list is unsegmented.
func (g GradeList) FailureBoundary() int {
	if !g.segmented {
		return -1
	}
	return len(g.clean)
}

// Clean returns a copy of the clean segment.
func (g GradeList) Clean() []float64 {
	return clone(g.clean)
}

// Penalized returns a copy of the penalized segment.
func (g GradeList) Penalized() []float64 {
	return clone(g.penalized)
}

// Flat returns a copy of the whole list, clean segment first.
func (g GradeList) Flat() []float64 {
	out := make([]float64, 0, g.Len())
	out = append(out, g.clean...)
	return append(out, g.penalized...)
}

// startFor returns the first index a student may be inserted at.
// Penalized students start at the failure boundary, or after everyone when
// there is no boundary.
func (g GradeList) startFor(hasFailure bool) int {
	if !hasFailure {
		return 0
	}
	if !g.segmented {
		return g.Len()
	}
	return len(g.clean)
}

func clone(in []float64) []float64 {
	if len(in) == 0 {
		return nil
	}
	out := make([]float64, len(in))
	copy(out, in)
	return out
}
