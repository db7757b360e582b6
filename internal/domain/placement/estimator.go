package placement

// ══════════════════════════════════════════════════════════════════════════════
// CHOICE CLASSIFIER
// ══════════════════════════════════════════════════════════════════════════════

// ChoiceSlot locates one agreement within the preference order.
type ChoiceSlot struct {
	// Index is the 0-based position in the preference order.
	Index int

	// RankPosition is the 1-based display ordinal.
	RankPosition int

	// IsSpareChoice is true when no authoritative rank covers this position.
	IsSpareChoice bool
}

// Classify returns the slot of the index-th preference.
func Classify(preferenceOrder []AgreementID, authoritativeRanks []int, index int) (ChoiceSlot, error) {
	if index < 0 || index >= len(preferenceOrder) {
		return ChoiceSlot{}, violation("Classify", ErrIndexOutOfRange, "index %d with %d preferences", index, len(preferenceOrder))
	}
	return ChoiceSlot{
		Index:         index,
		RankPosition:  index + 1,
		IsSpareChoice: len(authoritativeRanks) <= index,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ESTIMATION METHODS
// ══════════════════════════════════════════════════════════════════════════════

// Verdict is a rank together with its admission outcome.
type Verdict struct {
	Rank     int  `json:"rank"`
	Admitted bool `json:"admitted"`
}

func verdict(rank, capacity int) Verdict {
	return Verdict{Rank: rank, Admitted: rank <= capacity}
}

// CharlieRank is the informational rank from the raw candidate list.
type CharlieRank struct {
	Rank int `json:"rank"`
}

// ReadAlpha surfaces the authoritative rank for a non-spare slot.
// The second result is false for spare choices.
func ReadAlpha(authoritativeRanks []int, slot ChoiceSlot, capacity int) (Verdict, bool) {
	// The index check covers slots built by hand without IsSpareChoice.
	if slot.IsSpareChoice || slot.Index >= len(authoritativeRanks) {
		return Verdict{}, false
	}
	return verdict(authoritativeRanks[slot.Index], capacity), true
}

// EstimateBravo places the student in the grade list. The scan starts at the
// failure boundary for penalized students and at the top otherwise; the
// student lands before the first strictly lower grade, so ties favor the
// competitors already in the list.
func EstimateBravo(gpa float64, hasFailure bool, grades GradeList, capacity int) Verdict {
	insertion := grades.Len()
	for i := grades.startFor(hasFailure); i < grades.Len(); i++ {
		if grades.At(i) < gpa {
			insertion = i
			break
		}
	}
	return verdict(insertion+1, capacity)
}

// EstimateCharlie walks the raw candidate list and stops at the first
// candidate the student would outrank: any penalized candidate when the
// student is clean, or any candidate with a GPA not above the student's.
func EstimateCharlie(gpa float64, hasFailure bool, candidates []Candidate) CharlieRank {
	for i, c := range candidates {
		if (!hasFailure && c.HasFailure) || c.GPA <= gpa {
			return CharlieRank{Rank: i + 1}
		}
	}
	return CharlieRank{Rank: len(candidates) + 1}
}

// ══════════════════════════════════════════════════════════════════════════════
// ESTIMATE COMPOSER
// ══════════════════════════════════════════════════════════════════════════════

// Source names the method behind a displayed verdict.
type Source string

const (
	SourceAlpha Source = "alpha"
	SourceBravo Source = "bravo"
)

// Estimate is the composed result for one agreement.
type Estimate struct {
	AgreementID   AgreementID `json:"agreement_id"`
	RankPosition  int         `json:"rank_position"`
	IsSpareChoice bool        `json:"is_spare_choice"`
	Capacity      int         `json:"capacity"`

	// Alpha is nil when the choice is spare.
	Alpha   *Verdict    `json:"alpha"`
	Bravo   Verdict     `json:"bravo"`
	Charlie CharlieRank `json:"charlie"`
}

// Primary returns the verdict to display for admission: Alpha when
// available, Bravo otherwise.
func (e Estimate) Primary() (Verdict, Source) {
	if e.Alpha != nil {
		return *e.Alpha, SourceAlpha
	}
	return e.Bravo, SourceBravo
}

// Compose validates its inputs and estimates the index-th preference.
func Compose(profile StudentProfile, standing AgreementStanding, index int) (Estimate, error) {
	if err := profile.Validate(); err != nil {
		return Estimate{}, err
	}
	if err := standing.Validate(); err != nil {
		return Estimate{}, err
	}
	slot, err := Classify(profile.PreferenceOrder, profile.AuthoritativeRanks, index)
	if err != nil {
		return Estimate{}, err
	}
	if profile.PreferenceOrder[index] != standing.AgreementID {
		return Estimate{}, violation("Compose", ErrStandingMismatch, "position %d holds %q, got standing for %q",
			index, profile.PreferenceOrder[index], standing.AgreementID)
	}
	return compose(profile, standing, slot), nil
}

// EstimateAt estimates the index-th preference of a snapshot that has
// already passed Validate. Panics if index is out of range.
func (s *Snapshot) EstimateAt(index int) Estimate {
	slot := ChoiceSlot{
		Index:         index,
		RankPosition:  index + 1,
		IsSpareChoice: len(s.Profile.AuthoritativeRanks) <= index,
	}
	return compose(s.Profile, s.Standings[index], slot)
}

// EstimateAll validates the snapshot and estimates every preference, in
// preference order.
func EstimateAll(s *Snapshot) ([]Estimate, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	out := make([]Estimate, len(s.Standings))
	for i := range s.Standings {
		out[i] = s.EstimateAt(i)
	}
	return out, nil
}

func compose(p StudentProfile, st AgreementStanding, slot ChoiceSlot) Estimate {
	e := Estimate{
		AgreementID:   st.AgreementID,
		RankPosition:  slot.RankPosition,
		IsSpareChoice: slot.IsSpareChoice,
		Capacity:      st.Capacity,
		Bravo:         EstimateBravo(p.GPA, p.HasFailure, st.Grades, st.Capacity),
		Charlie:       EstimateCharlie(p.GPA, p.HasFailure, st.Candidates),
	}
	if alpha, ok := ReadAlpha(p.AuthoritativeRanks, slot, st.Capacity); ok {
		e.Alpha = &alpha
	}
	return e
}
