package placement

import (
	"context"
	"math"
)

// ══════════════════════════════════════════════════════════════════════════════
// STANDING SNAPSHOT
// ══════════════════════════════════════════════════════════════════════════════

// GPA bounds accepted for a student.
const (
	MinGPA = 1.0
	MaxGPA = 6.0
)

// AgreementID identifies an exchange agreement.
type AgreementID string

// StudentProfile is the student's own academic standing and preferences.
type StudentProfile struct {
	// GPA in [MinGPA, MaxGPA].
	GPA float64

	// HasFailure marks a student carrying an academic penalty.
	HasFailure bool

	// PreferenceOrder lists agreements, most preferred first. Ids are unique.
	PreferenceOrder []AgreementID

	// AuthoritativeRanks are the ranks assigned by the external allocation
	// round, index-aligned with a prefix of PreferenceOrder.
	AuthoritativeRanks []int
}

// Validate checks the profile preconditions.
func (p StudentProfile) Validate() error {
	if math.IsNaN(p.GPA) || p.GPA < MinGPA || p.GPA > MaxGPA {
		return violation("ValidateProfile", ErrGPAOutOfRange, "gpa %.2f outside [%.1f, %.1f]", p.GPA, MinGPA, MaxGPA)
	}

	seen := make(map[AgreementID]struct{}, len(p.PreferenceOrder))
	for _, id := range p.PreferenceOrder {
		if _, dup := seen[id]; dup {
			return violation("ValidateProfile", ErrDuplicatePreference, "agreement %q listed twice", id)
		}
		seen[id] = struct{}{}
	}

	if len(p.AuthoritativeRanks) > len(p.PreferenceOrder) {
		return violation("ValidateProfile", ErrTooManyRanks, "%d ranks for %d preferences",
			len(p.AuthoritativeRanks), len(p.PreferenceOrder))
	}
	for i, r := range p.AuthoritativeRanks {
		if r < 1 {
			return violation("ValidateProfile", ErrInvalidRank, "rank %d at position %d", r, i)
		}
	}
	return nil
}

// Candidate is one competing applicant as seen in the raw candidate list.
type Candidate struct {
	GPA        float64 `json:"gpa"`
	HasFailure bool    `json:"has_failure"`
}

// AgreementStanding is the competitive situation of one agreement.
type AgreementStanding struct {
	AgreementID AgreementID

	// Capacity is the number of admissible seats (>= 1).
	Capacity int

	// Grades are competing GPAs ordered by admission priority.
	Grades GradeList

	// Candidates are the same competitors in an independent raw order.
	Candidates []Candidate
}

// Validate checks the standing preconditions.
func (s AgreementStanding) Validate() error {
	if s.Capacity < 1 {
		return violation("ValidateStanding", ErrInvalidCapacity, "agreement %q has capacity %d", s.AgreementID, s.Capacity)
	}
	return nil
}

// Snapshot bundles a student profile with one standing per preferred agreement,
// aligned by position with the preference order.
type Snapshot struct {
	Profile   StudentProfile
	Standings []AgreementStanding
}

// Validate checks the profile, every standing and their alignment.
func (s *Snapshot) Validate() error {
	if err := s.Profile.Validate(); err != nil {
		return err
	}
	if len(s.Standings) != len(s.Profile.PreferenceOrder) {
		return violation("ValidateSnapshot", ErrStandingMismatch, "%d standings for %d preferences",
			len(s.Standings), len(s.Profile.PreferenceOrder))
	}
	for i, st := range s.Standings {
		if st.AgreementID != s.Profile.PreferenceOrder[i] {
			return violation("ValidateSnapshot", ErrStandingMismatch, "position %d holds %q, expected %q",
				i, st.AgreementID, s.Profile.PreferenceOrder[i])
		}
		if err := st.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SnapshotProvider loads the current snapshot for a student.
// Implementations live in the infrastructure layer.
type SnapshotProvider interface {
	LoadSnapshot(ctx context.Context, studentID string) (*Snapshot, error)
}
