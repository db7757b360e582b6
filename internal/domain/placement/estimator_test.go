package placement

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
)

var scenarioGrades = []float64{5.8, 5.5, 5.2, 5.0, 4.8, 4.5}

func mustGrades(t *testing.T, grades []float64, boundary int) GradeList {
	t.Helper()
	g, err := NewGradeList(grades, boundary)
	require.NoError(t, err)
	return g
}

func TestEstimateBravo_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		gpa        float64
		hasFailure bool
		boundary   int
		capacity   int
		want       Verdict
	}{
		{"clean student competes from the top", 5.3, false, -1, 5, Verdict{Rank: 3, Admitted: true}},
		{"penalized student starts at the boundary", 6.0, true, 4, 5, Verdict{Rank: 5, Admitted: true}},
		{"penalized student without boundary is ranked last", 6.0, true, -1, 6, Verdict{Rank: 7, Admitted: false}},
		{"clean student below everyone", 4.0, false, 4, 6, Verdict{Rank: 7, Admitted: false}},
		{"clean student above everyone", 6.0, false, 4, 1, Verdict{Rank: 1, Admitted: true}},
		{"penalized student below the penalized block", 4.0, true, 4, 6, Verdict{Rank: 7, Admitted: false}},
		{"boundary at list end", 6.0, true, 6, 10, Verdict{Rank: 7, Admitted: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateBravo(tt.gpa, tt.hasFailure, mustGrades(t, scenarioGrades, tt.boundary), tt.capacity)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEstimateBravo_TiesFavorIncumbents(t *testing.T) {
	grades := mustGrades(t, []float64{5.0, 5.0, 4.0}, -1)

	got := EstimateBravo(5.0, false, grades, 2)

	assert.Equal(t, 3, got.Rank)
	assert.False(t, got.Admitted)
}

func TestEstimateBravo_EmptyList(t *testing.T) {
	for _, hasFailure := range []bool{false, true} {
		got := EstimateBravo(3.5, hasFailure, mustGrades(t, nil, -1), 1)
		assert.Equal(t, Verdict{Rank: 1, Admitted: true}, got)
	}
}

func TestEstimateBravo_Monotonic(t *testing.T) {
	gpas := []float64{1.0, 3.0, 4.5, 4.8, 4.9, 5.0, 5.2, 5.5, 5.8, 6.0}

	for _, boundary := range []int{-1, 0, 2, 4, 6} {
		grades := mustGrades(t, scenarioGrades, boundary)
		for _, hasFailure := range []bool{false, true} {
			for i := 1; i < len(gpas); i++ {
				lower := EstimateBravo(gpas[i-1], hasFailure, grades, 3)
				higher := EstimateBravo(gpas[i], hasFailure, grades, 3)
				assert.LessOrEqual(t, higher.Rank, lower.Rank,
					"boundary=%d failure=%v gpa %.1f vs %.1f", boundary, hasFailure, gpas[i], gpas[i-1])
			}
		}
	}
}

func TestEstimateBravo_FailurePriority(t *testing.T) {
	for boundary := 0; boundary <= len(scenarioGrades); boundary++ {
		grades := mustGrades(t, scenarioGrades, boundary)
		for _, gpa := range []float64{1.0, 4.7, 5.1, 6.0} {
			got := EstimateBravo(gpa, true, grades, 10)
			assert.Greater(t, got.Rank, boundary, "boundary=%d gpa=%.1f", boundary, gpa)
		}
	}
}

func TestEstimateCharlie(t *testing.T) {
	candidates := []Candidate{{GPA: 5.9}, {GPA: 5.0, HasFailure: true}, {GPA: 4.0}}

	t.Run("clean student outranks penalized candidate", func(t *testing.T) {
		assert.Equal(t, CharlieRank{Rank: 2}, EstimateCharlie(4.5, false, candidates))
	})

	t.Run("penalized student compares on gpa only", func(t *testing.T) {
		assert.Equal(t, CharlieRank{Rank: 3}, EstimateCharlie(4.5, true, candidates))
	})

	t.Run("ties favor the student", func(t *testing.T) {
		assert.Equal(t, CharlieRank{Rank: 1}, EstimateCharlie(5.9, true, candidates))
	})

	t.Run("no match ranks after everyone", func(t *testing.T) {
		assert.Equal(t, CharlieRank{Rank: 4}, EstimateCharlie(3.0, true, candidates))
	})

	t.Run("empty list", func(t *testing.T) {
		assert.Equal(t, CharlieRank{Rank: 1}, EstimateCharlie(3.0, false, nil))
	})
}

func TestClassify(t *testing.T) {
	order := []AgreementID{"a", "b", "c", "d", "e"}
	ranks := []int{4, 1, 9}

	for i := range order {
		slot, err := Classify(order, ranks, i)
		require.NoError(t, err)
		assert.Equal(t, i+1, slot.RankPosition)
		assert.Equal(t, i >= len(ranks), slot.IsSpareChoice)
	}

	_, err := Classify(order, ranks, 5)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = Classify(order, ranks, -1)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func spareSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	order := []AgreementID{"epfl-eth", "epfl-kth", "epfl-tum", "epfl-polimi", "epfl-ucl"}
	standings := make([]AgreementStanding, len(order))
	for i, id := range order {
		standings[i] = AgreementStanding{
			AgreementID: id,
			Capacity:    5,
			Grades:      mustGrades(t, scenarioGrades, 4),
			Candidates:  []Candidate{{GPA: 5.9}, {GPA: 5.0, HasFailure: true}, {GPA: 4.0}},
		}
	}
	return &Snapshot{
		Profile: StudentProfile{
			GPA:                5.3,
			PreferenceOrder:    order,
			AuthoritativeRanks: []int{2, 6, 1},
		},
		Standings: standings,
	}
}

func TestEstimateAll_SpareChoices(t *testing.T) {
	snap := spareSnapshot(t)

	estimates, err := EstimateAll(snap)
	require.NoError(t, err)
	require.Len(t, estimates, 5)

	for i, e := range estimates {
		assert.Equal(t, snap.Profile.PreferenceOrder[i], e.AgreementID)
		assert.Equal(t, i+1, e.RankPosition)
		assert.Equal(t, Verdict{Rank: 3, Admitted: true}, e.Bravo)
		assert.Equal(t, CharlieRank{Rank: 2}, e.Charlie)
	}

	require.NotNil(t, estimates[0].Alpha)
	assert.Equal(t, Verdict{Rank: 2, Admitted: true}, *estimates[0].Alpha)
	require.NotNil(t, estimates[1].Alpha)
	assert.Equal(t, Verdict{Rank: 6, Admitted: false}, *estimates[1].Alpha)

	primary, source := estimates[1].Primary()
	assert.Equal(t, SourceAlpha, source)
	assert.False(t, primary.Admitted)

	for _, e := range estimates[3:] {
		assert.True(t, e.IsSpareChoice)
		assert.Nil(t, e.Alpha)
		primary, source := e.Primary()
		assert.Equal(t, SourceBravo, source)
		assert.Equal(t, e.Bravo, primary)
	}
}

func TestReadAlpha_Slots(t *testing.T) {
	ranks := []int{2, 6}

	v, ok := ReadAlpha(ranks, ChoiceSlot{Index: 1, RankPosition: 2}, 4)
	require.True(t, ok)
	assert.Equal(t, Verdict{Rank: 6, Admitted: false}, v)

	_, ok = ReadAlpha(ranks, ChoiceSlot{Index: 0, IsSpareChoice: true}, 4)
	assert.False(t, ok)

	// Hand-built slot past the ranks without IsSpareChoice.
	_, ok = ReadAlpha(ranks, ChoiceSlot{Index: 2, RankPosition: 3}, 4)
	assert.False(t, ok)
}

func TestEstimateAt_OutOfRangePanics(t *testing.T) {
	snap := spareSnapshot(t)
	assert.NotPanics(t, func() { snap.EstimateAt(len(snap.Standings) - 1) })
	assert.Panics(t, func() { snap.EstimateAt(len(snap.Standings)) })
}

func TestCompose_MatchesEstimateAll(t *testing.T) {
	snap := spareSnapshot(t)
	all, err := EstimateAll(snap)
	require.NoError(t, err)

	for i, st := range snap.Standings {
		e, err := Compose(snap.Profile, st, i)
		require.NoError(t, err)
		assert.Equal(t, all[i], e)
	}
}

func TestCompose_Pure(t *testing.T) {
	snap := spareSnapshot(t)
	want, err := Compose(snap.Profile, snap.Standings[4], 4)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Estimate, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Compose(snap.Profile, snap.Standings[4], 4)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
	assert.Equal(t, scenarioGrades, snap.Standings[4].Grades.Flat(), "inputs must not be mutated")
}

func TestPreconditions(t *testing.T) {
	valid := func() (StudentProfile, AgreementStanding) {
		return StudentProfile{
				GPA:                4.2,
				PreferenceOrder:    []AgreementID{"a", "b"},
				AuthoritativeRanks: []int{1},
			}, AgreementStanding{
				AgreementID: "a",
				Capacity:    2,
			}
	}

	tests := []struct {
		name   string
		mutate func(p *StudentProfile, s *AgreementStanding)
		index  int
		want   error
	}{
		{"gpa too low", func(p *StudentProfile, _ *AgreementStanding) { p.GPA = 0.9 }, 0, ErrGPAOutOfRange},
		{"gpa too high", func(p *StudentProfile, _ *AgreementStanding) { p.GPA = 6.01 }, 0, ErrGPAOutOfRange},
		{"gpa not a number", func(p *StudentProfile, _ *AgreementStanding) { p.GPA = math.NaN() }, 0, ErrGPAOutOfRange},
		{"zero capacity", func(_ *StudentProfile, s *AgreementStanding) { s.Capacity = 0 }, 0, ErrInvalidCapacity},
		{"duplicate preference", func(p *StudentProfile, _ *AgreementStanding) {
			p.PreferenceOrder = []AgreementID{"a", "a"}
		}, 0, ErrDuplicatePreference},
		{"too many ranks", func(p *StudentProfile, _ *AgreementStanding) { p.AuthoritativeRanks = []int{1, 2, 3} }, 0, ErrTooManyRanks},
		{"non-positive rank", func(p *StudentProfile, _ *AgreementStanding) { p.AuthoritativeRanks = []int{0} }, 0, ErrInvalidRank},
		{"standing for another agreement", func(_ *StudentProfile, _ *AgreementStanding) {}, 1, ErrStandingMismatch},
		{"index out of range", func(_ *StudentProfile, _ *AgreementStanding) {}, 2, ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, s := valid()
			tt.mutate(&p, &s)
			_, err := Compose(p, s, tt.index)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, shared.IsValidation(err))
		})
	}

	t.Run("boundary gpa values are accepted", func(t *testing.T) {
		p, s := valid()
		for _, gpa := range []float64{MinGPA, MaxGPA} {
			p.GPA = gpa
			_, err := Compose(p, s, 0)
			assert.NoError(t, err)
		}
	})
}

func TestSnapshotValidate_Alignment(t *testing.T) {
	snap := spareSnapshot(t)
	snap.Standings = snap.Standings[:4]
	assert.True(t, errors.Is(snap.Validate(), ErrStandingMismatch))

	snap = spareSnapshot(t)
	snap.Standings[0], snap.Standings[1] = snap.Standings[1], snap.Standings[0]
	assert.True(t, errors.Is(snap.Validate(), ErrStandingMismatch))
}
