package student

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exchange-insight/exchange-insight/internal/domain/placement"
	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
)

func validParams() NewStudentParams {
	return NewStudentParams{
		ID:      "5f0c7a52-8f0f-4a59-a0a8-6f1fb3f8a001",
		Name:    " Ada Lovelace ",
		Email:   "ada@epfl.ch",
		Section: "in",
		GPA:     5.25,
	}
}

func TestNewStudent(t *testing.T) {
	s, err := NewStudent(validParams())
	require.NoError(t, err)

	assert.Equal(t, Section("IN"), s.Section)
	assert.Equal(t, YearSecond, s.Year, "year defaults to 2")
	assert.Equal(t, "Ada Lovelace", s.Name)
	assert.False(t, s.CreatedAt.IsZero())
}

func TestNewStudent_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *NewStudentParams)
		want   error
	}{
		{"unknown section", func(p *NewStudentParams) { p.Section = "XX" }, shared.ErrInvalidSection},
		{"year one", func(p *NewStudentParams) { p.Year = 1 }, shared.ErrInvalidYear},
		{"gpa below one", func(p *NewStudentParams) { p.GPA = 0.5 }, shared.ErrInvalidGPA},
		{"gpa above six", func(p *NewStudentParams) { p.GPA = 6.5 }, shared.ErrInvalidGPA},
		{"gpa not a number", func(p *NewStudentParams) { p.GPA = math.NaN() }, shared.ErrInvalidGPA},
		{"missing email", func(p *NewStudentParams) { p.Email = " " }, shared.ErrEmptyValue},
		{"missing id", func(p *NewStudentParams) { p.ID = "" }, shared.ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			_, err := NewStudent(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, shared.IsValidation(err))
		})
	}
}

func TestSetAgreementOrder(t *testing.T) {
	s, err := NewStudent(validParams())
	require.NoError(t, err)
	s.AlphaRanks = []int{3}

	require.NoError(t, s.SetAgreementOrder([]string{"eth", "kth"}))
	assert.Equal(t, []string{"eth", "kth"}, s.AgreementOrder)
	assert.Equal(t, []int{3}, s.AlphaRanks, "alpha ranks are owned by the allocation round")

	err = s.SetAgreementOrder([]string{"eth", "eth"})
	assert.True(t, errors.Is(err, shared.ErrInvalidAgreements))
	assert.Equal(t, []string{"eth", "kth"}, s.AgreementOrder)

	err = s.SetAgreementOrder(nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidAgreements), "cannot drop below the ranked prefix")
	assert.Equal(t, []string{"eth", "kth"}, s.AgreementOrder)
}

func TestProfile(t *testing.T) {
	s, err := NewStudent(validParams())
	require.NoError(t, err)
	s.Fail = true
	require.NoError(t, s.SetAgreementOrder([]string{"eth", "kth", "tum"}))
	s.AlphaRanks = []int{4}

	p := s.Profile()

	assert.Equal(t, 5.25, p.GPA)
	assert.True(t, p.HasFailure)
	assert.Equal(t, []placement.AgreementID{"eth", "kth", "tum"}, p.PreferenceOrder)
	assert.Equal(t, []int{4}, p.AuthoritativeRanks)
	assert.NoError(t, p.Validate())
	assert.False(t, s.IsSpareChoice(0))
	assert.True(t, s.IsSpareChoice(1))
}
