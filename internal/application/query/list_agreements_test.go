package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exchange-insight/exchange-insight/internal/domain/agreement"
	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
	"github.com/exchange-insight/exchange-insight/internal/domain/student"
)

type fakeAgreements struct {
	all []*agreement.Agreement
}

func (f *fakeAgreements) GetByID(_ context.Context, id string) (*agreement.Agreement, error) {
	for _, a := range f.all {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, shared.ErrAgreementNotFound
}

func (f *fakeAgreements) ListBySection(_ context.Context, section string) ([]*agreement.Agreement, error) {
	var out []*agreement.Agreement
	for _, a := range f.all {
		if a.IsOpenTo(student.Section(section)) {
			out = append(out, a)
		}
	}
	return out, nil
}

func TestListAgreements(t *testing.T) {
	repo := &fakeAgreements{all: []*agreement.Agreement{
		{ID: "eth", Places: 2, Sections: []student.Section{"IN", "SC"},
			University: agreement.University{Name: "ETH Zurich", Country: "Switzerland", RegionCode: "EUR"}},
		{ID: "mit", Places: 1, Sections: []student.Section{"MA"},
			University: agreement.University{Name: "MIT", Country: "USA", RegionCode: "NAM"}},
	}}
	h := NewListAgreementsHandler(repo)

	res, err := h.Handle(context.Background(), ListAgreementsQuery{Section: " in "})
	require.NoError(t, err)

	assert.Equal(t, "IN", res.Section)
	require.Len(t, res.Agreements, 1)
	assert.Equal(t, AgreementDTO{
		ID: "eth", University: "ETH Zurich", Country: "Switzerland", Region: "EUR",
		Places: 2, Sections: []string{"IN", "SC"},
	}, res.Agreements[0])
}

func TestListAgreements_EmptyIsNotNil(t *testing.T) {
	h := NewListAgreementsHandler(&fakeAgreements{})

	res, err := h.Handle(context.Background(), ListAgreementsQuery{Section: "PH"})
	require.NoError(t, err)
	assert.NotNil(t, res.Agreements)
	assert.Empty(t, res.Agreements)
}

func TestListAgreements_UnknownSection(t *testing.T) {
	h := NewListAgreementsHandler(&fakeAgreements{})

	_, err := h.Handle(context.Background(), ListAgreementsQuery{Section: "XX"})
	assert.ErrorIs(t, err, shared.ErrInvalidSection)
}
