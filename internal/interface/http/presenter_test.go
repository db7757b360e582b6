package http

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/exchange-insight/exchange-insight/internal/domain/placement"
)

func TestPresentEstimate(t *testing.T) {
	alpha := func(rank int, admitted bool) *placement.Verdict {
		return &placement.Verdict{Rank: rank, Admitted: admitted}
	}

	tests := []struct {
		name     string
		estimate placement.Estimate
		headline string
		muted    bool
	}{
		{
			"authoritative admission",
			placement.Estimate{Capacity: 5, Alpha: alpha(3, true), Bravo: placement.Verdict{Rank: 9}},
			"getting in as #3 out of 5!", false,
		},
		{
			"authoritative rejection",
			placement.Estimate{Capacity: 6, Alpha: alpha(7, false), Bravo: placement.Verdict{Rank: 1, Admitted: true}},
			"rejected as #7 out of 6", true,
		},
		{
			"spare admission",
			placement.Estimate{Capacity: 5, IsSpareChoice: true, Bravo: placement.Verdict{Rank: 3, Admitted: true}},
			"you'd get in as #3 out of 5", true,
		},
		{
			"spare rejection",
			placement.Estimate{Capacity: 6, IsSpareChoice: true, Bravo: placement.Verdict{Rank: 7}},
			"you'd be rejected as #7 out of 6", true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.estimate.Charlie = placement.CharlieRank{Rank: 2}
			view := PresentEstimate(tt.estimate)
			assert.Equal(t, tt.headline, view.Headline)
			assert.Equal(t, tt.muted, view.Muted)
			assert.Equal(t, "originally #2", view.Original)
		})
	}
}
