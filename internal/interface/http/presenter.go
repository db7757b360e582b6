package http

import (
	"fmt"
	"time"

	"github.com/exchange-insight/exchange-insight/internal/application/query"
	"github.com/exchange-insight/exchange-insight/internal/domain/placement"
)

// ══════════════════════════════════════════════════════════════════════════════
// WALKTHROUGH PRESENTER
// Turns estimates into the sentences shown next to each agreement.
// The estimator itself never decides wording or emphasis.
// ══════════════════════════════════════════════════════════════════════════════

// WalkthroughView is the response body of the walkthrough endpoint.
type WalkthroughView struct {
	StudentID  string          `json:"student_id"`
	ComputedAt time.Time       `json:"computed_at"`
	FromCache  bool            `json:"from_cache"`
	Throttled  bool            `json:"throttled"`
	Agreements []AgreementView `json:"agreements"`
}

// AgreementView pairs the raw estimate with its display lines.
type AgreementView struct {
	placement.Estimate

	// Source is the method behind Headline: alpha or bravo.
	Source placement.Source `json:"source"`

	// GettingIn is the verdict used for emphasis.
	GettingIn bool `json:"getting_in"`

	// Headline, e.g. "getting in as #3 out of 5!".
	Headline string `json:"headline"`

	// Original, e.g. "originally #2".
	Original string `json:"original"`

	// Muted is set for spare choices and rejections.
	Muted bool `json:"muted"`
}

// PresentWalkthrough builds the view for a walkthrough result.
func PresentWalkthrough(r *query.WalkthroughResult) WalkthroughView {
	view := WalkthroughView{
		StudentID:  r.StudentID,
		ComputedAt: r.ComputedAt,
		FromCache:  r.FromCache,
		Throttled:  r.Throttled,
		Agreements: make([]AgreementView, 0, len(r.Estimates)),
	}
	for _, e := range r.Estimates {
		view.Agreements = append(view.Agreements, PresentEstimate(e))
	}
	return view
}

// PresentEstimate renders one estimate.
func PresentEstimate(e placement.Estimate) AgreementView {
	verdict, source := e.Primary()
	return AgreementView{
		Estimate:  e,
		Source:    source,
		GettingIn: verdict.Admitted,
		Headline:  headline(e, verdict),
		Original:  fmt.Sprintf("originally #%d", e.Charlie.Rank),
		Muted:     e.IsSpareChoice || !verdict.Admitted,
	}
}

// Spare choices are hypothetical, so they read in the conditional.
func headline(e placement.Estimate, v placement.Verdict) string {
	switch {
	case e.IsSpareChoice && v.Admitted:
		return fmt.Sprintf("you'd get in as #%d out of %d", v.Rank, e.Capacity)
	case e.IsSpareChoice:
		return fmt.Sprintf("you'd be rejected as #%d out of %d", v.Rank, e.Capacity)
	case v.Admitted:
		return fmt.Sprintf("getting in as #%d out of %d!", v.Rank, e.Capacity)
	default:
		return fmt.Sprintf("rejected as #%d out of %d", v.Rank, e.Capacity)
	}
}
