// Package placement contains the placement rank estimator: the domain logic that,
// given a student's academic standing and a snapshot of competing applicants for
// one exchange agreement, computes the student's likely ordinal position and
// admission outcome.
//
// The package is pure. It performs no I/O, holds no state and never mutates its
// inputs, so every function here is safe to call concurrently and always returns
// the same output for the same input.
//
// # Estimation methods
//
// Three independent methods are reconciled into one Estimate per agreement:
//
//   - Alpha: the authoritative rank computed by the external allocation round.
//     It is only read, never recomputed, and is unavailable for spare choices.
//   - Bravo: a rank derived from the grade-sorted competitor list. Students
//     carrying a failure flag are never placed ahead of the clean segment.
//   - Charlie: an informational rank derived from the raw candidate list.
//
// # Typical usage
//
//	snap := &placement.Snapshot{Profile: profile, Standings: standings}
//	estimates, err := placement.EstimateAll(snap)
//	for _, e := range estimates {
//	    verdict, source := e.Primary()
//	    ...
//	}
//
// Presentation (wording, highlighting) is deliberately absent here and lives in
// the interface layer.
package placement
