package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/exchange-insight/exchange-insight/internal/domain/placement"
	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STANDING REPOSITORY
// Builds the read-only snapshot the estimators consume.
// ══════════════════════════════════════════════════════════════════════════════

// StandingRepository implements placement.SnapshotProvider for PostgreSQL.
type StandingRepository struct {
	conn *Connection
}

// NewStandingRepository creates a new StandingRepository.
func NewStandingRepository(conn *Connection) *StandingRepository {
	return &StandingRepository{conn: conn}
}

var _ placement.SnapshotProvider = (*StandingRepository)(nil)

// LoadSnapshot reads the student and every agreement they listed inside one
// repeatable-read transaction, so all standings describe the same moment.
func (r *StandingRepository) LoadSnapshot(ctx context.Context, studentID string) (*placement.Snapshot, error) {
	var snap *placement.Snapshot

	opts := ReadOnlyTxOptions()
	opts.IsoLevel = pgx.RepeatableRead

	err := r.conn.WithTx(ctx, opts, func(tx pgx.Tx) error {
		st, err := scanStudent(tx.QueryRow(ctx, selectStudent+` WHERE s.id = $1::uuid`, studentID))
		if err != nil {
			return err
		}

		places, err := loadPlaces(ctx, tx, st.AgreementOrder)
		if err != nil {
			return err
		}

		applicants, err := loadApplicants(ctx, tx, studentID, st.AgreementOrder)
		if err != nil {
			return err
		}

		snap = &placement.Snapshot{
			Profile:   st.Profile(),
			Standings: make([]placement.AgreementStanding, len(st.AgreementOrder)),
		}
		for i, id := range st.AgreementOrder {
			capacity, ok := places[id]
			if !ok {
				return shared.WrapError("postgres", "LoadSnapshot", shared.ErrAgreementNotFound,
					fmt.Sprintf("agreement %s vanished", id), nil)
			}
			snap.Standings[i] = BuildStanding(placement.AgreementID(id), capacity, applicants[id])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snap, nil
}

func loadPlaces(ctx context.Context, q Querier, ids []string) (map[string]int, error) {
	places := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return places, nil
	}

	rows, err := q.Query(ctx, `SELECT id, places FROM agreements WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load places: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan places: %w", err)
		}
		places[id] = n
	}
	return places, rows.Err()
}

// loadApplicants returns, per agreement, every other student who listed it,
// in registration order.
func loadApplicants(ctx context.Context, q Querier, studentID string, ids []string) (map[string][]placement.Candidate, error) {
	out := make(map[string][]placement.Candidate, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := q.Query(ctx, `
		SELECT sa.agreement_id, s.gpa, s.fail
		FROM student_agreements sa
		JOIN students s ON s.id = sa.student_id
		WHERE sa.agreement_id = ANY($1) AND sa.student_id <> $2::uuid
		ORDER BY s.created_at, s.id
	`, ids, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load applicants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var c placement.Candidate
		if err := rows.Scan(&id, &c.GPA, &c.HasFailure); err != nil {
			return nil, fmt.Errorf("failed to scan applicant: %w", err)
		}
		out[id] = append(out[id], c)
	}
	return out, rows.Err()
}

// BuildStanding derives both competitor views from the applicants of one
// agreement. Candidates keep the given order. Grades list clean applicants
// by descending GPA, then penalized ones by descending GPA; the boundary is
// only recorded when at least one penalized applicant exists.
func BuildStanding(id placement.AgreementID, capacity int, applicants []placement.Candidate) placement.AgreementStanding {
	var clean, penalized []float64
	for _, a := range applicants {
		if a.HasFailure {
			penalized = append(penalized, a.GPA)
		} else {
			clean = append(clean, a.GPA)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(clean)))
	sort.Sort(sort.Reverse(sort.Float64Slice(penalized)))

	grades := placement.UnsegmentedGradeList(clean)
	if len(penalized) > 0 {
		grades = placement.SegmentedGradeList(clean, penalized)
	}

	return placement.AgreementStanding{
		AgreementID: id,
		Capacity:    capacity,
		Grades:      grades,
		Candidates:  append([]placement.Candidate(nil), applicants...),
	}
}
