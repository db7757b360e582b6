package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
	"github.com/exchange-insight/exchange-insight/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

// The preference order is folded into the row so a student loads in one round trip.
const selectStudent = `
	SELECT s.id::text, s.name, s.email, s.image, s.section, s.year, s.gpa, s.fail,
		   s.alpha_ranks,
		   COALESCE(ARRAY(
			   SELECT sa.agreement_id FROM student_agreements sa
			   WHERE sa.student_id = s.id ORDER BY sa.position
		   ), '{}') AS agreement_order,
		   s.created_at, s.updated_at
	FROM students s
`

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new student.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	query := `
		INSERT INTO students (id, name, email, image, section, year, gpa, fail, created_at, updated_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		s.Name,
		s.Email,
		s.Image,
		s.Section.String(),
		int(s.Year),
		s.GPA,
		s.Fail,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrStudentAlreadyExists
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// GetByID returns a student by internal ID.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*student.Student, error) {
	return scanStudent(r.conn.QueryRow(ctx, selectStudent+` WHERE s.id = $1::uuid`, id))
}

// GetByEmail returns a student by email.
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*student.Student, error) {
	return scanStudent(r.conn.QueryRow(ctx, selectStudent+` WHERE s.email = $1`, email))
}

// UpdateAgreementOrder replaces the student's preference order in one transaction.
func (r *StudentRepository) UpdateAgreementOrder(ctx context.Context, id string, agreementIDs []string) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		// Touching the row locks it, so concurrent reorders serialize.
		tag, err := tx.Exec(ctx, `UPDATE students SET updated_at = NOW() WHERE id = $1::uuid`, id)
		if err != nil {
			return fmt.Errorf("failed to lock student: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrStudentNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM student_agreements WHERE student_id = $1::uuid`, id); err != nil {
			return fmt.Errorf("failed to clear preferences: %w", err)
		}

		if len(agreementIDs) == 0 {
			return nil
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO student_agreements (student_id, agreement_id, position)
			SELECT $1::uuid, t.agreement_id, t.ord - 1
			FROM unnest($2::text[]) WITH ORDINALITY AS t(agreement_id, ord)
		`, id, agreementIDs)
		if err != nil {
			if IsForeignKeyViolation(err) {
				return shared.ErrAgreementNotFound
			}
			if IsUniqueViolation(err) {
				return shared.ErrInvalidAgreements
			}
			return fmt.Errorf("failed to insert preferences: %w", err)
		}

		return nil
	})
}

// Delete removes a student; preferences go with it (ON DELETE CASCADE).
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM students WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func scanStudent(row pgx.Row) (*student.Student, error) {
	var s student.Student
	var section string
	var year int16
	var alphaRanks []int32

	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Email,
		&s.Image,
		&section,
		&year,
		&s.GPA,
		&s.Fail,
		&alphaRanks,
		&s.AgreementOrder,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}

	s.Section = student.Section(section)
	s.Year = student.Year(year)
	s.AlphaRanks = int32sToInts(alphaRanks)

	return &s, nil
}

func int32sToInts(in []int32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
