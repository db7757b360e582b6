package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/exchange-insight/exchange-insight/internal/domain/agreement"
	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
	"github.com/exchange-insight/exchange-insight/internal/domain/student"
)

// AgreementRepository implements agreement.Repository for PostgreSQL.
type AgreementRepository struct {
	conn *Connection
}

// NewAgreementRepository creates a new AgreementRepository.
func NewAgreementRepository(conn *Connection) *AgreementRepository {
	return &AgreementRepository{conn: conn}
}

const selectAgreement = `
	SELECT a.id, a.places, a.sections,
		   u.id, u.name, u.country, u.region_code
	FROM agreements a
	JOIN universities u ON u.id = a.university_id
`

// GetByID returns an agreement with its university.
func (r *AgreementRepository) GetByID(ctx context.Context, id string) (*agreement.Agreement, error) {
	a, err := scanAgreement(r.conn.QueryRow(ctx, selectAgreement+` WHERE a.id = $1`, id))
	if IsNoRows(err) {
		return nil, shared.ErrAgreementNotFound
	}
	return a, err
}

// ListBySection returns agreements open to the section, ordered by university name.
func (r *AgreementRepository) ListBySection(ctx context.Context, section string) ([]*agreement.Agreement, error) {
	rows, err := r.conn.Query(ctx,
		selectAgreement+` WHERE $1 = ANY(a.sections) ORDER BY u.name, a.id`, section)
	if err != nil {
		return nil, fmt.Errorf("failed to list agreements: %w", err)
	}
	defer rows.Close()

	var out []*agreement.Agreement
	for rows.Next() {
		a, err := scanAgreement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return out, nil
}

func scanAgreement(row pgx.Row) (*agreement.Agreement, error) {
	var a agreement.Agreement
	var sections []string
	var region string

	err := row.Scan(
		&a.ID,
		&a.Places,
		&sections,
		&a.University.ID,
		&a.University.Name,
		&a.University.Country,
		&region,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan agreement: %w", err)
	}

	a.University.RegionCode = agreement.RegionCode(region)
	a.Sections = make([]student.Section, len(sections))
	for i, s := range sections {
		a.Sections[i] = student.Section(s)
	}

	return &a, nil
}
