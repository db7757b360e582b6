// Package agreement содержит доменную модель соглашений об обмене:
// университет-партнёр, число мест и секции, которым соглашение открыто.
package agreement

import (
	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
	"github.com/exchange-insight/exchange-insight/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// RegionCode - код региона университета, например "EUR" или "NAM".
type RegionCode string

// University - университет-партнёр.
type University struct {
	ID         string
	Name       string
	Country    string
	RegionCode RegionCode
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: AGREEMENT
// ══════════════════════════════════════════════════════════════════════════════

// Agreement - соглашение об обмене с ограниченным числом мест.
type Agreement struct {
	// ID - идентификатор соглашения.
	ID string

	// University - университет-партнёр.
	University University

	// Places - число мест (вместимость), не меньше 1.
	Places int

	// Sections - секции, студенты которых могут выбрать соглашение.
	Sections []student.Section
}

// IsOpenTo проверяет, доступно ли соглашение студентам секции.
func (a *Agreement) IsOpenTo(section student.Section) bool {
	for _, s := range a.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// InRegion проверяет регион университета.
func (a *Agreement) InRegion(region RegionCode) bool {
	return a.University.RegionCode == region
}

// ══════════════════════════════════════════════════════════════════════════════
// ELIGIBILITY POLICY
// ══════════════════════════════════════════════════════════════════════════════

// Policy задаёт правила выбора соглашений.
type Policy struct {
	// HomeRegion - регион, доступный всем студентам.
	HomeRegion RegionCode

	// WorldMinGPA - минимальный GPA для соглашений вне HomeRegion.
	WorldMinGPA float64
}

// DefaultPolicy возвращает правила по умолчанию: вне Европы только с GPA >= 5.
func DefaultPolicy() Policy {
	return Policy{HomeRegion: "EUR", WorldMinGPA: 5.0}
}

// CheckSelection проверяет, что студент может выбрать все соглашения.
// Каждое соглашение должно существовать (nil = не найдено) и быть открыто
// секции студента; соглашения вне домашнего региона требуют WorldMinGPA.
func (p Policy) CheckSelection(s *student.Student, selected []*Agreement) error {
	for _, a := range selected {
		if a == nil || !a.IsOpenTo(s.Section) {
			return shared.ErrInvalidAgreements
		}
	}

	if s.GPA < p.WorldMinGPA {
		for _, a := range selected {
			if !a.InRegion(p.HomeRegion) {
				return shared.ErrAgreementsOutOfReach
			}
		}
	}
	return nil
}
