// Package student содержит доменную модель студента, подающего заявку на обмен.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package student

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/exchange-insight/exchange-insight/internal/domain/placement"
	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Section представляет секцию (факультет) студента, например "IN" или "SC".
type Section string

// Sections - список секций, которые могут участвовать в обмене.
var Sections = []Section{
	"AR", "CGC", "EL", "GC", "GM", "IN", "MA",
	"MT", "MX", "PH", "SC", "SIE", "SV",
}

// ParseSection нормализует строку (верхний регистр) и проверяет её по списку.
func ParseSection(s string) (Section, error) {
	sec := Section(strings.ToUpper(strings.TrimSpace(s)))
	if !sec.IsValid() {
		return "", shared.ErrInvalidSection
	}
	return sec, nil
}

// IsValid проверяет, что секция известна.
func (s Section) IsValid() bool {
	for _, known := range Sections {
		if s == known {
			return true
		}
	}
	return false
}

// String возвращает строковое представление секции.
func (s Section) String() string {
	return string(s)
}

// Year - год бакалавриата, в котором студент подаёт заявку.
type Year int

const (
	// YearSecond - заявка на втором году (по умолчанию).
	YearSecond Year = 2
	// YearThird - заявка на третьем году.
	YearThird Year = 3
)

// IsValid проверяет, что год - 2 или 3.
func (y Year) IsValid() bool {
	return y == YearSecond || y == YearThird
}

// ValidateGPA проверяет, что GPA в допустимом диапазоне.
func ValidateGPA(gpa float64) error {
	if math.IsNaN(gpa) || gpa < placement.MinGPA || gpa > placement.MaxGPA {
		return shared.ErrInvalidGPA
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student - студент, ранжирующий соглашения об обмене.
type Student struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Name - отображаемое имя.
	Name string

	// Email - адрес из провайдера аутентификации, уникален.
	Email string

	// Image - аватар (опционально).
	Image string

	// Section - секция студента.
	Section Section

	// Year - год, на котором студент уезжает.
	Year Year

	// GPA - средний балл по шкале 1-6.
	GPA float64

	// Fail - флаг академического провала (понижает приоритет).
	Fail bool

	// AgreementOrder - соглашения в порядке предпочтения.
	AgreementOrder []string

	// AlphaRanks - ранги из внешнего распределения, выровнены по префиксу AgreementOrder.
	AlphaRanks []int

	// CreatedAt - время регистрации.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// NewStudentParams содержит параметры для регистрации студента.
type NewStudentParams struct {
	ID      string
	Name    string
	Email   string
	Image   string
	Section string
	Year    Year
	GPA     float64
	Fail    bool
}

// NewStudent создаёт нового студента с валидацией.
func NewStudent(p NewStudentParams) (*Student, error) {
	if p.ID == "" {
		return nil, shared.NewDomainError("student", "Register", shared.ErrInvalidID, "student id is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		return nil, shared.NewDomainError("student", "Register", shared.ErrEmptyValue, "email is required")
	}

	section, err := ParseSection(p.Section)
	if err != nil {
		return nil, err
	}

	year := p.Year
	if year == 0 {
		year = YearSecond
	}
	if !year.IsValid() {
		return nil, shared.ErrInvalidYear
	}

	if err := ValidateGPA(p.GPA); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Student{
		ID:        p.ID,
		Name:      strings.TrimSpace(p.Name),
		Email:     strings.TrimSpace(p.Email),
		Image:     p.Image,
		Section:   section,
		Year:      year,
		GPA:       p.GPA,
		Fail:      p.Fail,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// BUSINESS METHODS
// ══════════════════════════════════════════════════════════════════════════════

// SetAgreementOrder заменяет порядок предпочтений.
// Авторитетные ранги не трогаем: их выставляет внешний процесс. Поэтому
// список не может стать короче уже выставленных рангов.
func (s *Student) SetAgreementOrder(ids []string) error {
	if len(ids) < len(s.AlphaRanks) {
		return shared.WrapError("student", "SetAgreementOrder", shared.ErrInvalidAgreements,
			fmt.Sprintf("at least %d agreements required: ranks already assigned", len(s.AlphaRanks)), nil)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return shared.ErrInvalidAgreements
		}
		if _, dup := seen[id]; dup {
			return shared.WrapError("student", "SetAgreementOrder", shared.ErrInvalidAgreements,
				fmt.Sprintf("agreement %s listed twice", id), nil)
		}
		seen[id] = struct{}{}
	}

	s.AgreementOrder = append([]string(nil), ids...)
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// IsSpareChoice возвращает true, если позиция idx не покрыта авторитетными рангами.
func (s *Student) IsSpareChoice(idx int) bool {
	return len(s.AlphaRanks) <= idx
}

// Profile возвращает снимок академического положения для оценщика.
func (s *Student) Profile() placement.StudentProfile {
	order := make([]placement.AgreementID, len(s.AgreementOrder))
	for i, id := range s.AgreementOrder {
		order[i] = placement.AgreementID(id)
	}
	return placement.StudentProfile{
		GPA:                s.GPA,
		HasFailure:         s.Fail,
		PreferenceOrder:    order,
		AuthoritativeRanks: append([]int(nil), s.AlphaRanks...),
	}
}

// Validate проверяет инварианты сущности.
func (s *Student) Validate() error {
	if s.ID == "" {
		return shared.NewDomainError("student", "Validate", shared.ErrInvalidID, "student id is required")
	}
	if !s.Section.IsValid() {
		return shared.ErrInvalidSection
	}
	if !s.Year.IsValid() {
		return shared.ErrInvalidYear
	}
	return ValidateGPA(s.GPA)
}
