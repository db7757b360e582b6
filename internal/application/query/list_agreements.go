package query

import (
	"context"
	"fmt"

	"github.com/exchange-insight/exchange-insight/internal/domain/agreement"
	"github.com/exchange-insight/exchange-insight/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST AGREEMENTS QUERY
// Каталог соглашений, открытых секции студента.
// ══════════════════════════════════════════════════════════════════════════════

// ListAgreementsQuery содержит параметры запроса.
type ListAgreementsQuery struct {
	// Section - секция, например "IN". Регистр не важен.
	Section string
}

// AgreementDTO - соглашение для отображения.
type AgreementDTO struct {
	ID         string   `json:"id"`
	University string   `json:"university"`
	Country    string   `json:"country"`
	Region     string   `json:"region"`
	Places     int      `json:"places"`
	Sections   []string `json:"sections"`
}

// ListAgreementsResult - результат запроса.
type ListAgreementsResult struct {
	Section    string         `json:"section"`
	Agreements []AgreementDTO `json:"agreements"`
}

// ListAgreementsHandler обрабатывает запросы каталога.
type ListAgreementsHandler struct {
	agreements agreement.Repository
}

// NewListAgreementsHandler создаёт новый обработчик.
func NewListAgreementsHandler(agreements agreement.Repository) *ListAgreementsHandler {
	return &ListAgreementsHandler{agreements: agreements}
}

// Handle выполняет запрос.
func (h *ListAgreementsHandler) Handle(ctx context.Context, q ListAgreementsQuery) (*ListAgreementsResult, error) {
	section, err := student.ParseSection(q.Section)
	if err != nil {
		return nil, err
	}

	list, err := h.agreements.ListBySection(ctx, section.String())
	if err != nil {
		return nil, fmt.Errorf("list_agreements: %w", err)
	}

	result := &ListAgreementsResult{
		Section:    section.String(),
		Agreements: make([]AgreementDTO, 0, len(list)),
	}
	for _, a := range list {
		result.Agreements = append(result.Agreements, ToAgreementDTO(a))
	}
	return result, nil
}

// ToAgreementDTO конвертирует доменную модель в DTO.
func ToAgreementDTO(a *agreement.Agreement) AgreementDTO {
	sections := make([]string, len(a.Sections))
	for i, s := range a.Sections {
		sections[i] = s.String()
	}
	return AgreementDTO{
		ID:         a.ID,
		University: a.University.Name,
		Country:    a.University.Country,
		Region:     string(a.University.RegionCode),
		Places:     a.Places,
		Sections:   sections,
	}
}
