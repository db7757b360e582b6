package query

import (
	"context"
	"fmt"
	"time"

	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
	"github.com/exchange-insight/exchange-insight/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentQuery содержит параметры запроса.
type GetStudentQuery struct {
	StudentID string
}

// StudentDTO - профиль студента.
type StudentDTO struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Image          string    `json:"image,omitempty"`
	Section        string    `json:"section"`
	Year           int       `json:"year"`
	GPA            float64   `json:"gpa"`
	Fail           bool      `json:"fail"`
	AgreementOrder []string  `json:"agreement_order"`
	AlphaRanks     []int     `json:"alpha_ranks"`
	CreatedAt      time.Time `json:"created_at"`
}

// GetStudentHandler обрабатывает запросы профиля.
type GetStudentHandler struct {
	students student.Repository
}

// NewGetStudentHandler создаёт новый обработчик.
func NewGetStudentHandler(students student.Repository) *GetStudentHandler {
	return &GetStudentHandler{students: students}
}

// Handle выполняет запрос.
func (h *GetStudentHandler) Handle(ctx context.Context, q GetStudentQuery) (*StudentDTO, error) {
	id, err := shared.NewStudentID(q.StudentID)
	if err != nil {
		return nil, err
	}

	s, err := h.students.GetByID(ctx, id.String())
	if err != nil {
		return nil, fmt.Errorf("get_student: %w", err)
	}

	dto := ToStudentDTO(s)
	return &dto, nil
}

// ToStudentDTO конвертирует доменную модель в DTO.
func ToStudentDTO(s *student.Student) StudentDTO {
	order := s.AgreementOrder
	if order == nil {
		order = []string{}
	}
	ranks := s.AlphaRanks
	if ranks == nil {
		ranks = []int{}
	}
	return StudentDTO{
		ID:             s.ID,
		Name:           s.Name,
		Email:          s.Email,
		Image:          s.Image,
		Section:        s.Section.String(),
		Year:           int(s.Year),
		GPA:            s.GPA,
		Fail:           s.Fail,
		AgreementOrder: order,
		AlphaRanks:     ranks,
		CreatedAt:      s.CreatedAt,
	}
}
