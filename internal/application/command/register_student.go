// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
	"github.com/exchange-insight/exchange-insight/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER STUDENT COMMAND
// Creates a student account from the identity provider profile plus the
// academic data the student enters once.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterStudentCommand contains the data to register a student.
type RegisterStudentCommand struct {
	Name  string
	Email string
	Image string

	// Section is case-insensitive, e.g. "in" or "IN".
	Section string

	// Year defaults to 2 when zero.
	Year int

	GPA  float64
	Fail bool

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RegisterStudentCommand) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return shared.NewDomainError("student", "Register", shared.ErrEmptyValue, "email is required")
	}
	if len(c.Name) > 200 {
		return shared.NewDomainError("student", "Register", shared.ErrInvalidInput, "name must be at most 200 characters")
	}
	return nil
}

// RegisterStudentHandler handles the RegisterStudentCommand.
type RegisterStudentHandler struct {
	studentRepo student.Repository
	publisher   shared.EventPublisher
	newID       func() string
}

// NewRegisterStudentHandler creates a new RegisterStudentHandler.
func NewRegisterStudentHandler(studentRepo student.Repository, publisher shared.EventPublisher) *RegisterStudentHandler {
	return &RegisterStudentHandler{
		studentRepo: studentRepo,
		publisher:   publisher,
		newID:       uuid.NewString,
	}
}

// Handle executes the register command.
func (h *RegisterStudentHandler) Handle(ctx context.Context, cmd RegisterStudentCommand) (*student.Student, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	s, err := student.NewStudent(student.NewStudentParams{
		ID:      h.newID(),
		Name:    cmd.Name,
		Email:   strings.ToLower(cmd.Email),
		Image:   cmd.Image,
		Section: cmd.Section,
		Year:    student.Year(cmd.Year),
		GPA:     cmd.GPA,
		Fail:    cmd.Fail,
	})
	if err != nil {
		return nil, err
	}

	if err := h.studentRepo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("register_student: %w", err)
	}

	event := shared.NewStudentRegisteredEvent(s.ID, s.Section.String(), s.GPA)
	event.BaseEvent = event.WithCorrelationID(cmd.CorrelationID)
	publish(h.publisher, event)

	return s, nil
}
