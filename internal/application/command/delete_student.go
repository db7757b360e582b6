package command

import (
	"context"
	"fmt"

	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
	"github.com/exchange-insight/exchange-insight/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE STUDENT COMMAND
// Removes the account and its preference order.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteStudentCommand identifies the account to delete.
type DeleteStudentCommand struct {
	StudentID     string
	CorrelationID string
}

// DeleteStudentHandler handles the DeleteStudentCommand.
type DeleteStudentHandler struct {
	studentRepo student.Repository
	publisher   shared.EventPublisher
}

// NewDeleteStudentHandler creates a new DeleteStudentHandler.
func NewDeleteStudentHandler(studentRepo student.Repository, publisher shared.EventPublisher) *DeleteStudentHandler {
	return &DeleteStudentHandler{studentRepo: studentRepo, publisher: publisher}
}

// Handle executes the delete command.
func (h *DeleteStudentHandler) Handle(ctx context.Context, cmd DeleteStudentCommand) error {
	id, err := shared.NewStudentID(cmd.StudentID)
	if err != nil {
		return err
	}

	if err := h.studentRepo.Delete(ctx, id.String()); err != nil {
		return fmt.Errorf("delete_student: %w", err)
	}

	event := shared.NewStudentDeletedEvent(id.String())
	event.BaseEvent = event.WithCorrelationID(cmd.CorrelationID)
	publish(h.publisher, event)

	return nil
}
