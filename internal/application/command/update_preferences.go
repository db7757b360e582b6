package command

import (
	"context"
	"fmt"

	"github.com/exchange-insight/exchange-insight/internal/domain/agreement"
	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
	"github.com/exchange-insight/exchange-insight/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE PREFERENCES COMMAND
// Replaces the ordered list of agreements a student applies to.
// Authoritative ranks are left alone: the official allocation owns them.
// ══════════════════════════════════════════════════════════════════════════════

// MaxPreferences bounds how many agreements a student may rank.
const MaxPreferences = 50

// UpdatePreferencesCommand contains the new preference order.
type UpdatePreferencesCommand struct {
	// StudentID is the ID of the student.
	StudentID string

	// AgreementIDs in order of preference, most wanted first.
	AgreementIDs []string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c UpdatePreferencesCommand) Validate() error {
	if _, err := shared.NewStudentID(c.StudentID); err != nil {
		return err
	}
	if len(c.AgreementIDs) > MaxPreferences {
		return shared.WrapError("agreement", "UpdatePreferences", shared.ErrInvalidAgreements,
			fmt.Sprintf("at most %d agreements", MaxPreferences), nil)
	}
	for _, id := range c.AgreementIDs {
		if _, err := shared.NewAgreementCode(id); err != nil {
			return shared.WrapError("agreement", "UpdatePreferences", shared.ErrInvalidAgreements,
				fmt.Sprintf("malformed agreement id %q", id), err)
		}
	}
	return nil
}

// UpdatePreferencesHandler handles the UpdatePreferencesCommand.
type UpdatePreferencesHandler struct {
	studentRepo   student.Repository
	agreementRepo agreement.Repository
	policy        agreement.Policy
	publisher     shared.EventPublisher
}

// NewUpdatePreferencesHandler creates a new UpdatePreferencesHandler.
func NewUpdatePreferencesHandler(
	studentRepo student.Repository,
	agreementRepo agreement.Repository,
	policy agreement.Policy,
	publisher shared.EventPublisher,
) *UpdatePreferencesHandler {
	return &UpdatePreferencesHandler{
		studentRepo:   studentRepo,
		agreementRepo: agreementRepo,
		policy:        policy,
		publisher:     publisher,
	}
}

// Handle executes the update preferences command.
func (h *UpdatePreferencesHandler) Handle(ctx context.Context, cmd UpdatePreferencesCommand) (*student.Student, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	stud, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("update_preferences: %w", err)
	}
	previous := stud.AgreementOrder

	// Duplicates and empty ids are rejected before any lookup.
	if err := stud.SetAgreementOrder(cmd.AgreementIDs); err != nil {
		return nil, err
	}

	selected := make([]*agreement.Agreement, len(cmd.AgreementIDs))
	for i, id := range cmd.AgreementIDs {
		a, err := h.agreementRepo.GetByID(ctx, id)
		if err != nil {
			if shared.IsNotFound(err) {
				return nil, shared.WrapError("agreement", "UpdatePreferences", shared.ErrInvalidAgreements,
					fmt.Sprintf("unknown agreement %s", id), nil)
			}
			return nil, fmt.Errorf("update_preferences: %w", err)
		}
		selected[i] = a
	}

	if err := h.policy.CheckSelection(stud, selected); err != nil {
		return nil, err
	}

	if err := h.studentRepo.UpdateAgreementOrder(ctx, stud.ID, stud.AgreementOrder); err != nil {
		return nil, fmt.Errorf("update_preferences: failed to save: %w", err)
	}

	event := shared.NewPreferencesUpdatedEvent(stud.ID, touchedAgreements(previous, stud.AgreementOrder))
	event.BaseEvent = event.WithCorrelationID(cmd.CorrelationID)
	publish(h.publisher, event)

	return stud, nil
}

// touchedAgreements returns the union of both orders, old ones first.
func touchedAgreements(before, after []string) []string {
	seen := make(map[string]struct{}, len(before)+len(after))
	out := make([]string, 0, len(before)+len(after))
	for _, list := range [][]string{before, after} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
