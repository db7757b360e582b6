package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
)

func TestDeleteStudent(t *testing.T) {
	repo := newMemStudents(seededStudent(5.0))
	pub := &recordingPublisher{}
	h := NewDeleteStudentHandler(repo, pub)

	require.NoError(t, h.Handle(context.Background(), DeleteStudentCommand{StudentID: studentID}))

	_, err := repo.GetByID(context.Background(), studentID)
	assert.True(t, shared.IsNotFound(err))
	require.Len(t, pub.events, 1)
	assert.Equal(t, shared.EventStudentDeleted, pub.events[0].EventType())

	err = h.Handle(context.Background(), DeleteStudentCommand{StudentID: studentID})
	assert.True(t, shared.IsNotFound(err))
	assert.Len(t, pub.events, 1)
}

func TestDeleteStudent_InvalidID(t *testing.T) {
	err := NewDeleteStudentHandler(newMemStudents(), nil).Handle(context.Background(), DeleteStudentCommand{StudentID: "42"})
	assert.True(t, shared.IsValidation(err))
}
