package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
	"github.com/exchange-insight/exchange-insight/internal/domain/student"
)

func TestRegisterStudent(t *testing.T) {
	repo := newMemStudents()
	pub := &recordingPublisher{}
	h := NewRegisterStudentHandler(repo, pub)

	s, err := h.Handle(context.Background(), RegisterStudentCommand{
		Name:          "Ada",
		Email:         "Ada@Example.org",
		Section:       "in",
		GPA:           5.25,
		CorrelationID: "req-1",
	})
	require.NoError(t, err)

	_, err = shared.NewStudentID(s.ID)
	assert.NoError(t, err, "id must be a uuid")
	assert.Equal(t, "ada@example.org", s.Email)
	assert.Equal(t, student.Section("IN"), s.Section)
	assert.Equal(t, student.YearSecond, s.Year)

	stored, err := repo.GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.25, stored.GPA)

	require.Len(t, pub.events, 1)
	ev := pub.events[0].(shared.StudentRegisteredEvent)
	assert.Equal(t, "IN", ev.Section)
	assert.Equal(t, "req-1", ev.CorrelationID)
}

func TestRegisterStudent_Duplicate(t *testing.T) {
	h := NewRegisterStudentHandler(newMemStudents(), nil)
	cmd := RegisterStudentCommand{Email: "a@b.c", Section: "SC", GPA: 4}

	_, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), cmd)
	assert.True(t, shared.IsAlreadyExists(err))
}

func TestRegisterStudent_Validation(t *testing.T) {
	tests := []struct {
		name string
		cmd  RegisterStudentCommand
		want error
	}{
		{"missing email", RegisterStudentCommand{Section: "IN", GPA: 4}, shared.ErrEmptyValue},
		{"unknown section", RegisterStudentCommand{Email: "a@b.c", Section: "XYZ", GPA: 4}, shared.ErrInvalidSection},
		{"bad year", RegisterStudentCommand{Email: "a@b.c", Section: "IN", Year: 4, GPA: 4}, shared.ErrInvalidYear},
		{"gpa too high", RegisterStudentCommand{Email: "a@b.c", Section: "IN", GPA: 6.5}, shared.ErrInvalidGPA},
		{"gpa too low", RegisterStudentCommand{Email: "a@b.c", Section: "IN", GPA: 0.5}, shared.ErrInvalidGPA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemStudents()
			_, err := NewRegisterStudentHandler(repo, nil).Handle(context.Background(), tt.cmd)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, shared.IsValidation(err))
			assert.Empty(t, repo.byID)
		})
	}
}
