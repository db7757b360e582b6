package command

import (
	"context"
	"sync"

	"github.com/exchange-insight/exchange-insight/internal/domain/agreement"
	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
	"github.com/exchange-insight/exchange-insight/internal/domain/student"
)

type memStudents struct {
	mu   sync.Mutex
	byID map[string]*student.Student
}

func newMemStudents(seed ...*student.Student) *memStudents {
	m := &memStudents{byID: map[string]*student.Student{}}
	for _, s := range seed {
		m.byID[s.ID] = s
	}
	return m
}

func (m *memStudents) Create(_ context.Context, s *student.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == s.Email {
			return shared.ErrStudentAlreadyExists
		}
	}
	cp := *s
	m.byID[s.ID] = &cp
	return nil
}

func (m *memStudents) GetByID(_ context.Context, id string) (*student.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStudents) GetByEmail(_ context.Context, email string) (*student.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.Email == email {
			cp := *s
			return &cp, nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

func (m *memStudents) UpdateAgreementOrder(_ context.Context, id string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return shared.ErrStudentNotFound
	}
	s.AgreementOrder = append([]string(nil), ids...)
	return nil
}

func (m *memStudents) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return shared.ErrStudentNotFound
	}
	delete(m.byID, id)
	return nil
}

type memAgreements map[string]*agreement.Agreement

func (m memAgreements) GetByID(_ context.Context, id string) (*agreement.Agreement, error) {
	a, ok := m[id]
	if !ok {
		return nil, shared.ErrAgreementNotFound
	}
	return a, nil
}

func (m memAgreements) ListBySection(context.Context, string) ([]*agreement.Agreement, error) {
	return nil, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *recordingPublisher) Publish(e shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}
