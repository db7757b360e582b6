package eventhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
	"github.com/exchange-insight/exchange-insight/pkg/logger"
)

type fakeInvalidator struct {
	ids []string
	err error
}

func (f *fakeInvalidator) Invalidate(_ context.Context, id string) error {
	f.ids = append(f.ids, id)
	return f.err
}

type fakeBus struct {
	typed map[shared.EventType]int
	all   int
}

func (b *fakeBus) Subscribe(t shared.EventType, _ shared.EventHandler) error {
	if b.typed == nil {
		b.typed = map[shared.EventType]int{}
	}
	b.typed[t]++
	return nil
}

func (b *fakeBus) SubscribeAll(shared.EventHandler) error {
	b.all++
	return nil
}

func TestOnStudentChanged_Invalidates(t *testing.T) {
	inv := &fakeInvalidator{}
	h := NewOnStudentChangedHandler(inv, nil)

	require.NoError(t, h.Handle(shared.NewPreferencesUpdatedEvent("s-1", []string{"eth"})))
	require.NoError(t, h.Handle(shared.NewStudentDeletedEvent("s-2")))
	require.NoError(t, h.Handle(shared.NewStudentRegisteredEvent("s-3", "IN", 5)))

	assert.Equal(t, []string{"s-1", "s-2"}, inv.ids)
}

func TestOnStudentChanged_PropagatesErrors(t *testing.T) {
	h := NewOnStudentChangedHandler(&fakeInvalidator{err: errors.New("redis down")}, nil)

	err := h.Handle(shared.NewStudentDeletedEvent("s-1"))
	assert.ErrorContains(t, err, "redis down")
}

func TestRegister(t *testing.T) {
	bus := &fakeBus{}
	require.NoError(t, NewOnStudentChangedHandler(&fakeInvalidator{}, nil).Register(bus))
	require.NoError(t, NewAuditLogHandler(logger.Nop()).Register(bus))

	assert.Equal(t, 1, bus.typed[shared.EventPreferencesUpdated])
	assert.Equal(t, 1, bus.typed[shared.EventStudentDeleted])
	assert.Equal(t, 1, bus.all)
}

func TestAuditLog(t *testing.T) {
	var buf bytes.Buffer
	h := NewAuditLogHandler(logger.New(logger.Options{Output: &buf}))

	ev := shared.NewStudentDeletedEvent("s-9")
	ev.BaseEvent = ev.WithCorrelationID("req-7")
	require.NoError(t, h.Handle(ev))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	fields := line["fields"].(map[string]any)
	assert.Equal(t, "student.deleted", fields["event_type"])
	assert.Equal(t, "s-9", fields["student_id"])
	assert.Equal(t, "req-7", fields[logger.RequestIDKey])
	assert.Equal(t, "audit", fields["component"])
}
