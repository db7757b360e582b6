package messaging

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
)

func TestInMemoryEventBus_Sync(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{EnableMetrics: true})

	var typed, all []string
	require.NoError(t, bus.Subscribe(shared.EventStudentDeleted, func(e shared.Event) error {
		typed = append(typed, e.AggregateID())
		return nil
	}))
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		all = append(all, string(e.EventType()))
		return errors.New("audit sink down")
	}))

	require.NoError(t, bus.Publish(shared.NewStudentDeletedEvent("s-1")))
	require.NoError(t, bus.Publish(shared.NewPreferencesUpdatedEvent("s-2", []string{"a"})))

	assert.Equal(t, []string{"s-1"}, typed)
	assert.Equal(t, []string{"student.deleted", "student.preferences_updated"}, all)

	snap := bus.Metrics().Snapshot()
	assert.EqualValues(t, 2, snap.TotalPublished)
	assert.EqualValues(t, 3, snap.TotalHandlerExecs)
	assert.EqualValues(t, 2, snap.HandlerFailures)
}

func TestInMemoryEventBus_AsyncDrainsOnClose(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultInMemoryEventBusConfig())

	var calls atomic.Int32
	require.NoError(t, bus.Subscribe(shared.EventStudentRegistered, func(shared.Event) error {
		calls.Add(1)
		return nil
	}))

	for i := 0; i < 20; i++ {
		require.NoError(t, bus.Publish(shared.NewStudentRegisteredEvent("s", "IN", 5.0)))
	}
	require.NoError(t, bus.Close())

	assert.EqualValues(t, 20, calls.Load())
	assert.ErrorIs(t, bus.Publish(shared.NewStudentDeletedEvent("s")), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventStudentDeleted, func(shared.Event) error { return nil }), ErrEventBusClosed)
}

func TestInMemoryEventBus_RecoversPanics(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{EnableMetrics: true})
	require.NoError(t, bus.Subscribe(shared.EventStudentDeleted, func(shared.Event) error {
		panic("boom")
	}))

	assert.NotPanics(t, func() {
		_ = bus.Publish(shared.NewStudentDeletedEvent("s"))
	})
	assert.EqualValues(t, 1, bus.Metrics().Snapshot().HandlerFailures)
}

func TestInMemoryEventBus_RejectsNil(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{})
	assert.Error(t, bus.Publish(nil))
	assert.Error(t, bus.Subscribe(shared.EventStudentDeleted, nil))
}
