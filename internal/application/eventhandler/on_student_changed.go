// Package eventhandler содержит обработчики доменных событий.
// Обработчики - "реактивная" часть системы: они поддерживают производное
// состояние (кэши оценок, журнал) после успешной записи.
package eventhandler

import (
	"context"
	"fmt"
	"time"

	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
	"github.com/exchange-insight/exchange-insight/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON STUDENT CHANGED HANDLER
// Сбрасывает сохранённый walkthrough, когда меняются входные данные студента.
//
// Чужие изменения (другой студент выбрал то же соглашение) ловит отпечаток
// снимка; здесь достаточно сбросить кэш самого автора изменения, чтобы его
// следующий запрос не упёрся в ограничение частоты.
// ═══════════════════════════════════════════════════════════════════════════

// WalkthroughInvalidator удаляет сохранённый результат и метку пересчёта.
type WalkthroughInvalidator interface {
	Invalidate(ctx context.Context, studentID string) error
}

// OnStudentChangedHandler обрабатывает изменения предпочтений и удаление.
type OnStudentChangedHandler struct {
	cache   WalkthroughInvalidator
	timeout time.Duration
	log     *logger.Logger
}

// NewOnStudentChangedHandler создаёт новый обработчик.
func NewOnStudentChangedHandler(cache WalkthroughInvalidator, log *logger.Logger) *OnStudentChangedHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &OnStudentChangedHandler{
		cache:   cache,
		timeout: 3 * time.Second,
		log:     log.With(logger.Component("eventhandler")),
	}
}

// Register подписывает обработчик на нужные события.
func (h *OnStudentChangedHandler) Register(bus shared.EventSubscriber) error {
	for _, t := range []shared.EventType{shared.EventPreferencesUpdated, shared.EventStudentDeleted} {
		if err := bus.Subscribe(t, h.Handle); err != nil {
			return fmt.Errorf("subscribe %s: %w", t, err)
		}
	}
	return nil
}

// Handle сбрасывает кэш студента, к которому относится событие.
func (h *OnStudentChangedHandler) Handle(event shared.Event) error {
	switch event.EventType() {
	case shared.EventPreferencesUpdated, shared.EventStudentDeleted:
	default:
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.cache.Invalidate(ctx, event.AggregateID()); err != nil {
		return fmt.Errorf("invalidate walkthrough: %w", err)
	}

	h.log.Debug("walkthrough invalidated",
		logger.StudentID(event.AggregateID()),
		logger.String("event_type", string(event.EventType())),
	)
	return nil
}
