package eventhandler

import (
	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
	"github.com/exchange-insight/exchange-insight/pkg/logger"
)

// AuditLogHandler пишет каждое доменное событие в структурированный лог.
type AuditLogHandler struct {
	log *logger.Logger
}

// NewAuditLogHandler создаёт новый обработчик.
func NewAuditLogHandler(log *logger.Logger) *AuditLogHandler {
	return &AuditLogHandler{log: log.With(logger.Component("audit"))}
}

// Register подписывает обработчик на все события.
func (h *AuditLogHandler) Register(bus shared.EventSubscriber) error {
	return bus.SubscribeAll(h.Handle)
}

// Handle логирует событие.
func (h *AuditLogHandler) Handle(event shared.Event) error {
	fields := []logger.Field{
		logger.String("event_type", string(event.EventType())),
		logger.StudentID(event.AggregateID()),
		logger.Any("payload", event.Payload()),
	}
	if e, ok := correlated(event); ok && e != "" {
		fields = append(fields, logger.String(logger.RequestIDKey, e))
	}
	h.log.Info("domain event", fields...)
	return nil
}

func correlated(event shared.Event) (string, bool) {
	switch e := event.(type) {
	case shared.StudentRegisteredEvent:
		return e.CorrelationID, true
	case shared.PreferencesUpdatedEvent:
		return e.CorrelationID, true
	case shared.StudentDeletedEvent:
		return e.CorrelationID, true
	default:
		return "", false
	}
}
