package command

import "github.com/exchange-insight/exchange-insight/internal/domain/shared"

// publish is fire-and-forget: the write already succeeded, and subscribers
// only maintain derived state.
func publish(p shared.EventPublisher, e shared.Event) {
	if p == nil {
		return
	}
	_ = p.Publish(e)
}
