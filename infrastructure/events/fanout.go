package events

import (
	"context"
	"errors"

	"token-platform/domain/model"
	"token-platform/domain/repository"
	"token-platform/infrastructure/logger"
)

// Fanout delivers each event to every configured publisher. Delivery is best
// effort: failures are logged and joined, never retried.
type Fanout struct {
	publishers []repository.IEventPublisher
}

func NewFanout(publishers ...repository.IEventPublisher) *Fanout {
	out := make([]repository.IEventPublisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			out = append(out, p)
		}
	}
	return &Fanout{publishers: out}
}

var _ repository.IEventPublisher = (*Fanout)(nil)

func (f *Fanout) Publish(ctx context.Context, event model.Event) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, event); err != nil {
			logger.GetLogger().WithField("error", err).WithField("type", event.Type).Warn("event delivery failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
