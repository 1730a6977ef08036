// Package event consumes order lifecycle events from the backend's Kafka
// topic so the cached order set tracks changes made elsewhere (the customer
// app, other admins) without polling.
package event

import (
	"context"
	"log/slog"

	"github.com/Mousaahmad63636/spotlymobile/pkg/kafka"
)

// Refresher is the slice of the orders service the listener drives.
type Refresher interface {
	Refresh(ctx context.Context) error
	RefreshOne(ctx context.Context, id string) error
}

// Listener maps order events onto cache refreshes: an update to a known
// order becomes a single-order re-fetch, everything else a full refresh.
type Listener struct {
	orders Refresher
	logger *slog.Logger
}

func NewListener(orders Refresher, log *slog.Logger) *Listener {
	return &Listener{orders: orders, logger: log}
}

// Handle implements kafka.Handler. Errors propagate so the consumer's retry
// and poison-pill handling apply.
func (l *Listener) Handle(ctx context.Context, ev *kafka.Event) error {
	switch ev.EventType {
	case kafka.EventOrderUpdated:
		if ev.AggregateID == "" {
			l.logger.WarnContext(ctx, "order event without aggregate id, doing full refresh",
				slog.String("event_id", ev.EventID))
			return l.orders.Refresh(ctx)
		}
		return l.orders.RefreshOne(ctx, ev.AggregateID)
	case kafka.EventOrderCreated:
		// A new order is not in the cache, so a targeted patch cannot land.
		return l.orders.Refresh(ctx)
	default:
		l.logger.DebugContext(ctx, "ignoring event",
			slog.String("event_type", ev.EventType),
			slog.String("event_id", ev.EventID))
		return nil
	}
}
