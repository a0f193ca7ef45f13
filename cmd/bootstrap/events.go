package bootstrap

import (
	"context"

	"storefront-checkout/internal/infra/events"
	"storefront-checkout/internal/pkg/config"
	"storefront-checkout/internal/usecase/commands"

	"go.uber.org/fx"
)

var EventsModule = fx.Module("events",
	fx.Provide(
		NewEventPublisher,
	),
)

// NewEventPublisher wires the Kafka sink when brokers are configured and a
// no-op sink otherwise, so local development does not need a broker.
func NewEventPublisher(lc fx.Lifecycle, cfg config.Config) commands.EventPublisher {
	if len(cfg.Events.Brokers) == 0 || cfg.Events.Brokers[0] == "" {
		return events.NopPublisher{}
	}

	publisher := events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})

	return publisher
}
