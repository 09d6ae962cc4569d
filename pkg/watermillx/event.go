package watermillx

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillSQL "github.com/ThreeDotsLabs/watermill-sql/v4/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mubas-somase/voting-backend/internal/domain/event"
)

type ProcessorOptions struct {
	// PollInterval overrides the subscriber poll interval; tests use a few milliseconds.
	PollInterval time.Duration
	// InitializeSchema creates the topic and offset tables on subscribe.
	InitializeSchema bool
}

func NewEventProcessor(
	router *message.Router,
	conn *pgxpool.Pool,
	logger watermill.LoggerAdapter,
	opts ProcessorOptions,
) (*cqrs.EventProcessor, error) {
	return cqrs.NewEventProcessorWithConfig(router, cqrs.EventProcessorConfig{
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			evt, ok := params.EventHandler.NewEvent().(event.Event)
			if !ok {
				return "", fmt.Errorf("event handler %T does not implement event.Event", params.EventHandler.NewEvent())
			}
			return MessageTopic(evt)
		},
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return watermillSQL.NewSubscriber(
				watermillSQL.BeginnerFromPgx(conn),
				watermillSQL.SubscriberConfig{
					ConsumerGroup:    params.EventHandler.HandlerName(),
					SchemaAdapter:    watermillSQL.DefaultPostgreSQLSchema{},
					OffsetsAdapter:   watermillSQL.DefaultPostgreSQLOffsetsAdapter{},
					InitializeSchema: opts.InitializeSchema,
					PollInterval:     opts.PollInterval,
				},
				logger,
			)
		},
		Marshaler:         cqrs.JSONMarshaler{},
		Logger:            logger,
		AckOnUnknownEvent: true,
	})
}

func NewTxEventBus(tx pgx.Tx, logger watermill.LoggerAdapter) (*cqrs.EventBus, error) {
	publisher, err := watermillSQL.NewPublisher(
		watermillSQL.TxFromPgx(tx),
		watermillSQL.PublisherConfig{
			SchemaAdapter: watermillSQL.DefaultPostgreSQLSchema{},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher: %w", err)
	}

	eventBus, err := cqrs.NewEventBusWithConfig(publisher, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			evt, ok := params.Event.(event.Event)
			if !ok {
				return "", fmt.Errorf("event %T does not implement event.Event", params.Event)
			}

			return MessageTopic(evt)
		},
		Marshaler: cqrs.JSONMarshaler{},
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	return eventBus, nil
}

// Publish writes events to the outbox tables inside tx, so they are only
// delivered if the surrounding write commits.
func Publish(ctx context.Context, tx pgx.Tx, logger watermill.LoggerAdapter, evts ...event.Event) error {
	if len(evts) == 0 {
		return nil
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	eventBus, err := NewTxEventBus(tx, logger)
	if err != nil {
		return err
	}

	for _, evt := range evts {
		if p, ok := evt.(interface{ Propagate(context.Context) }); ok {
			p.Propagate(ctx)
		}
		if err := eventBus.Publish(ctx, evt); err != nil {
			return fmt.Errorf("failed to publish event %T: %w", evt, err)
		}
	}

	return nil
}

func MessageTopic(event event.Event) (string, error) {
	streamName := event.GetStreamName()
	if streamName == "" {
		return "", fmt.Errorf("stream name is empty, event: %T", event)
	}

	return streamName, nil
}

// InitializeEventSchema creates the outbox tables for every stream up front,
// so publishers inside transactions never race the subscribers' schema setup.
func InitializeEventSchema(ctx context.Context, conn *pgxpool.Pool, logger watermill.LoggerAdapter, streams ...string) error {
	subscriber, err := watermillSQL.NewSubscriber(
		watermillSQL.BeginnerFromPgx(conn),
		watermillSQL.SubscriberConfig{
			SchemaAdapter:    watermillSQL.DefaultPostgreSQLSchema{},
			OffsetsAdapter:   watermillSQL.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: true,
		},
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create subscriber: %w", err)
	}
	defer subscriber.Close()

	for _, stream := range streams {
		if err := subscriber.SubscribeInitialize(stream); err != nil {
			return fmt.Errorf("failed to initialize stream %s: %w", stream, err)
		}
	}

	return nil
}
