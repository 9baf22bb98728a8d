package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"preventa/internal/domain"
)

const eventTypeMetadata = "event_type"

// Bus carries committed order events from the workflows to the Dispatcher.
// Publishing only hands the event to an in-process channel, so a slow or
// absent subscriber never holds up the request that produced it.
type Bus struct {
	pubsub     *gochannel.GoChannel
	topic      string
	dispatcher *Dispatcher
	logger     *zap.Logger
	wg         sync.WaitGroup
}

func NewBus(dispatcher *Dispatcher, topic string, logger *zap.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer: 256,
			},
			NewWatermillLogger(logger),
		),
		topic:      topic,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (b *Bus) Publish(ctx context.Context, event domain.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event.Type, err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(eventTypeMetadata, string(event.Type))

	if err := b.pubsub.Publish(b.topic, msg); err != nil {
		return fmt.Errorf("publishing %s event: %w", event.Type, err)
	}

	b.logger.Debug("order event published",
		zap.String("messageId", msg.UUID),
		zap.String("type", string(event.Type)),
		zap.Int64("orderId", event.OrderID),
	)
	return nil
}

// Start subscribes to the topic and routes events until ctx is done or the
// bus is closed. Events published before Start are not delivered.
func (b *Bus) Start(ctx context.Context) error {
	messages, err := b.pubsub.Subscribe(ctx, b.topic)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", b.topic, err)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range messages {
			b.handle(ctx, msg)
			msg.Ack()
		}
	}()
	return nil
}

// Close stops the subscription and waits for the event in flight.
func (b *Bus) Close() error {
	err := b.pubsub.Close()
	b.wg.Wait()
	return err
}

func (b *Bus) handle(ctx context.Context, msg *message.Message) {
	var event domain.OrderEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		b.logger.Error("discarding undecodable order event", zap.String("messageId", msg.UUID), zap.Error(err))
		return
	}

	switch event.Type {
	case domain.EventOrderCreated:
		n := b.dispatcher.BroadcastToRole(ctx, domain.RoleEvaluator, event.Type, event)
		n += b.dispatcher.BroadcastToRole(ctx, domain.RoleSupervisor, event.Type, event)
		b.logger.Debug("new order broadcast", zap.String("orderNumber", event.OrderNumber), zap.Int("recipients", n))
	case domain.EventOrderApproved, domain.EventOrderRejected:
		b.dispatcher.Publish(ctx, event.Type, event, Target{Role: domain.RoleVendor, UserID: event.VendorID})
		b.dispatcher.Publish(ctx, event.Type, event, Target{Role: domain.RoleClient, UserID: event.ClientID})
	case domain.EventOrderEscalated:
		b.dispatcher.BroadcastToRole(ctx, domain.RoleSupervisor, event.Type, event)
	default:
		b.logger.Warn("unrouted order event", zap.String("type", string(event.Type)), zap.String("messageId", msg.UUID))
	}
}
