package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends layout events to RabbitMQ.  Each publish opens its own
// connection, so a broker outage never leaves a broken channel behind.
// Errors are logged and returned; callers treat them as non-fatal.
type Publisher struct {
	url    string
	logger *zap.Logger
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string, logger *zap.Logger) *Publisher {
	return &Publisher{url: url, logger: logger}
}

// PublishLayoutSaved publishes ev to the layout.saved queue as a persistent
// JSON message.
func (p *Publisher) PublishLayoutSaved(ctx context.Context, ev LayoutSavedEvent) error {
	log := p.logger.With(zap.Uint64("room_id", ev.RoomID))
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(LayoutSavedQueue, true, false, false, false, nil); err != nil {
		log.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	pub, err := newPublishing(ev)
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(ctx, "", LayoutSavedQueue, false, false, pub); err != nil {
		log.Warn("rabbitmq: publish failed", zap.Error(err))
		return err
	}
	log.Debug("layout.saved published")
	return nil
}

func newPublishing(ev LayoutSavedEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}
