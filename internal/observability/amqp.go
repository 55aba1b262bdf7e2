package observability

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Publisher pushes portal events onto the broker. Delivery is best effort:
// socket fan-out never waits on the broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, env EventEnvelope, headers map[string]string) error
}

// AMQPPublisher publishes to a durable topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	if url == "" {
		return nil, errors.New("amqp url is empty")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, env EventEnvelope, headers map[string]string) error {
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	table := amqp.Table{}
	for key, value := range headers {
		table[key] = value
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    env.OccurredAt,
		Headers:      table,
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

var defaultPublisher Publisher

// SetPublisher installs the process-wide event publisher. nil disables
// publishing.
func SetPublisher(publisher Publisher) {
	defaultPublisher = publisher
}

// PublishEvent stamps env and hands it to the installed publisher. With no
// publisher installed it is a no-op so local runs work without a broker.
func PublishEvent(ctx context.Context, routingKey string, env EventEnvelope) error {
	if defaultPublisher == nil {
		return nil
	}

	if env.OccurredAt.IsZero() {
		env.OccurredAt = time.Now().UTC()
	}
	if env.Source == "" {
		env.Source = "portal-service"
	}

	if err := defaultPublisher.Publish(ctx, routingKey, env, TraceHeaders(ctx)); err != nil {
		IncAMQPPublishError()
		return err
	}
	return nil
}
