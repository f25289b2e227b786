package queue

import (
	"encoding/json"

	"github.com/streadway/amqp"
)

// Topics the send pipeline publishes to. Emission is fire-and-forget;
// consumers (analytics, the history UI) live outside this service.
const (
	TopicDeliveryEvents = "delivery_events"
	TopicCampaignEvents = "campaign_events"
)

// Publisher is the event sink used by the send orchestrator.
type Publisher interface {
	Publish(topic string, payload any) error
	Close() error
}

// AMQPPublisher publishes JSON events to durable RabbitMQ queues.
type AMQPPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	for _, topic := range []string{TopicDeliveryEvents, TopicCampaignEvents} {
		if _, err := ch.QueueDeclare(topic, true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, err
		}
	}

	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

func (p *AMQPPublisher) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.ch.Publish(
		"",
		topic,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// NoopPublisher is used when no AMQP URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(string, any) error { return nil }
func (NoopPublisher) Close() error              { return nil }

var (
	_ Publisher = (*AMQPPublisher)(nil)
	_ Publisher = NoopPublisher{}
)
