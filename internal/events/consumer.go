package events

import (
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Subscriber reads events from a durable queue bound to the exchange.
type Subscriber struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	Deliveries <-chan amqp.Delivery
}

// NewSubscriber binds queue to exchange once per routing key pattern. Acks are manual,
// see Handle.
func NewSubscriber(url, exchange, queue string, keys ...string) (*Subscriber, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	s := &Subscriber{conn: conn}

	if s.ch, err = conn.Channel(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := s.ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	q, err := s.ch.QueueDeclare(
		queue,
		true,  // durable
		false, // keep the queue while no consumer is attached
		false,
		false,
		nil,
	)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	for _, key := range keys {
		if err := s.ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("bind %q: %w", key, err)
		}
	}

	s.Deliveries, err = s.ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("consume: %w", err)
	}
	return s, nil
}

func (s *Subscriber) Close() error {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Handle decodes d and passes the event to fn. A body that does not decode is dropped.
// When fn fails the message is requeued once; a redelivered message is dropped instead.
func Handle(d amqp.Delivery, fn func(Event) error) {
	var e Event
	if err := json.Unmarshal(d.Body, &e); err != nil {
		slog.Error("failed to decode event", slog.String("error", err.Error()), slog.String("message_id", d.MessageId))
		_ = d.Nack(false, false)
		return
	}

	if err := fn(e); err != nil {
		slog.Error("failed to handle event",
			slog.String("error", err.Error()),
			slog.String("type", e.Type),
			slog.Bool("redelivered", d.Redelivered),
		)
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	_ = d.Ack(false)
}
