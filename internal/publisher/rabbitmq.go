package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"scholarship_catalog/internal/domain"
)

type RabbitMQ struct {
	conn            *amqp.Connection
	channel         *amqp.Channel
	mu              sync.Mutex
	exchange        string
	routingKey      string
	eventRoutingKey string
	logger          *slog.Logger
}

type Config struct {
	URL             string
	Exchange        string
	RoutingKey      string
	QueueName       string
	EventRoutingKey string
	EventQueueName  string
}

func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	bindings := map[string]string{cfg.QueueName: cfg.RoutingKey}
	if cfg.EventQueueName != "" && cfg.EventRoutingKey != "" {
		bindings[cfg.EventQueueName] = cfg.EventRoutingKey
	}

	for queue, key := range bindings {
		if err := declareAndBind(ch, cfg.Exchange, queue, key); err != nil {
			ch.Close()
			conn.Close()
			return nil, err
		}
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
		"event_routing_key", cfg.EventRoutingKey,
	)

	return &RabbitMQ{
		conn:            conn,
		channel:         ch,
		exchange:        cfg.Exchange,
		routingKey:      cfg.RoutingKey,
		eventRoutingKey: cfg.EventRoutingKey,
		logger:          logger,
	}, nil
}

func declareAndBind(ch *amqp.Channel, exchange, queue, key string) error {
	q, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", queue, err)
	}
	return nil
}

type ScholarshipMessage struct {
	Action      string             `json:"action"` // "create" or "update"
	Scholarship domain.Scholarship `json:"scholarship"`
	Timestamp   time.Time          `json:"timestamp"`
}

type EventMessage struct {
	Event     domain.TrackingEvent `json:"event"`
	Timestamp time.Time            `json:"timestamp"`
}

func (r *RabbitMQ) PublishScholarship(ctx context.Context, sch *domain.Scholarship, isNew bool) error {
	action := "update"
	if isNew {
		action = "create"
	}

	msg := ScholarshipMessage{
		Action:      action,
		Scholarship: *sch,
		Timestamp:   time.Now().UTC(),
	}

	if err := r.publish(ctx, r.routingKey, msg); err != nil {
		return err
	}

	r.logger.Debug("published scholarship",
		"external_id", sch.ID,
		"action", action,
	)

	return nil
}

// PublishEvent sends a tracking event on the event routing key.
func (r *RabbitMQ) PublishEvent(ctx context.Context, event domain.TrackingEvent) error {
	if r.eventRoutingKey == "" {
		return fmt.Errorf("event routing key not configured")
	}

	msg := EventMessage{
		Event:     event,
		Timestamp: time.Now().UTC(),
	}

	return r.publish(ctx, r.eventRoutingKey, msg)
}

func (r *RabbitMQ) publish(ctx context.Context, key string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		key,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
