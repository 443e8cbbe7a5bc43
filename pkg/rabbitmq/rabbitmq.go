package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"warehouse/pkg/notify"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// ChangeEvent is the message published for every product change.
type ChangeEvent struct {
	EventID   string    `json:"event_id"`
	Resource  string    `json:"resource"`
	Op        string    `json:"op"`
	Rows      int64     `json:"rows"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeEvent builds the event published for change.
func NewChangeEvent(change notify.Change) ChangeEvent {
	return ChangeEvent{
		EventID:   uuid.New().String(),
		Resource:  change.Path,
		Op:        string(change.Op),
		Rows:      change.Rows,
		Timestamp: change.At.UTC(),
	}
}

// NewClient creates a new RabbitMQ client.
// It connects to RabbitMQ, opens a channel and declares the change queue.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("RabbitMQ client connected", zap.String("queue", cfg.Queue))

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
		logger:  logger,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", name, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishChange publishes change to the change queue as a JSON ChangeEvent.
func (c *Client) PublishChange(change notify.Change) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	event := NewChangeEvent(change)
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.EventID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Timestamp,
		})
	if err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}

	c.logger.Debug("Published change event",
		zap.String("event_id", event.EventID),
		zap.String("resource", event.Resource))
	return nil
}

// Forward returns an observer that publishes every change it receives.
// Publish failures are logged and dropped.
func (c *Client) Forward() notify.Observer {
	return func(change notify.Change) {
		if err := c.PublishChange(change); err != nil {
			c.logger.Warn("Failed to forward change event",
				zap.String("resource", change.Path),
				zap.Error(err))
		}
	}
}

// ConsumeChanges delivers every change event on the queue to handler in a
// background goroutine. A handler error nacks the message without requeue.
func (c *Client) ConsumeChanges(handler func(ChangeEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			if err := handleDelivery(msg.Body, handler); err != nil {
				c.logger.Error("Error processing change event",
					zap.Uint64("delivery_tag", msg.DeliveryTag),
					zap.Error(err))
				if nackErr := msg.Nack(false, false); nackErr != nil {
					c.logger.Error("Error nacking message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				c.logger.Error("Error acking message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(ackErr))
			}
		}
		c.logger.Info("Change event consumer stopped")
	}()

	return nil
}

func handleDelivery(body []byte, handler func(ChangeEvent) error) error {
	var event ChangeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode change event: %w", err)
	}
	return handler(event)
}
