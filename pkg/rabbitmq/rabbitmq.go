package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
)

const usageQueue = "exercise_usage_queue"

// UsageEvent is published whenever an exercise is added to a workout. The
// consumer side turns these into times_used increments, keeping the popular
// ranking off the request path.
type UsageEvent struct {
	EventID    string    `json:"event_id"`
	ExerciseID uint      `json:"exercise_id"`
	WorkoutID  uint      `json:"workout_id"`
	TS         time.Time `json:"ts"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the usage queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		usageQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", usageQueue, err)
	}

	log.Printf("RabbitMQ client connected and %s declared", usageQueue)

	return &Client{conn: conn, channel: ch}, nil
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

// PublishExerciseUsed publishes a usage event for one exercise.
func (c *Client) PublishExerciseUsed(exerciseID, workoutID uint) error {
	if c == nil || c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	event := UsageEvent{
		EventID:    uuid.New().String(),
		ExerciseID: exerciseID,
		WorkoutID:  workoutID,
		TS:         time.Now(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal usage event: %w", err)
	}

	err = c.channel.Publish(
		"",         // default exchange
		usageQueue, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.TS,
		})
	if err != nil {
		return fmt.Errorf("failed to publish usage event: %w", err)
	}
	return nil
}

// ConsumeUsageEvents registers a consumer on the usage queue and dispatches
// each decoded event to the handler in a background goroutine. Handler errors
// nack the delivery back onto the queue; undecodable payloads are dropped.
func (c *Client) ConsumeUsageEvents(handler func(event UsageEvent) error) error {
	if c == nil || c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		usageQueue,
		"",    // consumer tag
		false, // auto-ack off, ack after processing
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			var event UsageEvent
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				log.Printf("Dropping undecodable usage event %d: %v", msg.DeliveryTag, err)
				if ackErr := msg.Ack(false); ackErr != nil {
					log.Printf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
				}
				continue
			}
			if err := handler(event); err != nil {
				log.Printf("Error processing usage event %s: %v", event.EventID, err)
				if nackErr := msg.Nack(false, true); nackErr != nil {
					log.Printf("Error nacking message %d: %v", msg.DeliveryTag, nackErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				log.Printf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
			}
		}
	}()

	return nil
}
