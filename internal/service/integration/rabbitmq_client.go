package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/coursedeck/submission-service/internal/models"
)

// EventPublisher fans submission and packaging events out to whatever wants
// them (notification bots, gradebook sync). The service runs fine without a
// broker; publish failures are logged by the caller, never propagated.
type EventPublisher interface {
	PublishSubmissionReceived(ctx context.Context, event *models.SubmissionReceivedEvent) error
	PublishPackageBuilt(ctx context.Context, event *models.PackageBuiltEvent) error
	Close() error
}

type rabbitMQPublisher struct {
	conn      *amqp091.Connection
	channel   *amqp091.Channel
	exchange  string
	queueName string
	logger    zerolog.Logger
}

// NewRabbitMQPublisher declares a topic exchange and binds queueName to it
// with routingKey as the pattern; events publish under their own keys
// (submission.received, submission.package.built) within that pattern.
func NewRabbitMQPublisher(url, exchange, routingKey, queueName string, logger zerolog.Logger) (EventPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		queue.Name, // queue name
		routingKey, // routing key pattern
		exchange,   // exchange
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	logger.Info().
		Str("exchange", exchange).
		Str("queue", queue.Name).
		Str("routing_key", routingKey).
		Msg("Connected to RabbitMQ")

	return &rabbitMQPublisher{
		conn:      conn,
		channel:   channel,
		exchange:  exchange,
		queueName: queue.Name,
		logger:    logger,
	}, nil
}

func (p *rabbitMQPublisher) PublishSubmissionReceived(ctx context.Context, event *models.SubmissionReceivedEvent) error {
	if err := p.publish(ctx, "submission.received", event); err != nil {
		return err
	}

	p.logger.Info().
		Str("group_id", event.GroupID).
		Int64("course_id", event.CourseID).
		Bool("resubmission", event.Resubmission).
		Msg("Submission received event published")

	return nil
}

func (p *rabbitMQPublisher) PublishPackageBuilt(ctx context.Context, event *models.PackageBuiltEvent) error {
	if err := p.publish(ctx, "submission.package.built", event); err != nil {
		return err
	}

	p.logger.Info().
		Int64("course_id", event.CourseID).
		Str("archive", event.Archive).
		Int("files", event.FileCount).
		Msg("Package built event published")

	return nil
}

func (p *rabbitMQPublisher) publish(ctx context.Context, routingKey string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		publishCtx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (p *rabbitMQPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			p.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	return nil
}
