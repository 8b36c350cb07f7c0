package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/quangtus/HeThongChamThi-sub000/internal/config"
	"github.com/quangtus/HeThongChamThi-sub000/internal/models"
)

// EventPublisher notifies downstream collaborators (reporting, content
// store) about grading milestones.
type EventPublisher interface {
	PublishThirdRoundRequested(ctx context.Context, event *models.ThirdRoundRequestedEvent) error
	PublishGradingResolved(ctx context.Context, event *models.GradingResolvedEvent) error
	Close() error
}

type rabbitMQPublisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	cfg     config.RabbitMQConfig
	logger  zerolog.Logger
}

func NewRabbitMQPublisher(cfg config.RabbitMQConfig, logger zerolog.Logger) (EventPublisher, error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		cfg.Exchange, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	bindings := []struct {
		queue      string
		routingKey string
	}{
		{cfg.ThirdRoundQueue, cfg.ThirdRoundRoutingKey},
		{cfg.ResolvedQueue, cfg.ResolvedRoutingKey},
	}

	for _, b := range bindings {
		queue, err := channel.QueueDeclare(
			b.queue, // name
			true,    // durable
			false,   // delete when unused
			false,   // exclusive
			false,   // no-wait
			nil,     // arguments
		)
		if err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare queue %s: %w", b.queue, err)
		}

		err = channel.QueueBind(queue.Name, b.routingKey, cfg.Exchange, false, nil)
		if err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue %s: %w", b.queue, err)
		}
	}

	logger.Info().
		Str("exchange", cfg.Exchange).
		Str("third_round_queue", cfg.ThirdRoundQueue).
		Str("resolved_queue", cfg.ResolvedQueue).
		Msg("Connected to RabbitMQ")

	return &rabbitMQPublisher{
		conn:    conn,
		channel: channel,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func (p *rabbitMQPublisher) PublishThirdRoundRequested(ctx context.Context, event *models.ThirdRoundRequestedEvent) error {
	if err := p.publish(ctx, p.cfg.ThirdRoundRoutingKey, event); err != nil {
		return err
	}

	p.logger.Info().
		Str("block_code", event.BlockCode).
		Str("examiner_id", event.ExaminerID).
		Msg("Third round requested event published")

	return nil
}

func (p *rabbitMQPublisher) PublishGradingResolved(ctx context.Context, event *models.GradingResolvedEvent) error {
	if err := p.publish(ctx, p.cfg.ResolvedRoutingKey, event); err != nil {
		return err
	}

	p.logger.Info().
		Str("block_code", event.BlockCode).
		Str("outcome", event.Outcome).
		Float64("final_score", event.FinalScore).
		Msg("Grading resolved event published")

	return nil
}

func (p *rabbitMQPublisher) publish(ctx context.Context, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		publishCtx,
		p.cfg.Exchange, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
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
