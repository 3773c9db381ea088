package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Presence/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeJobEnqueued  MessageType = "job.enqueued"
	MessageTypeJobCompleted MessageType = "job.completed"
	MessageTypeControl      MessageType = "control"
)

// ControlCommand — управляющая команда в fanout канале.
type ControlCommand string

// Команды.
const (
	// ControlTick — немедленный внеплановый тик диспетчера.
	ControlTick ControlCommand = "tick"

	// ControlRegenerate — перегенерация расписания на сегодня.
	ControlRegenerate ControlCommand = "regenerate"

	// ControlPause / ControlResume — остановка и возобновление диспетчеризации.
	ControlPause  ControlCommand = "pause"
	ControlResume ControlCommand = "resume"

	// ControlDisconnect — закрытие браузерной сессии на воркере.
	ControlDisconnect ControlCommand = "disconnect"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// JobEnqueuedPayload — payload для события о новом задании.
type JobEnqueuedPayload struct {
	JobID    uuid.UUID      `json:"job_id"`
	Type     domain.JobType `json:"job_type"`
	Priority int            `json:"priority"`
}

// JobCompletedPayload — payload для события о завершённом задании.
type JobCompletedPayload struct {
	JobID  uuid.UUID        `json:"job_id"`
	Type   domain.JobType   `json:"job_type"`
	Status domain.JobStatus `json:"status"` // completed или failed
	Error  string           `json:"error,omitempty"`
}

// ControlPayload — payload управляющей команды.
type ControlPayload struct {
	Command ControlCommand `json:"command"`

	// Full — для regenerate: true пересоздаёт все слоты,
	// false сохраняет завершённые и выполняющиеся.
	Full bool `json:"full,omitempty"`

	// Account и Platform заполняются только для disconnect.
	Account  string          `json:"account,omitempty"`
	Platform domain.Platform `json:"platform,omitempty"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishJobEnqueued публикует подсказку о новом задании.
// Потребитель: Worker. Источником истины остаётся Postgres:
// потеря сообщения лишь отложит задание до следующего опроса.
func (p *Publisher) PublishJobEnqueued(ctx context.Context, job *domain.Job) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeJobEnqueued,
		Payload:   JobEnqueuedPayload{JobID: job.ID, Type: job.Type, Priority: job.Priority},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeJobs, RoutingKeyEnqueued, msg)
}

// PublishJobCompleted публикует событие о завершённом задании.
// Потребитель: Dispatcher.
func (p *Publisher) PublishJobCompleted(ctx context.Context, job *domain.Job) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeJobCompleted,
		Payload:   JobCompletedPayload{JobID: job.ID, Type: job.Type, Status: job.Status, Error: job.Error},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeJobs, RoutingKeyCompleted, msg)
}

// PublishControl рассылает управляющую команду всем сервисам.
func (p *Publisher) PublishControl(ctx context.Context, payload ControlPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeControl,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeControl, RoutingKeyControl, msg)
}
