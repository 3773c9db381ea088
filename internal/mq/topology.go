package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeJobs    Exchange = "presence.jobs"
	ExchangeControl Exchange = "presence.control"
	ExchangeDLQ     Exchange = "presence.dlq"
)

// Queues — имена очередей.
const (
	QueueJobsEnqueued  Queue = "jobs.enqueued"
	QueueJobsCompleted Queue = "jobs.completed"

	// Каждый сервис слушает свою копию управляющих команд.
	QueueControlDispatcher Queue = "control.dispatcher"
	QueueControlWorker     Queue = "control.worker"

	QueueDLQJobs Queue = "dlq.jobs"
)

// Routing keys.
const (
	RoutingKeyEnqueued  RoutingKey = "enqueued"
	RoutingKeyCompleted RoutingKey = "completed"
	RoutingKeyDLQJobs   RoutingKey = "jobs"

	// Fanout exchange игнорирует routing key.
	RoutingKeyControl RoutingKey = ""
)

// SetupTopology объявляет exchanges, queues и bindings.
// Идемпотентна: повторный вызов на существующей топологии безопасен.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}

		if err := declareQueues(ch); err != nil {
			return err
		}

		if err := bindQueues(ch); err != nil {
			return err
		}

		return nil
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeJobs, "direct"},
		{ExchangeControl, "fanout"},
		{ExchangeDLQ, "direct"},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	// Аргументы для очередей с DLQ
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQJobs),
	}

	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// jobs.enqueued — подсказка воркерам; с DLQ на случай битых сообщений
		{QueueJobsEnqueued, dlqArgs},

		// jobs.completed — события завершения, слушает диспетчер
		{QueueJobsCompleted, nil},

		// control.* — управляющие команды для каждого сервиса
		{QueueControlDispatcher, nil},
		{QueueControlWorker, nil},

		// dlq.jobs — сама DLQ очередь
		{QueueDLQJobs, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueJobsEnqueued, RoutingKeyEnqueued, ExchangeJobs},
		{QueueJobsCompleted, RoutingKeyCompleted, ExchangeJobs},
		{QueueControlDispatcher, RoutingKeyControl, ExchangeControl},
		{QueueControlWorker, RoutingKeyControl, ExchangeControl},
		{QueueDLQJobs, RoutingKeyDLQJobs, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Presence RabbitMQ Topology:

    presence.jobs (direct)
    ├── jobs.enqueued [routing: enqueued]
    │       Consumer: Worker (nudge, не источник истины)
    │       DLQ: dlq.jobs
    └── jobs.completed [routing: completed]
            Consumer: Dispatcher

    presence.control (fanout)
    ├── control.dispatcher
    │       Consumer: Dispatcher (tick, regenerate, pause, resume)
    └── control.worker
            Consumer: Worker (disconnect)

    presence.dlq (direct)
    └── dlq.jobs [routing: jobs]
            Manual processing
  `
}
