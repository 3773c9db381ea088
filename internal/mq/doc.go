// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - job.enqueued    — новое задание поставлено в очередь (подсказка воркерам)
//   - job.completed   — задание завершено (успех или провал)
//   - control.*       — управляющие команды (tick, regenerate, pause, resume, disconnect)
//
// Exchanges:
//   - presence.jobs     — события заданий (direct)
//   - presence.control  — управляющие команды (fanout, получают все сервисы)
//   - presence.dlq      — dead letter queue
package mq
