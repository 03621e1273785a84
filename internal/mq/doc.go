// Package mq связывает Tickwork с RabbitMQ.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений
//   - consumer.go   — потребление сообщений из очередей
//   - bridge.go     — InputBridge: сообщения processor.input → входы воркеров
//   - events.go     — EventListener: завершение воркера → worker.finished
//
// Типы сообщений:
//   - processor.input  — значение для входа воркера
//   - worker.finished  — воркер завершился
//
// Exchanges:
//   - tickwork.inputs  — входы воркеров
//   - tickwork.workers — события воркеров
//   - tickwork.dlq     — dead letter queue
//
// Брокер не обязателен: без RABBITMQ_URL host работает только через HTTP API.
package mq
