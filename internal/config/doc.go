// Package config читает конфигурацию процесса tickwork-host.
//
// Переменные окружения:
//
//	HOST_PORT               порт HTTP API (default: 8080)
//	DB_URL                  PostgreSQL для журнала воркеров; пусто — без журнала
//	RABBITMQ_URL            RabbitMQ для входов и событий; пусто — без брокера
//	WORKERS_FILE            YAML-файл воркеров, создаваемых при старте
//	SCHEDULER_LOG_TIMELINE  "true" — писать timeline в debug-лог
//	SHUTDOWN_TIMEOUT        таймаут graceful shutdown (default: 10s)
//
// LOG_LEVEL (debug, info, warn, error) и LOG_FORMAT (json, text) читает telemetry.SetupLogger.
package config
