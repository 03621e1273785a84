// Package api содержит HTTP API сервер tickwork-host.
//
// Структура:
//   - handler.go          — Handler с DI (host, журнал, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - worker_handler.go   — обработчики для /workers и /providers
//   - timeline_handler.go — обработчик для /timeline
//   - journal_handler.go  — обработчик для /journal
//
// API управляет воркерами: создание, входы, состояние, остановка,
// плюс просмотр timeline планировщика и журнала запусков.
package api
