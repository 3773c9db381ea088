// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go             — Handler с DI (stores, publisher, logger)
//   - routes.go              — регистрация маршрутов
//   - middleware.go          — middleware (logging, recovery)
//   - response.go            — унифицированные JSON-ответы и обработка ошибок
//   - dto.go                 — Data Transfer Objects (request/response)
//   - distribution_handler.go — обработчики для /distribution
//   - schedule_handler.go    — обработчики для /schedule
//   - job_handler.go         — обработчики для /jobs
//   - control_handler.go     — обработчики для /dispatch
//   - session_handler.go     — обработчики для /sessions
//
// API предоставляет REST endpoints для управления распределением
// активностей, расписанием, заданиями и сессиями.
package api
