// Package api содержит HTTP API агента rmqlink.
//
// Структура:
//   - handler.go          — Handler с DI (broker.Manager, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects
//   - evaluator.go        — вычисление динамических ссылок по HTTP запросу
//   - endpoint_handler.go — обработчики для /endpoints и /bindings
//
// HTTP запрос играет роль контекста вызова: динамическая ссылка
// "$query.cid" берёт ID endpoint из query-параметра cid.
package api
