// Package telemetry обеспечивает наблюдаемость rmqlink.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики (подключения, состояния endpoints, ошибки RPC)
//
// Агент экспортирует метрики на /metrics endpoint.
package telemetry
