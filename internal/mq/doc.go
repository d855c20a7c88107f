// Package mq управляет соединениями с брокерами RabbitMQ.
//
// Структура:
//   - endpoint.go    — Endpoint: описание брокера, флаги публикации, состояние
//   - state.go       — состояния подключения
//   - address.go     — разбор AMQP URI
//   - protocol.go    — интерфейсы клиента протокола (Client, Conn)
//   - amqp_client.go — реализация Client поверх amqp091-go
//   - outcome.go     — результаты RPC и их классификация
//   - connector.go   — машина состояний connect/close
//
// Жизненный цикл endpoint:
//
//	DISCONNECTED → SOCKET_OPEN → AUTHENTICATED → READY
//
// Connector продвигает endpoint через все оставшиеся состояния за один вызов
// Connect. Ошибка на любом шаге закрывает всё, что уже открыто, и возвращает
// endpoint в DISCONNECTED. На соединении открывается ровно один канал.
package mq
