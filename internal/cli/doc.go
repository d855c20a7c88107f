// Package cli реализует инструмент командной строки rmqlink.
//
// # Обзор
//
// Команды делятся на две группы.
//
// Локальные (parse, check, connect) разбирают определения endpoint'ов
// сами и подключаются к брокерам напрямую, без агента. Удобны для
// проверки конфигурации перед деплоем.
//
// Удалённые (endpoint, binding) работают через HTTP API rmqlink-agent
// и не импортируют internal/api.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для API агента: запросы, разбор DataResponse/ListResponse
// и ошибок, включая диагностику неудачного подключения.
//
//	client := cli.NewClient("http://localhost:8084")
//	eps, err := client.ListEndpoints()
//
// ## Output
//
// Форматирование вывода: таблицы (text/tabwriter) по умолчанию
// или JSON с флагом --json. Данные идут в stdout, сообщения в stderr:
//
//	rmqlink endpoint list --json | jq .
//
// ## Commands
//
//   - parse, check, connect: LoadFunc + outputFn
//   - endpoint: list, show, connect, close
//   - binding: connect
//
// Фабрики (NewEndpointCmd и т.д.) принимают замыкания clientFn/outputFn,
// чтобы Client и Output создавались после разбора PersistentFlags.
package cli
