// Package dsl разбирает строки определения endpoint'ов.
//
// Формат:
//
//	[<cid>] <param>(;<param>)*
//	param := uri=<address> | frames=<int> | heartbeat=<int> | retries=<int>
//	       | exchange=<name> | immediate | mandatory | non-persistent
//
// Включает:
//   - keywords.go — таблица ключевых слов
//   - parser.go   — сканер и валидация
//
// Значение uri не заканчивается на ';': все следующие сегменты, которые
// не начинаются с ключевого слова, считаются продолжением адреса.
// Первое найденное ключевое слово обрезает uri по своей позиции.
package dsl
