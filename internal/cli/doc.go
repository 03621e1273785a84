// Package cli реализует инструмент командной строки tickwork.
//
// # Обзор
//
// CLI — клиентская утилита для tickwork-host. Работает через HTTP,
// не импортирует внутренние пакеты хоста.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для API хоста. Инкапсулирует запросы, парсинг ответов
// (DataResponse, ListResponse, ErrorResponse) и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	workers, err := client.ListWorkers()
//
// ## Output
//
// Форматирование вывода: таблицы (text/tabwriter) по умолчанию,
// JSON с флагом --json. Данные идут в stdout, сообщения в stderr:
//
//	tickwork worker list --json | jq .
//
// ## Commands
//
//   - worker: list, create, show, state, input, stop
//   - providers
//   - timeline
//   - journal
//
// Каждая команда создаётся фабричной функцией (NewWorkerCmd и т.д.),
// принимающей clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
