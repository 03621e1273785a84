// Package processors содержит встроенные процессоры Tickwork.
//
//   - cron     — просыпается на каждый тик cron-выражения (robfig/cron)
//   - interval — просыпается каждые every_ms миллисекунд
//   - counter  — суммирует числа со входа 0; вход 1 управляющий ("stop", "reset")
//   - webhook  — HTTP-запрос на каждый тик cron-выражения или интервала
//
// Register добавляет их в host.Registry под этими именами.
// Settings каждого процессора приходят из API (JSON) или из файла
// воркеров (YAML) как map и раскладываются в структуру через decodeSettings.
package processors
