// Package domain содержит общие записи Tickwork: описание воркера
// (WorkerSpec) и запись журнала о его запуске (WorkerRecord).
package domain
