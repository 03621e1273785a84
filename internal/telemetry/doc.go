// Package telemetry — логи и метрики Tickwork.
//
// Логгер процесса настраивается из LOG_LEVEL и LOG_FORMAT, логгер HTTP-запроса
// передаётся через context. Метрики планировщика, воркеров, API и брокера
// регистрируются в prometheus.DefaultRegisterer и отдаются на /metrics.
package telemetry
