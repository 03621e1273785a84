package processors

import (
	"net/http"

	"github.com/shaiso/Tickwork/internal/host"
)

// Имена встроенных провайдеров.
const (
	NameCron     = "cron"
	NameInterval = "interval"
	NameCounter  = "counter"
	NameWebhook  = "webhook"
)

// Register регистрирует встроенные процессоры в reg.
func Register(reg *host.Registry) {
	reg.Register(NameCron, CronProvider())
	reg.Register(NameInterval, IntervalProvider())
	reg.Register(NameCounter, CounterProvider())
	reg.Register(NameWebhook, WebhookProvider(http.DefaultClient))
}
