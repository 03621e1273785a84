package processors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"text/template"
	"time"

	"github.com/shaiso/Tickwork/internal/processor"
)

const (
	defaultWebhookTimeout = 10 * time.Second
	maxWebhookResponse    = 64 * 1024
)

// WebhookSettings — настройки процессора webhook.
//
// Триггер: Expr (cron) или EveryMillis, ровно одно из двух.
//
//	provider: webhook
//	settings:
//	  url: https://example.com/hook
//	  method: POST
//	  expr: "*/5 * * * *"
//	  body: '{"worker": {{ .WorkerTick }}, "at": "{{ .Time }}"}'
type WebhookSettings struct {
	URL     string            `json:"url" yaml:"url"`
	Method  string            `json:"method,omitempty" yaml:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Body — text/template; данные шаблона: WebhookTick.
	Body string `json:"body,omitempty" yaml:"body,omitempty"`

	Expr        string `json:"expr,omitempty" yaml:"expr,omitempty"`
	Timezone    string `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	EveryMillis int64  `json:"every_ms,omitempty" yaml:"every_ms,omitempty"`

	// TimeoutMillis одного запроса (default: 10s).
	TimeoutMillis int64 `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`

	MaxTicks int64 `json:"max_ticks,omitempty" yaml:"max_ticks,omitempty"`
}

// WebhookTick — данные шаблона тела запроса.
type WebhookTick struct {
	WorkerTick int64
	Cycle      int64
	TimeMillis int64
	Time       string
}

// webhookFuncs — функции шаблона тела.
var webhookFuncs = template.FuncMap{
	"json": func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("error: %v", err)
		}
		return string(b)
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

// WebhookError — ответ webhook со статусом вне 2xx.
type WebhookError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error реализует интерфейс error.
func (e *WebhookError) Error() string {
	return fmt.Sprintf("webhook HTTP %d: %s", e.StatusCode, e.Status)
}

// Webhook отправляет HTTP-запрос на каждый тик.
type Webhook struct {
	processor.Base

	client   *http.Client
	method   string
	url      string
	headers  map[string]string
	body     *template.Template
	timeout  time.Duration
	nextFn   func(millis int64) (int64, error)
	maxTicks int64

	ticks    atomic.Int64
	next     atomic.Int64
	failures atomic.Int64

	mu         sync.Mutex
	lastStatus int
	lastError  string
}

// NewWebhook создаёт процессор webhook. client == nil: http.Client по умолчанию.
func NewWebhook(s WebhookSettings, client *http.Client) (*Webhook, error) {
	if s.URL == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidSettings)
	}

	w := &Webhook{
		client:   client,
		method:   strings.ToUpper(s.Method),
		url:      s.URL,
		headers:  s.Headers,
		timeout:  defaultWebhookTimeout,
		maxTicks: s.MaxTicks,
	}
	if w.client == nil {
		w.client = &http.Client{}
	}
	if w.method == "" {
		w.method = http.MethodPost
	}
	if s.TimeoutMillis > 0 {
		w.timeout = time.Duration(s.TimeoutMillis) * time.Millisecond
	}

	switch {
	case s.Expr != "" && s.EveryMillis != 0:
		return nil, fmt.Errorf("%w: expr and every_ms are mutually exclusive", ErrInvalidSettings)
	case s.Expr != "":
		c, err := NewCron(CronSettings{Expr: s.Expr, Timezone: s.Timezone})
		if err != nil {
			return nil, err
		}
		w.nextFn = c.nextAfter
	case s.EveryMillis > 0:
		every := s.EveryMillis
		w.nextFn = func(millis int64) (int64, error) { return millis + every, nil }
	default:
		return nil, fmt.Errorf("%w: expr or positive every_ms is required", ErrInvalidSettings)
	}

	if s.Body != "" {
		tmpl, err := template.New("body").Funcs(webhookFuncs).Option("missingkey=error").Parse(s.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: body template: %w", ErrInvalidSettings, err)
		}
		w.body = tmpl
	}

	return w, nil
}

// WebhookProvider — провайдер процессора webhook. Входов нет.
func WebhookProvider(client *http.Client) processor.Provider {
	return processor.ProviderFunc(func(settings any, _ processor.Binder) (processor.Processor, error) {
		s, err := decodeSettings[WebhookSettings](settings)
		if err != nil {
			return nil, err
		}
		return NewWebhook(s, client)
	})
}

// Process отправляет запрос, если время тика наступило, и планирует следующий.
// Ошибка доставки возвращается после планирования: следующий цикл ранний
// и только повторяет пробуждение.
func (w *Webhook) Process(ctx processor.Context) (processor.Result, error) {
	now := ctx.CycleTimeMillis()
	next := w.next.Load()

	var sendErr error
	if next != 0 && now >= next {
		ticks := w.ticks.Add(1)
		sendErr = w.send(WebhookTick{
			WorkerTick: ticks,
			Cycle:      ctx.CycleNumber(),
			TimeMillis: now,
			Time:       time.UnixMilli(now).UTC().Format(time.RFC3339),
		})
		if w.maxTicks > 0 && ticks >= w.maxTicks {
			// End возвращается без ошибки, ошибка доставки уходит в HandleException.
			if sendErr != nil {
				w.HandleException(sendErr)
			}
			return processor.ResultEnd, nil
		}
	}

	if next == 0 || now >= next {
		n, err := w.nextFn(now)
		if err != nil {
			if sendErr != nil {
				w.HandleException(sendErr)
			}
			slog.Default().Warn("webhook schedule exhausted, finishing", "url", w.url, "error", err)
			return processor.ResultEnd, nil
		}
		next = n
		w.next.Store(next)
	}

	ctx.ScheduleWakeup(next)
	return processor.ResultIdle, sendErr
}

func (w *Webhook) send(tick WebhookTick) error {
	var body io.Reader
	if w.body != nil {
		var buf bytes.Buffer
		if err := w.body.Execute(&buf, tick); err != nil {
			return fmt.Errorf("render body: %w", err)
		}
		body = &buf
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, w.method, w.url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	w.mu.Lock()
	w.lastStatus = resp.StatusCode
	w.mu.Unlock()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxWebhookResponse))
		return &WebhookError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(data)}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxWebhookResponse))
	return nil
}

// HandleException считает неудачную доставку.
func (w *Webhook) HandleException(err error) {
	w.failures.Add(1)
	w.mu.Lock()
	w.lastError = err.Error()
	w.mu.Unlock()
	slog.Default().Warn("webhook processor error", "url", w.url, "error", err)
}

// ExposeState возвращает счётчики и результат последней доставки.
func (w *Webhook) ExposeState(...any) any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return map[string]any{
		"ticks":       w.ticks.Load(),
		"next_ms":     w.next.Load(),
		"failures":    w.failures.Load(),
		"last_status": w.lastStatus,
		"last_error":  w.lastError,
	}
}
