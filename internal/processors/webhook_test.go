package processors

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Tickwork/internal/processor"
)

type hookServer struct {
	mu      sync.Mutex
	bodies  []string
	headers []http.Header
	status  int
}

func (s *hookServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.bodies = append(s.bodies, string(data))
	s.headers = append(s.headers, r.Header.Clone())
	status := s.status
	s.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

func TestWebhook_SendsOnTicks(t *testing.T) {
	hook := &hookServer{}
	srv := httptest.NewServer(hook)
	defer srv.Close()

	p, err := WebhookProvider(srv.Client()).Get(map[string]any{
		"url":       srv.URL,
		"every_ms":  100,
		"max_ticks": 2,
		"headers":   map[string]any{"X-Token": "secret"},
		"body":      `{"tick":{{ .WorkerTick }},"at":{{ .TimeMillis | json }}}`,
	}, &binder{})
	require.NoError(t, err)

	ctx := &fakeContext{}

	res, err := p.Process(ctx.at(0))
	require.NoError(t, err)
	assert.Equal(t, processor.ResultIdle, res)
	assert.Empty(t, hook.bodies)

	// Раннее пробуждение не отправляет запрос.
	res, err = p.Process(ctx.at(50))
	require.NoError(t, err)
	assert.Equal(t, processor.ResultIdle, res)
	assert.Empty(t, hook.bodies)

	res, err = p.Process(ctx.at(100))
	require.NoError(t, err)
	assert.Equal(t, processor.ResultIdle, res)

	res, err = p.Process(ctx.at(200))
	require.NoError(t, err)
	assert.Equal(t, processor.ResultEnd, res)

	assert.Equal(t, []int64{100, 100, 200}, ctx.scheduled)
	assert.Equal(t, []string{`{"tick":1,"at":100}`, `{"tick":2,"at":200}`}, hook.bodies)
	assert.Equal(t, "secret", hook.headers[0].Get("X-Token"))
	assert.Equal(t, "application/json", hook.headers[0].Get("Content-Type"))
}

func TestWebhook_FailureIsReportedAfterScheduling(t *testing.T) {
	hook := &hookServer{status: http.StatusBadGateway}
	srv := httptest.NewServer(hook)
	defer srv.Close()

	p, err := NewWebhook(WebhookSettings{URL: srv.URL, EveryMillis: 10}, srv.Client())
	require.NoError(t, err)

	ctx := &fakeContext{}
	_, _ = p.Process(ctx.at(0))

	res, err := p.Process(ctx.at(10))
	var werr *WebhookError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, http.StatusBadGateway, werr.StatusCode)
	assert.Equal(t, processor.ResultIdle, res)
	assert.Equal(t, int64(20), ctx.scheduled[len(ctx.scheduled)-1])

	p.HandleException(err)
	state := p.ExposeState().(map[string]any)
	assert.Equal(t, int64(1), state["failures"])
	assert.Equal(t, http.StatusBadGateway, state["last_status"])
}

func TestWebhook_InvalidSettings(t *testing.T) {
	cases := []WebhookSettings{
		{EveryMillis: 10},
		{URL: "http://x"},
		{URL: "http://x", EveryMillis: 10, Expr: "@hourly"},
		{URL: "http://x", Expr: "nope"},
		{URL: "http://x", Expr: "0 0 30 2 *"},
		{URL: "http://x", EveryMillis: 10, Body: "{{ .Missing"},
	}
	for _, s := range cases {
		_, err := NewWebhook(s, nil)
		assert.ErrorIs(t, err, ErrInvalidSettings, "%+v", s)
	}
}

func TestWebhook_LastTickFailureEndsWorker(t *testing.T) {
	hook := &hookServer{status: http.StatusInternalServerError}
	srv := httptest.NewServer(hook)
	defer srv.Close()

	p, err := NewWebhook(WebhookSettings{URL: srv.URL, EveryMillis: 10, MaxTicks: 1}, srv.Client())
	require.NoError(t, err)

	ctx := &fakeContext{}
	_, _ = p.Process(ctx.at(0))

	res, err := p.Process(ctx.at(10))
	require.NoError(t, err)
	assert.Equal(t, processor.ResultEnd, res)
	assert.Len(t, hook.bodies, 1)
	assert.Equal(t, int64(1), p.ExposeState().(map[string]any)["failures"])
}

func TestWebhook_ExhaustedScheduleEnds(t *testing.T) {
	hook := &hookServer{}
	srv := httptest.NewServer(hook)
	defer srv.Close()

	p, err := NewWebhook(WebhookSettings{URL: srv.URL, EveryMillis: 10}, srv.Client())
	require.NoError(t, err)
	p.nextFn = func(int64) (int64, error) { return 0, ErrScheduleExhausted }

	ctx := &fakeContext{}
	res, err := p.Process(ctx.at(0))
	require.NoError(t, err)
	assert.Equal(t, processor.ResultEnd, res)
	assert.Empty(t, ctx.scheduled)
	assert.Empty(t, hook.bodies)
}
