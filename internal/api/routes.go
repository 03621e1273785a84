package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Workers
	mux.Handle("GET /api/v1/workers", chain(http.HandlerFunc(h.ListWorkers)))
	mux.Handle("POST /api/v1/workers", chain(http.HandlerFunc(h.CreateWorker)))
	mux.Handle("GET /api/v1/workers/{id}", chain(http.HandlerFunc(h.GetWorker)))
	mux.Handle("POST /api/v1/workers/{id}/stop", chain(http.HandlerFunc(h.StopWorker)))
	mux.Handle("GET /api/v1/workers/{id}/state", chain(http.HandlerFunc(h.GetWorkerState)))
	mux.Handle("POST /api/v1/workers/{id}/inputs/{index}", chain(http.HandlerFunc(h.DeliverInput)))

	// Providers
	mux.Handle("GET /api/v1/providers", chain(http.HandlerFunc(h.ListProviders)))

	// Timeline
	mux.Handle("GET /api/v1/timeline", chain(http.HandlerFunc(h.GetTimeline)))

	// Journal
	mux.Handle("GET /api/v1/journal", chain(http.HandlerFunc(h.ListJournal)))
	mux.Handle("GET /api/v1/journal/{run_id}", chain(http.HandlerFunc(h.GetJournalRecord)))
}
