package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shaiso/Tickwork/internal/telemetry"
)

// ListWorkers возвращает живые воркеры.
// GET /api/v1/workers
func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers := h.host.Workers()
	List(w, workers, len(workers))
}

// CreateWorker создаёт и запускает воркер.
// POST /api/v1/workers
func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if HandleError(w, telemetry.FromContext(r.Context()), req.Validate()) {
		return
	}

	info, err := h.host.Create(r.Context(), ToSpec(req))
	if HandleError(w, telemetry.FromContext(r.Context()), err) {
		return
	}

	Created(w, info)
}

// GetWorker возвращает воркер по id.
// GET /api/v1/workers/{id}
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	id, ok := parseWorkerID(w, r)
	if !ok {
		return
	}

	info, err := h.host.Worker(id)
	if HandleError(w, telemetry.FromContext(r.Context()), err) {
		return
	}

	Success(w, info)
}

// GetWorkerState возвращает состояние процессора воркера.
// Параметры ?arg= передаются процессору как аргументы.
// GET /api/v1/workers/{id}/state
func (h *Handler) GetWorkerState(w http.ResponseWriter, r *http.Request) {
	id, ok := parseWorkerID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()["arg"]
	args := make([]any, len(query))
	for i, a := range query {
		args[i] = a
	}

	state, err := h.host.State(id, args...)
	if HandleError(w, telemetry.FromContext(r.Context()), err) {
		return
	}

	Success(w, StateResponse{WorkerID: id, State: state})
}

// DeliverInput доставляет значение во вход воркера.
// POST /api/v1/workers/{id}/inputs/{index}
func (h *Handler) DeliverInput(w http.ResponseWriter, r *http.Request) {
	id, ok := parseWorkerID(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		BadRequest(w, "invalid input index")
		return
	}

	var req DeliverInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if HandleError(w, telemetry.FromContext(r.Context()), h.host.DeliverInput(id, index, req.Value)) {
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// StopWorker просит воркер завершиться.
// POST /api/v1/workers/{id}/stop
func (h *Handler) StopWorker(w http.ResponseWriter, r *http.Request) {
	id, ok := parseWorkerID(w, r)
	if !ok {
		return
	}

	if HandleError(w, telemetry.FromContext(r.Context()), h.host.Stop(id)) {
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// ListProviders возвращает имена провайдеров.
// GET /api/v1/providers
func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	names := h.host.Providers()
	List(w, names, len(names))
}

func parseWorkerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		BadRequest(w, "invalid worker id")
		return 0, false
	}
	return id, true
}
