package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/Tickwork/internal/domain"
	"github.com/shaiso/Tickwork/internal/repo"
	"github.com/shaiso/Tickwork/internal/telemetry"
)

// ListJournal возвращает журнал запусков воркеров.
// GET /api/v1/journal?worker_id=&status=&limit=&offset=
func (h *Handler) ListJournal(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		NotFound(w, "journal is disabled")
		return
	}

	query := r.URL.Query()
	filter := repo.WorkerFilter{
		Status: domain.WorkerStatus(query.Get("status")),
	}

	if v := query.Get("worker_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			BadRequest(w, "invalid worker_id")
			return
		}
		filter.WorkerID = &id
	}

	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			BadRequest(w, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	if v := query.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			BadRequest(w, "invalid offset")
			return
		}
		filter.Offset = offset
	}

	records, err := h.journal.List(r.Context(), filter)
	if HandleError(w, telemetry.FromContext(r.Context()), err) {
		return
	}

	result := make([]RecordResponse, len(records))
	for i, rec := range records {
		result[i] = RecordFromDomain(rec)
	}

	List(w, result, len(result))
}

// GetJournalRecord возвращает запись журнала по run_id.
// GET /api/v1/journal/{run_id}
func (h *Handler) GetJournalRecord(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		NotFound(w, "journal is disabled")
		return
	}

	runID, err := uuid.Parse(r.PathValue("run_id"))
	if err != nil {
		BadRequest(w, "invalid run_id")
		return
	}

	rec, err := h.journal.GetByRunID(r.Context(), runID)
	if HandleError(w, telemetry.FromContext(r.Context()), err) {
		return
	}

	Success(w, RecordFromDomain(*rec))
}
