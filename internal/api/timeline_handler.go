package api

import (
	"net/http"
)

// GetTimeline возвращает запланированные пробуждения по возрастанию времени.
// GET /api/v1/timeline
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	buckets := h.host.Timeline()

	result := make([]BucketResponse, len(buckets))
	for i, b := range buckets {
		result[i] = BucketFromScheduler(b)
	}

	List(w, result, len(result))
}
