package api

import (
	"net/http"
	"strconv"
	"time"
)

// GetActive возвращает активную в данный момент ротацию.
// GET /api/v1/status/active?at=RFC3339
//
// Параметр at позволяет спросить "что было бы активно в такой-то
// момент"; по умолчанию — сейчас.
func (h *Handler) GetActive(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	if atStr := r.URL.Query().Get("at"); atStr != "" {
		at, err := time.Parse(time.RFC3339, atStr)
		if err != nil {
			BadRequest(w, "invalid at, expected RFC 3339 timestamp")
			return
		}
		now = at
	}

	resp := ActiveResponse{At: now}
	if rot := h.manager.ResolveActive(now); rot != nil {
		// Копия для ответа: указатель из ResolveActive разделяемый.
		full, err := h.manager.Rotation(rot.Name)
		if HandleError(w, h.logger, err) {
			return
		}
		body := RotationFromDomain(full)
		resp.Rotation = &body
	}
	Success(w, resp)
}

// ListRefreshLog возвращает последние записи журнала обновлений.
// GET /api/v1/refresh-log?limit=...
//
// Параметры plugin_id и instance вместе сужают ответ до последней
// записи конкретного unit.
func (h *Handler) ListRefreshLog(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
			limit = v
		}
	}

	if h.refreshRepo == nil {
		List(w, []RefreshRecordResponse{}, 0)
		return
	}

	pluginID := r.URL.Query().Get("plugin_id")
	instance := r.URL.Query().Get("instance")
	if pluginID != "" && instance != "" {
		rec, err := h.refreshRepo.Latest(r.Context(), h.deviceID, pluginID, instance)
		if HandleError(w, h.logger, err) {
			return
		}
		List(w, []RefreshRecordResponse{RecordFromDomain(rec)}, 1)
		return
	}

	records, err := h.refreshRepo.List(r.Context(), h.deviceID, limit)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	result := make([]RefreshRecordResponse, len(records))
	for i := range records {
		result[i] = RecordFromDomain(&records[i])
	}
	List(w, result, len(result))
}
