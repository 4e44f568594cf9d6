package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shaiso/Vitrine/internal/domain"
	"github.com/shaiso/Vitrine/internal/schedule"
)

// CreateUnit добавляет unit в ротацию.
// POST /api/v1/rotations/{name}/plugins
func (h *Handler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	rotation := r.PathValue("name")

	var req CreateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.PluginID == "" {
		BadRequest(w, "plugin_id is required")
		return
	}
	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}
	if req.Refresh.Scheduled != "" {
		if _, err := domain.ParseClock(req.Refresh.Scheduled); err != nil {
			BadRequest(w, "invalid refresh.scheduled, expected HH:MM")
			return
		}
	}

	unit := &domain.ContentUnit{
		PluginID: req.PluginID,
		Name:     req.Name,
		Settings: req.Settings,
		Refresh:  req.Refresh,
	}
	if err := h.manager.AddUnit(rotation, unit); err != nil {
		HandleError(w, h.logger, err)
		return
	}
	h.persistState(r.Context())

	Created(w, UnitFromDomain(unit))
}

// UpdateUnit применяет частичное обновление к unit.
// PUT /api/v1/rotations/{name}/plugins/{plugin_id}/{instance}
func (h *Handler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	rotation := r.PathValue("name")
	pluginID := r.PathValue("plugin_id")
	instance := r.PathValue("instance")

	var req UpdateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Refresh != nil && req.Refresh.Scheduled != "" {
		if _, err := domain.ParseClock(req.Refresh.Scheduled); err != nil {
			BadRequest(w, "invalid refresh.scheduled, expected HH:MM")
			return
		}
	}

	patch := domain.UnitPatch{
		Settings: req.Settings,
		Refresh:  req.Refresh,
	}
	if err := h.manager.UpdateUnit(rotation, pluginID, instance, patch); err != nil {
		HandleError(w, h.logger, err)
		return
	}
	h.persistState(r.Context())

	unit, _, err := h.manager.FindUnit(pluginID, instance)
	if HandleError(w, h.logger, err) {
		return
	}
	Success(w, UnitFromDomain(unit))
}

// DeleteUnit удаляет unit из ротации.
// DELETE /api/v1/rotations/{name}/plugins/{plugin_id}/{instance}
func (h *Handler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	rotation := r.PathValue("name")
	pluginID := r.PathValue("plugin_id")
	instance := r.PathValue("instance")

	if err := h.manager.DeleteUnit(rotation, pluginID, instance); err != nil {
		HandleError(w, h.logger, err)
		return
	}
	h.persistState(r.Context())
	NoContent(w)
}

// RefreshUnit публикует ручное refresh-задание для unit.
// POST /api/v1/rotations/{name}/plugins/{plugin_id}/{instance}/refresh
func (h *Handler) RefreshUnit(w http.ResponseWriter, r *http.Request) {
	rotation := r.PathValue("name")
	pluginID := r.PathValue("plugin_id")
	instance := r.PathValue("instance")

	rot, err := h.manager.Rotation(rotation)
	if HandleError(w, h.logger, err) {
		return
	}
	unit := rot.FindUnit(pluginID, instance)
	if unit == nil {
		NotFound(w, "unit not found")
		return
	}

	if h.loop == nil {
		InternalError(w, h.logger, errors.New("refresh loop not configured"))
		return
	}

	jobID, err := h.loop.RequestRefresh(r.Context(), rotation, unit, domain.RefreshManual)
	if err != nil {
		if errors.Is(err, schedule.ErrRefreshInflight) {
			Conflict(w, "refresh already in flight for this unit")
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	JSON(w, http.StatusAccepted, DataResponse{Data: RefreshJobResponse{JobID: jobID.String()}})
}
