package api

import (
	"encoding/json"
	"net/http"

	"github.com/shaiso/Vitrine/internal/domain"
)

// validStartTime проверяет начало окна: только разбираемое "HH:MM".
// "24:00" здесь недопустим — такая ротация никогда бы не активировалась.
func validStartTime(s string) bool {
	_, err := domain.ParseClock(s)
	return err == nil
}

// validEndTime проверяет конец окна: "HH:MM" либо "24:00"
// (полночь следующего дня).
func validEndTime(s string) bool {
	if s == domain.EndOfDay {
		return true
	}
	_, err := domain.ParseClock(s)
	return err == nil
}

// ListRotations возвращает все ротации.
// GET /api/v1/rotations
func (h *Handler) ListRotations(w http.ResponseWriter, r *http.Request) {
	st := h.manager.Snapshot()

	result := make([]RotationResponse, len(st.Rotations))
	for i, rot := range st.Rotations {
		result[i] = RotationFromDomain(rot)
	}
	List(w, result, len(result))
}

// CreateRotation создаёт новую ротацию.
// POST /api/v1/rotations
func (h *Handler) CreateRotation(w http.ResponseWriter, r *http.Request) {
	var req CreateRotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}
	if req.StartTime != "" && !validStartTime(req.StartTime) {
		BadRequest(w, "invalid start_time, expected HH:MM")
		return
	}
	if req.EndTime != "" && !validEndTime(req.EndTime) {
		BadRequest(w, "invalid end_time, expected HH:MM or 24:00")
		return
	}

	if err := h.manager.AddRotation(req.Name, req.StartTime, req.EndTime); err != nil {
		HandleError(w, h.logger, err)
		return
	}
	h.persistState(r.Context())

	rot, err := h.manager.Rotation(req.Name)
	if HandleError(w, h.logger, err) {
		return
	}
	Created(w, RotationFromDomain(rot))
}

// GetRotation возвращает ротацию по имени.
// GET /api/v1/rotations/{name}
func (h *Handler) GetRotation(w http.ResponseWriter, r *http.Request) {
	rot, err := h.manager.Rotation(r.PathValue("name"))
	if HandleError(w, h.logger, err) {
		return
	}
	Success(w, RotationFromDomain(rot))
}

// UpdateRotation меняет имя и окно ротации.
// PUT /api/v1/rotations/{name}
func (h *Handler) UpdateRotation(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req UpdateRotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	rot, err := h.manager.Rotation(name)
	if HandleError(w, h.logger, err) {
		return
	}

	newName := rot.Name
	start := rot.StartTime
	end := rot.EndTime
	if req.Name != nil {
		newName = *req.Name
	}
	if req.StartTime != nil {
		start = *req.StartTime
	}
	if req.EndTime != nil {
		end = *req.EndTime
	}

	if newName == "" {
		BadRequest(w, "name must not be empty")
		return
	}
	if !validStartTime(start) {
		BadRequest(w, "invalid start_time, expected HH:MM")
		return
	}
	if !validEndTime(end) {
		BadRequest(w, "invalid end_time, expected HH:MM or 24:00")
		return
	}

	if err := h.manager.UpdateRotation(name, newName, start, end); err != nil {
		HandleError(w, h.logger, err)
		return
	}
	h.persistState(r.Context())

	updated, err := h.manager.Rotation(newName)
	if HandleError(w, h.logger, err) {
		return
	}
	Success(w, RotationFromDomain(updated))
}

// DeleteRotation удаляет ротацию.
// DELETE /api/v1/rotations/{name}
func (h *Handler) DeleteRotation(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.DeleteRotation(r.PathValue("name")); err != nil {
		HandleError(w, h.logger, err)
		return
	}
	h.persistState(r.Context())
	NoContent(w)
}
